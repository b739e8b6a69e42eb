package logfields

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAttrKeys(t *testing.T) {
	require.Equal(t, KeyBasePath, BasePath("/x/").Key)
	require.Equal(t, "/x/", BasePath("/x/").Value.String())
	require.Equal(t, KeyPreset, Preset("static").Key)
	require.Equal(t, int64(4), Count(4).Value.Int64())
}

func TestDurationIsMilliseconds(t *testing.T) {
	require.InDelta(t, 1.5, Duration(1500*time.Microsecond).Value.Float64(), 0.0001)
}

func TestErrorNilSafe(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
}
