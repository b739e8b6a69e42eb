package deploy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePreset(t *testing.T) {
	tests := []struct {
		in   string
		want Preset
	}{
		{"static", PresetStatic},
		{"STATIC", PresetStatic},
		{"github_pages", PresetGitHubPages},
		{"github-pages", PresetGitHubPages},
		{"gh-pages", PresetGitHubPages},
		{"githubpages", PresetGitHubPages},
		{"netlify_static", PresetNetlifyStatic},
		{" vercel-static ", PresetVercelStatic},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePreset(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParsePreset_UnknownSuggests(t *testing.T) {
	_, err := ParsePreset("githb-pages")
	require.Error(t, err)
	require.Contains(t, err.Error(), "github-pages")
	require.Equal(t, "github-pages", SuggestPreset("githb-pages"))
}

func TestPresetTableIsConsistent(t *testing.T) {
	seen := map[Preset]bool{}
	for _, info := range Presets() {
		require.False(t, seen[info.Preset], "duplicate preset %s", info.Preset)
		seen[info.Preset] = true
		require.True(t, info.Preset.Valid())
		require.NotEmpty(t, info.Description)
		require.NotEmpty(t, info.OutputDir)

		parsed, err := ParsePreset(info.Preset.String())
		require.NoError(t, err)
		require.Equal(t, info.Preset, parsed)
	}
	require.True(t, seen[DefaultPreset])
}

func TestGitHubPagesImpliesNoJekyllAndFallback(t *testing.T) {
	info, ok := PresetGitHubPages.Info()
	require.True(t, ok)
	require.True(t, info.Crawl)
	require.True(t, info.NoJekyll)
	require.True(t, info.NotFoundFallback)

	static, _ := PresetStatic.Info()
	require.False(t, static.Crawl)
	require.False(t, static.NoJekyll)
}
