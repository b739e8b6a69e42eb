package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebase/internal/eventstore"
	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit   int    `short:"n" default:"20" help:"Maximum number of events to show"`
	BuildID string `name:"build" help:"Show all events of one build, oldest first"`
	JSON    bool   `name:"json" help:"Print events as JSON"`
}

func (h *HistoryCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.Events.Store == "" {
		return errors.ConfigError("event recording is disabled (set events.store)").Build()
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	var events []eventstore.Event
	if h.BuildID != "" {
		events, err = store.GetByBuildID(ctx, h.BuildID)
	} else {
		events, err = store.Recent(ctx, h.Limit)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryEventStore, "read events").Build()
	}

	out := g.out()
	if h.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}
	if len(events) == 0 {
		_, _ = fmt.Fprintln(out, "No events recorded")
		return nil
	}
	for _, e := range events {
		_, _ = fmt.Fprintf(out, "%s  %-9s  %s  base=%s preset=%s\n",
			e.Timestamp.Local().Format(time.DateTime), e.Type, e.BuildID,
			e.Metadata["base_path"], e.Metadata["preset"])
	}
	return nil
}
