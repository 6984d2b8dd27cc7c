package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"carlens/internal/domain"
	"carlens/internal/eventbus"
	"carlens/internal/session"
	"carlens/internal/ui"
)

func newLookupCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lookup MAKE",
		Short: "Look up one make and print the settled result",
		Long: `Runs both lookups for MAKE concurrently and prints the result once both
have settled. Multiple arguments are joined, so "carlens lookup Land Rover"
works without quoting.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLookup(cmd, strings.Join(args, " "), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func (a *app) runLookup(cmd *cobra.Command, input string, asJSON bool) error {
	agg, closeCaches, err := buildAggregator(a.cfg, a.log)
	if err != nil {
		return err
	}
	defer closeCaches()

	bus := eventbus.New(a.log)
	if a.opts.verbose {
		progress := cmd.ErrOrStderr()
		for _, t := range []eventbus.EventType{
			eventbus.EventRecordsSucceeded, eventbus.EventRecordsFailed,
			eventbus.EventImageSucceeded, eventbus.EventImageFailed,
		} {
			bus.Subscribe(t, func(e eventbus.DomainEvent) { printProgress(progress, e) })
		}
	}

	store := session.NewStore(bus, a.log)
	defer store.Close()

	cycle, err := store.Begin(cmd.Context(), input)
	if err != nil {
		bus.Close()
		return errors.New(store.Snapshot().Error)
	}

	agg.Fetch(cycle.Ctx, cycle.Token, cycle.Manufacturer, func(e domain.BranchEvent) {
		store.Apply(e)
	})
	// drain progress output before the result
	bus.Close()

	state := store.Snapshot()
	a.log.Debug("lookup settled",
		zap.String("cycle", cycle.ID),
		zap.Stringer("outcome", state.Outcome()))

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(state.Presentation())
	}
	_, err = io.WriteString(out, ui.PagerContent(state, agg.Kind()))
	return err
}

func printProgress(w io.Writer, e eventbus.DomainEvent) {
	switch ev := e.(type) {
	case domain.RecordsSucceededEvent:
		fmt.Fprintf(w, "records: %d found\n", len(ev.Records))
	case domain.RecordsFailedEvent:
		fmt.Fprintf(w, "records: %s\n", ev.Message)
	case domain.ImageSucceededEvent:
		fmt.Fprintf(w, "image: %s\n", ev.Image.URL)
	case domain.ImageFailedEvent:
		fmt.Fprintf(w, "image: %s\n", ev.Message)
	}
}
