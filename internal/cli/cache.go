package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/burnratehq/burnrate/internal/config"
	"github.com/burnratehq/burnrate/internal/display"
	"github.com/burnratehq/burnrate/internal/provider"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage cached usage snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheShow()
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cached snapshot state per provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCacheShow()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [provider]",
	Short: "Clear cached data for one or all providers",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) > 0 {
			target = args[0]
		}
		return runCacheClear(target)
	},
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func cacheEntries() []display.CacheEntryJSON {
	st := newStore()
	staleMinutes := config.Get().Fetch.StaleThresholdMinutes

	entries := make([]display.CacheEntryJSON, 0, len(provider.ListIDs()))
	for _, pid := range provider.ListIDs() {
		entry := display.CacheEntryJSON{Provider: pid}
		if snap := st.LoadSnapshot(pid); snap != nil {
			entry.Present = true
			entry.FetchedAt = snap.FetchedAt.UTC().Format(time.RFC3339)
			entry.Stale = snap.IsStale(staleMinutes)
			entry.Age = display.FormatAge(time.Since(snap.FetchedAt))
		}
		entries = append(entries, entry)
	}
	return entries
}

func runCacheShow() error {
	entries := cacheEntries()

	if jsonOutput {
		return display.OutputJSON(outWriter, entries)
	}

	for _, e := range entries {
		switch {
		case !e.Present:
			out("%-12s (empty)\n", e.Provider)
		case e.Stale:
			out("%-12s cached %s ago (stale)\n", e.Provider, e.Age)
		default:
			out("%-12s cached %s ago\n", e.Provider, e.Age)
		}
	}
	return nil
}

func runCacheClear(target string) error {
	st := newStore()

	if target != "" {
		if _, ok := provider.Get(target); !ok {
			return fmt.Errorf("unknown provider: %s", target)
		}
		st.ClearAll(target)
		if jsonOutput {
			return display.OutputJSON(outWriter, display.ActionResultJSON{
				Success: true, Message: "cache cleared", Provider: target,
			})
		}
		out("Cleared cache for %s\n", target)
		return nil
	}

	for _, pid := range provider.ListIDs() {
		st.ClearAll(pid)
	}
	if jsonOutput {
		return display.OutputJSON(outWriter, display.ActionResultJSON{
			Success: true, Message: "cache cleared",
		})
	}
	outln("Cleared cache for all providers")
	return nil
}
