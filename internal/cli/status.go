package cli

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/burnratehq/burnrate/internal/display"
	"github.com/burnratehq/burnrate/internal/models"
	"github.com/burnratehq/burnrate/internal/provider"
)

const statusTimeout = 10 * time.Second

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show provider service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd.Context())
	},
}

func runStatus(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	statuses := fetchAllStatuses(ctx)

	if jsonOutput {
		return display.OutputStatusJSON(outWriter, statuses)
	}

	for _, pid := range provider.ListIDs() {
		status := statuses[pid]
		symbol := display.StatusSymbol(status.Level, noColor)
		line := symbol + " " + provider.DisplayName(pid)
		if status.Description != "" {
			line += ": " + status.Description
		}
		if status.UpdatedAt != nil {
			line += " (updated " + display.FormatAge(time.Since(*status.UpdatedAt)) + " ago)"
		}
		outln(line)
	}
	return nil
}

// fetchAllStatuses queries every registered provider's status page
// concurrently. A provider that fails to report comes back as unknown.
func fetchAllStatuses(ctx context.Context) map[string]models.ProviderStatus {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		statuses = make(map[string]models.ProviderStatus)
	)

	for pid, p := range provider.All() {
		wg.Add(1)
		go func(pid string, p provider.Provider) {
			defer wg.Done()
			status := p.FetchStatus(ctx)
			mu.Lock()
			statuses[pid] = status
			mu.Unlock()
		}(pid, p)
	}
	wg.Wait()

	return statuses
}
