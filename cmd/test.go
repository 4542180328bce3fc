package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to OMDb and Radarr",
	Long:  `Test the connection to the OMDb API and, when enabled, to your Radarr instance.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	fmt.Fprintf(out, "Testing connection to OMDb at %s...\n", cfg.OMDb.URL)
	if err := omdbClient.TestConnection(ctx); err != nil {
		return fmt.Errorf("OMDb connection failed: %w", err)
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	fmt.Fprintf(out, "\nSearch settings:\n")
	fmt.Fprintf(out, "- Max results cap: %d\n", aggregator.MaxResultsCap())
	fmt.Fprintf(out, "- Default results: %d\n", cfg.Search.DefaultResults)
	fmt.Fprintf(out, "- Concurrency: %d\n", cfg.Search.Concurrency)
	if cfg.Search.TaskTimeout > 0 {
		fmt.Fprintf(out, "- Task timeout: %s\n", cfg.Search.TaskTimeout)
	}

	if presets := filterManager.ListFilters(); len(presets) > 0 {
		fmt.Fprintf(out, "\nFilter presets:\n")
		for _, name := range presets {
			line := fmt.Sprintf("  • %s", name)
			if desc := cfg.Filter.Presets[name].Description; desc != "" {
				line += " - " + desc
			}
			fmt.Fprintln(out, line)
		}
	}

	// Connection is tested during client creation
	switch {
	case !cfg.Radarr.Enabled:
		fmt.Fprintln(out, "\nRadarr integration: Disabled")
	case libraryClient == nil:
		fmt.Fprintf(out, "\nRadarr at %s: ✗ unreachable\n", cfg.Radarr.URL)
	default:
		fmt.Fprintf(out, "\nRadarr at %s: ✓ connected\n", cfg.Radarr.URL)
	}

	return nil
}
