package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the embedding and completion services",
	Long:  `Pings the configured embedding and completion providers and reports which are reachable.`,
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if healthService == nil {
		return errors.New("health service not configured")
	}

	report := healthService.Check(cmd.Context())

	if healthJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal health report: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Status: %s\n\n", report.Status)

	names := make([]string, 0, len(report.Components))
	for name := range report.Components {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		state := "up"
		if !report.Components[name] {
			state = "down"
		}
		cmd.Printf("  %-12s %s", name, state)
		if detail := report.Details[name]; detail != "" {
			cmd.Printf(" (%s)", detail)
		}
		cmd.Println()
	}
	return nil
}
