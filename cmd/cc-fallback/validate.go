package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omarluq/cc-fallback/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the cc-fallback configuration",
	Long: `Load and validate the configuration file, then print the resolved
fallback candidate list in priority order.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	candidates, err := cfg.Fallback.ParseCandidates()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: ok\n", configPath)
	fmt.Fprintf(out, "failover enabled: %t, max_retries: %d, retry_delay: %s\n",
		cfg.Fallback.IsEnabled(), cfg.Fallback.GetMaxRetries(), cfg.Fallback.GetRetryDelay())

	for i, candidate := range candidates {
		marker := "fallback"
		if i == 0 {
			marker = "primary"
		}
		fmt.Fprintf(out, "  %d. %s (%s)\n", i+1, candidate.Key(), marker)
	}

	return nil
}
