// Package main is the entry point for cc-fallback.
package main

import (
	"context"
	"os"

	"charm.land/fang/v2"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yaml"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "cc-fallback",
	Short: "Automatic provider failover for Claude Code",
	Long: `cc-fallback sits between Claude Code and multiple LLM providers and serves
each request through an ordered list of fallback candidates, retrying and
advancing automatically when a provider fails in a recoverable way.`,
}

func init() {
	// Global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file path (default: ./"+defaultConfigFile+" or ~/.config/cc-fallback/"+defaultConfigFile+")")
}

func main() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
