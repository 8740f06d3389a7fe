// Package cmd provides the CLI commands for cloudcost.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cloudcost/internal/config"
	"cloudcost/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cloudcost",
	Short: "Analyze cloud spend and produce cost-optimization recommendations",
	Long: `cloudcost inspects a cloud project's billing and resource inventory
and produces a prioritized list of cost-optimization recommendations:
idle instances, rightsizing opportunities, unused resources, and cost
anomalies, each with an estimated monthly impact.

Examples:
  cloudcost analyze --snapshot project.json
  cloudcost analyze --format json --min-savings 20
  cloudcost catalog`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./cloudcost.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	path := cfgFile
	if path == "" {
		path = "cloudcost.yaml"
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cloudcost version " + version)
	},
}

const version = "0.1.0"
