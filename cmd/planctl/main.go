// Command planctl runs the planning engine against local catalog and plan files,
// and performs database chores (migrations, catalog seeding).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	catalogPath string
	lang        string
	jsonOutput  bool
)

var rootCmd = &cobra.Command{
	Use:   "planctl",
	Short: "Pilgrimage planner operator CLI",
	Long: `planctl drives the itinerary engine from the command line.

Catalog data comes from a YAML seed file (--catalog); plans are YAML files
listing item references. Database commands read DATABASE_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "catalog.yaml", "Path to the catalog seed file")
	rootCmd.PersistentFlags().StringVar(&lang, "lang", "en", "Display language")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output machine-readable JSON")

	rootCmd.AddCommand(candidatesCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(distributeCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
