package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "plannerctl",
		Short:         "Offline access to the backlog planner database",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}
	root.PersistentFlags().StringVar(&a.dsn, "db", "", "SQLite database path (default: DATABASE_URL or daily_planner.db)")

	root.AddCommand(addCmd(a))
	root.AddCommand(listCmd(a))
	root.AddCommand(editCmd(a))
	root.AddCommand(doneCmd(a))
	root.AddCommand(rmCmd(a))
	root.AddCommand(planCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(importCmd(a))
	root.AddCommand(termsCmd(a))
	root.AddCommand(casesCmd(a))
	return root
}
