package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"backlog-planner/internal/model"
)

func planCmd(a *app) *cobra.Command {
	var (
		energy string
		accept bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show today's plan for an energy level",
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := model.ParseEnergy(energy)
			if !ok {
				return fmt.Errorf("unknown energy %q", energy)
			}

			plan, err := a.plan.Generate(cmd.Context(), level)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if plan.Empty() {
				fmt.Fprintln(out, "nothing to do")
				return nil
			}
			for _, e := range plan.Entries {
				fmt.Fprintf(out, "%-6s %4d  %s  (%s, %s, %dm)\n", e.Slot, e.Score.Total(), e.Task.Title, e.Task.Priority, e.Task.EnergyNeed, e.Task.EstimateMin)
			}

			if !accept {
				return nil
			}
			task, err := a.plan.AcceptMain(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "accepted %s\n", task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&energy, "energy", "e", string(model.EnergyMed), "Current energy: Low, Med or High")
	cmd.Flags().BoolVar(&accept, "accept", false, "Complete the main task and record it in history")

	return cmd
}
