package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"backlog-planner/internal/model"
	"backlog-planner/internal/service"
)

func addCmd(a *app) *cobra.Command {
	var (
		priority string
		energy   string
		estimate int
		due      string
		goal     string
	)
	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Add a task to the backlog",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := service.TaskInput{Title: strings.Join(args, " "), EstimateMin: estimate, GoalTag: goal}
			if priority != "" {
				p, ok := model.ParsePriority(priority)
				if !ok {
					return fmt.Errorf("unknown priority %q", priority)
				}
				input.Priority = p
			}
			if energy != "" {
				e, ok := model.ParseEnergy(energy)
				if !ok {
					return fmt.Errorf("unknown energy %q", energy)
				}
				input.EnergyNeed = e
			}
			if due != "" {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("due date must look like 2026-11-30: %w", err)
				}
				input.DueDate = &d
			}

			task, err := a.tasks.CreateTask(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", task.ID, task.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority P0..P3 (default P1)")
	cmd.Flags().StringVarP(&energy, "energy", "e", "", "Energy need Low, Med or High (default Med)")
	cmd.Flags().IntVarP(&estimate, "estimate", "m", 0, "Estimate in minutes (default 30)")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date YYYY-MM-DD")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Goal tag")

	return cmd
}

func listCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				tasks []model.Task
				err   error
			)
			if all {
				tasks, err = a.tasks.ListTasks(cmd.Context())
			} else {
				tasks, err = a.tasks.ListPending(cmd.Context())
			}
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "backlog is empty")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRIO\tENERGY\tMIN\tDUE\tDONE\tTITLE")
			for _, t := range tasks {
				dueText := "-"
				if t.DueDate != nil {
					dueText = t.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%t\t%s\n", t.ID, t.Priority, t.EnergyNeed, t.EstimateMin, dueText, t.Completed, t.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed tasks")

	return cmd
}

func doneCmd(a *app) *cobra.Command {
	var undo bool
	cmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.tasks.SetCompleted(cmd.Context(), args[0], !undo)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s completed=%t\n", task.Title, task.Completed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Mark as not completed instead")

	return cmd
}

func rmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := a.tasks.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "no task %s\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}
}

func editCmd(a *app) *cobra.Command {
	var (
		title    string
		priority string
		energy   string
		estimate int
		due      string
		noDue    bool
		goal     string
	)
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var patch model.TaskPatch
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("priority") {
				p, ok := model.ParsePriority(priority)
				if !ok {
					return fmt.Errorf("unknown priority %q", priority)
				}
				patch.Priority = &p
			}
			if flags.Changed("energy") {
				e, ok := model.ParseEnergy(energy)
				if !ok {
					return fmt.Errorf("unknown energy %q", energy)
				}
				patch.EnergyNeed = &e
			}
			if flags.Changed("estimate") {
				patch.EstimateMin = &estimate
			}
			if flags.Changed("due") {
				d, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("due date must look like 2026-11-30: %w", err)
				}
				patch.DueDate = &d
			}
			patch.ClearDueDate = noDue
			if flags.Changed("goal") {
				patch.GoalTag = &goal
			}

			task, err := a.tasks.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s %s %s %dmin\n", task.ID, task.Title, task.Priority, task.EnergyNeed, task.EstimateMin)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "Priority P0..P3")
	cmd.Flags().StringVarP(&energy, "energy", "e", "", "Energy need Low, Med or High")
	cmd.Flags().IntVarP(&estimate, "estimate", "m", 0, "Estimate in minutes")
	cmd.Flags().StringVarP(&due, "due", "d", "", "Due date YYYY-MM-DD")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "Clear the due date")
	cmd.Flags().StringVarP(&goal, "goal", "g", "", "Goal tag")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")

	return cmd
}
