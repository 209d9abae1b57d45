package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"backlog-planner/internal/model"
)

func casesCmd(a *app) *cobra.Command {
	var style string
	cmd := &cobra.Command{
		Use:   "cases",
		Short: "List design cases, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cases, err := a.journal.DesignCases(cmd.Context(), style)
			if err != nil {
				return err
			}
			if len(cases) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no design cases")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tROOM\tSTYLES\tMOOD\tSENTENCE")
			for _, c := range cases {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, dash(c.RoomType), dash(strings.Join(c.Styles, ",")), dash(c.PrimaryMood), c.GoldenSentence)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&style, "style", "s", "", "Only cases tagged with this style")
	cmd.AddCommand(caseAddCmd(a))

	return cmd
}

func caseAddCmd(a *app) *cobra.Command {
	var (
		room     string
		styles   []string
		mood     string
		sentence string
		analysis string
	)
	cmd := &cobra.Command{
		Use:   "add [name...]",
		Short: "Log a design case",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.journal.AddDesignCase(cmd.Context(), model.DesignCase{
				Name:           strings.Join(args, " "),
				RoomType:       room,
				Styles:         styles,
				PrimaryMood:    mood,
				GoldenSentence: sentence,
				Analysis:       analysis,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", c.ID, c.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "Room type")
	cmd.Flags().StringSliceVarP(&styles, "styles", "s", nil, "Style tags, comma separated")
	cmd.Flags().StringVarP(&mood, "mood", "m", "", "Primary mood")
	cmd.Flags().StringVar(&sentence, "sentence", "", "Golden sentence")
	cmd.Flags().StringVar(&analysis, "analysis", "", "Longer analysis")

	return cmd
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
