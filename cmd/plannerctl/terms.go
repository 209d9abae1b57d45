package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"backlog-planner/internal/model"
)

func termsCmd(a *app) *cobra.Command {
	var (
		define string
		edit   string
		remove string
	)
	cmd := &cobra.Command{
		Use:   "terms [query]",
		Short: "Search the glossary, or add a term with --define",
		Long: `Search the glossary by substring, or change it:
  terms Patina --define "surface aged by use"   add a term
  terms --edit ID [new name] [--define text]     rename or redefine a term
  terms --rm ID                                  remove a term`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			query := strings.Join(args, " ")

			switch {
			case remove != "":
				removed, err := a.journal.RemoveTerm(ctx, remove)
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(out, "no term %s\n", remove)
					return nil
				}
				fmt.Fprintf(out, "removed %s\n", remove)
				return nil

			case edit != "":
				var patch model.TermPatch
				if query != "" {
					patch.Term = &query
				}
				if cmd.Flags().Changed("define") {
					patch.Definition = &define
				}
				if patch.Term == nil && patch.Definition == nil {
					return fmt.Errorf("--edit needs a new name or --define")
				}
				term, err := a.journal.UpdateTerm(ctx, edit, patch)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "updated %s: %s\n", term.Term, term.Definition)
				return nil

			case define != "":
				if query == "" {
					return fmt.Errorf("a term name is required with --define")
				}
				term, err := a.journal.AddTerm(ctx, query, define)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "added %s %s\n", term.ID, term.Term)
				return nil
			}

			terms, err := a.journal.SearchTerms(ctx, query)
			if err != nil {
				return err
			}
			for _, t := range terms {
				fmt.Fprintf(out, "%s  %s: %s\n", t.ID, t.Term, t.Definition)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&define, "define", "", "Definition for a new or edited term")
	cmd.Flags().StringVar(&edit, "edit", "", "Update the term with this id")
	cmd.Flags().StringVar(&remove, "rm", "", "Remove the term with this id")
	cmd.MarkFlagsMutuallyExclusive("edit", "rm")

	return cmd
}
