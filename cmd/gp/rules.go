package main

import (
	"fmt"
	"strings"

	"github.com/crewbase/gangplank/internal/autoassign"
	"github.com/crewbase/gangplank/internal/directory"
	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Auto-assignment rule commands",
	}

	cmd.AddCommand(newRulesAddCmd())
	cmd.AddCommand(newRulesListCmd())
	cmd.AddCommand(newRulesDeleteCmd())
	cmd.AddCommand(newRulesRunCmd())
	return cmd
}

func newRulesAddCmd() *cobra.Command {
	var configPath string
	var departments, programs, stages []string
	var dueInDays int
	var autoNotify bool

	cmd := &cobra.Command{
		Use:   "add <template-id>",
		Short: "Attach an auto-assignment rule to a template",
		Long:  "Empty constraint lists are wildcards; non-empty lists are allow-lists combined conjunctively.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			opts := autoassign.RuleOpts{
				TemplateID:   args[0],
				Departments:  departments,
				ProgramTypes: programs,
				Stages:       stages,
				AutoNotify:   autoNotify,
			}
			if cmd.Flags().Changed("due-in-days") {
				opts.DueInDays = &dueInDays
			}
			rule, err := autoassign.CreateRule(conn, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created rule %s for template %s\n", rule.ID, rule.TemplateID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringSliceVar(&departments, "departments", nil, "department allow-list (empty = any)")
	cmd.Flags().StringSliceVar(&programs, "programs", nil, "program-type allow-list (empty = any)")
	cmd.Flags().StringSliceVar(&stages, "stages", nil, "stage allow-list (empty = any)")
	cmd.Flags().IntVar(&dueInDays, "due-in-days", 0, "due date offset from assignment day")
	cmd.Flags().BoolVar(&autoNotify, "notify", false, "notify the assignee on auto-assignment")
	return cmd
}

func newRulesListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list <template-id>",
		Short: "List a template's auto-assignment rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			rules, err := autoassign.ListRules(conn, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range rules {
				due := "-"
				if r.DueInDays != nil {
					due = fmt.Sprintf("+%dd", *r.DueInDays)
				}
				fmt.Fprintf(out, "%s  depts=%s programs=%s stages=%s due=%s\n",
					r.ID, setWord(r.Departments), setWord(r.ProgramTypes), setWord(r.Stages), due)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func setWord(set []string) string {
	if len(set) == 0 {
		return "any"
	}
	return strings.Join(set, ",")
}

func newRulesDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <rule-id>",
		Short: "Delete an auto-assignment rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := autoassign.DeleteRule(conn, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted rule %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func newRulesRunCmd() *cobra.Command {
	var configPath, user string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the auto-assignment matcher for a user",
		Long:  "Idempotent: templates with an existing active assignment are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			emitter, _, err := buildEmitter(conn, cfg)
			if err != nil {
				return err
			}
			results, err := autoassign.Run(conn, emitter, directory.NewStore(conn), user)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No rules matched")
				return nil
			}
			for _, r := range results {
				if r.Skipped {
					fmt.Fprintf(out, "%s  skipped (active assignment exists)\n", r.TemplateID)
					continue
				}
				fmt.Fprintf(out, "%s  assigned (%s)\n", r.TemplateID, r.Assignment.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&user, "user", "", "target user ID (required)")
	return cmd
}
