package main

import (
	"fmt"
	"time"

	"github.com/crewbase/gangplank/internal/assignment"
	"github.com/crewbase/gangplank/internal/directory"
	"github.com/spf13/cobra"
)

func newAssignCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Assignment management commands",
	}

	cmd.AddCommand(newAssignCreateCmd())
	cmd.AddCommand(newAssignBulkCmd())
	cmd.AddCommand(newAssignListCmd())
	cmd.AddCommand(newAssignShowCmd())
	cmd.AddCommand(newAssignRevokeCmd())
	return cmd
}

func parseDueFlag(due string) (*time.Time, error) {
	if due == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", due)
	if err != nil {
		return nil, fmt.Errorf("due date %q is not YYYY-MM-DD", due)
	}
	return &t, nil
}

func newAssignCreateCmd() *cobra.Command {
	var configPath, user, templateID, due, by string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Assign a template to a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			emitter, _, err := buildEmitter(conn, cfg)
			if err != nil {
				return err
			}
			dueDate, err := parseDueFlag(due)
			if err != nil {
				return err
			}
			a, err := assignment.Assign(conn, emitter, assignment.AssignOpts{
				UserID:     user,
				TemplateID: templateID,
				DueDate:    dueDate,
				AssignedBy: by,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Assigned %s to %s (%s)\n", a.TemplateID, a.UserID, a.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&user, "user", "", "assignee user ID (required)")
	cmd.Flags().StringVar(&templateID, "template", "", "template ID (required)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&by, "by", "", "assigning user ID")
	return cmd
}

func newAssignBulkCmd() *cobra.Command {
	var configPath, templateID, due, by string
	var users []string

	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Assign a template to multiple users",
		Long:  "Each user succeeds or fails independently; one conflict never blocks the rest.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			emitter, _, err := buildEmitter(conn, cfg)
			if err != nil {
				return err
			}
			dueDate, err := parseDueFlag(due)
			if err != nil {
				return err
			}
			results := assignment.BulkAssign(conn, emitter, templateID, users, dueDate, by)
			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(out, "%-12s FAILED: %v\n", r.UserID, r.Err)
					continue
				}
				fmt.Fprintf(out, "%-12s ok (%s)\n", r.UserID, r.Assignment.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&templateID, "template", "", "template ID (required)")
	cmd.Flags().StringSliceVar(&users, "users", nil, "comma-separated assignee user IDs")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&by, "by", "", "assigning user ID")
	return cmd
}

func newAssignListCmd() *cobra.Command {
	var configPath, user, department, team string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List assignments by user, department, or team",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}

			var views []assignment.View
			switch {
			case user != "":
				views, err = assignment.ListForUser(conn, user)
			case department != "":
				views, err = assignment.ListForDepartment(conn, directory.NewStore(conn), department)
			case team != "":
				views, err = assignment.ListForTeam(conn, directory.NewStore(conn), team)
			default:
				return fmt.Errorf("one of --user, --department, or --team is required")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, v := range views {
				due := "-"
				if v.DueDate != nil {
					due = v.DueDate.Format("2006-01-02")
				}
				fmt.Fprintf(out, "%s  %-12s %-11s %3d%%  due %s  %s\n",
					v.ID, v.UserID, v.Status, v.Percentage, due, v.Template.Title)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&user, "user", "", "filter by assignee")
	cmd.Flags().StringVar(&department, "department", "", "filter by department")
	cmd.Flags().StringVar(&team, "team", "", "filter by team")
	return cmd
}

func newAssignShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <assignment-id>",
		Short: "Show an assignment with per-item progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			v, err := assignment.Get(conn, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s -> %s  %d%% (%s)\n", v.ID, v.Template.Title, v.UserID, v.Percentage, v.Status)
			for _, p := range v.Progress {
				mark := " "
				if p.IsCompleted {
					mark = "x"
				}
				fmt.Fprintf(out, "  [%s] #%d %s (%s/%s)\n", mark, p.ID, p.Item.Title, boolWord(p.IsCompleted), p.VerificationStatus)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func boolWord(b bool) string {
	if b {
		return "completed"
	}
	return "open"
}

func newAssignRevokeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "revoke <assignment-id>",
		Short: "Revoke an assignment and its progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := assignment.Delete(conn, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked assignment %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}
