package main

import (
	"fmt"
	"strconv"

	"github.com/crewbase/gangplank/internal/directory"
	"github.com/crewbase/gangplank/internal/progress"
	"github.com/spf13/cobra"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Progress and verification commands",
	}

	cmd.AddCommand(newProgressShowCmd())
	cmd.AddCommand(newProgressCompleteCmd())
	cmd.AddCommand(newProgressUncompleteCmd())
	cmd.AddCommand(newProgressVerifyCmd())
	return cmd
}

func newProgressShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <progress-id>",
		Short: "Show a progress item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			id, err := parseProgressID(args[0])
			if err != nil {
				return err
			}
			p, err := progress.Get(conn, id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Item #%d: %s (assignment %s)\n", p.ID, p.Item.Title, p.AssignmentID)
			fmt.Fprintf(out, "  completed=%v verification=%s\n", p.IsCompleted, p.VerificationStatus)
			if p.Notes != "" {
				fmt.Fprintf(out, "  notes: %s\n", p.Notes)
			}
			if p.VerifiedBy != "" {
				fmt.Fprintf(out, "  verified by %s", p.VerifiedBy)
				if p.VerificationNotes != "" {
					fmt.Fprintf(out, ": %s", p.VerificationNotes)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func parseProgressID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("progress id %q is not numeric", arg)
	}
	return uint(id), nil
}

func runSetCompletion(cmd *cobra.Command, configPath, actor, notes, arg string, completed bool) error {
	cfg, conn, err := openDB(configPath)
	if err != nil {
		return err
	}
	emitter, _, err := buildEmitter(conn, cfg)
	if err != nil {
		return err
	}
	id, err := parseProgressID(arg)
	if err != nil {
		return err
	}
	p, err := progress.SetCompletion(conn, emitter, directory.NewStore(conn), progress.CompletionOpts{
		ProgressID: id,
		ActorID:    actor,
		Completed:  completed,
		Notes:      notes,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item %d: completed=%v verification=%s\n", p.ID, p.IsCompleted, p.VerificationStatus)
	return nil
}

func newProgressCompleteCmd() *cobra.Command {
	var configPath, actor, notes string

	cmd := &cobra.Command{
		Use:   "complete <progress-id>",
		Short: "Mark a checklist item complete",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetCompletion(cmd, configPath, actor, notes, args[0], true)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&actor, "actor", "", "acting user ID (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	return cmd
}

func newProgressUncompleteCmd() *cobra.Command {
	var configPath, actor, notes string

	cmd := &cobra.Command{
		Use:   "uncomplete <progress-id>",
		Short: "Mark a checklist item incomplete (resets verification)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSetCompletion(cmd, configPath, actor, notes, args[0], false)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&actor, "actor", "", "acting user ID (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "free-text notes")
	return cmd
}

func newProgressVerifyCmd() *cobra.Command {
	var configPath, actor, notes string
	var reject bool

	cmd := &cobra.Command{
		Use:   "verify <progress-id>",
		Short: "Approve or reject a completed item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			emitter, _, err := buildEmitter(conn, cfg)
			if err != nil {
				return err
			}
			id, err := parseProgressID(args[0])
			if err != nil {
				return err
			}
			p, err := progress.Verify(conn, emitter, directory.NewStore(conn), progress.VerifyOpts{
				ProgressID: id,
				ActorID:    actor,
				Approve:    !reject,
				Notes:      notes,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %d: verification=%s by %s\n", p.ID, p.VerificationStatus, p.VerifiedBy)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&actor, "actor", "", "verifying user ID (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "verification notes")
	cmd.Flags().BoolVar(&reject, "reject", false, "reject instead of approve")
	return cmd
}
