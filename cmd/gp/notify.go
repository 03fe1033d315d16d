package main

import (
	"fmt"
	"strconv"

	"github.com/crewbase/gangplank/internal/notify"
	"github.com/spf13/cobra"
)

func newNotifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "In-app notification commands",
	}

	cmd.AddCommand(newNotifyListCmd())
	cmd.AddCommand(newNotifyReadCmd())
	return cmd
}

func newNotifyListCmd() *cobra.Command {
	var configPath, user, kind string
	var unread bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			notifications, err := notify.NewStore(conn).List(user, notify.ListFilters{
				Kind:       kind,
				UnreadOnly: unread,
			})
			if err != nil {
				return err
			}
			if len(notifications) == 0 {
				fmt.Fprintln(out, "No notifications")
				return nil
			}
			for _, n := range notifications {
				mark := " "
				if !n.Read {
					mark = "*"
				}
				fmt.Fprintf(out, "%s #%d %-20s %s  %s\n",
					mark, n.ID, n.Kind, n.CreatedAt.Format("2006-01-02 15:04"), n.Payload)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&user, "user", "", "target user ID (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "filter by notification kind")
	cmd.Flags().BoolVar(&unread, "unread", false, "only unread notifications")
	return cmd
}

func newNotifyReadCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "read <notification-id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("notification id %q is not numeric", args[0])
			}
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := notify.NewStore(conn).MarkRead(uint(id)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked notification %d read\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}
