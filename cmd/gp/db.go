package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/crewbase/gangplank/internal/config"
	"github.com/crewbase/gangplank/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Gangplank database",
		Long:  "Creates the database, migrates all tables, and seeds the employee directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	adminDB, err := db.ConnectAdmin(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
	}
	if err := db.CreateDatabase(adminDB, cfg.DB.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %q ready\n", cfg.DB.Database)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(conn); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migrated all tables")

	if len(cfg.Employees) > 0 {
		if err := db.SeedEmployees(conn, cfg.Employees); err != nil {
			return err
		}
		fmt.Fprintf(out, "Seeded %d employee(s)\n", len(cfg.Employees))
	}
	return nil
}

func newDBResetCmd() *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the Gangplank database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, force bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !force {
		fmt.Fprintf(out, "This drops database %q and all checklist data. Continue? [y/N] ", cfg.DB.Database)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(out, "Aborted")
			return nil
		}
	}

	adminDB, err := db.ConnectAdmin(cfg.DB)
	if err != nil {
		return fmt.Errorf("connect to %s:%d: %w", cfg.DB.Host, cfg.DB.Port, err)
	}
	if err := db.DropDatabase(adminDB, cfg.DB.Database); err != nil {
		return err
	}
	fmt.Fprintf(out, "Dropped %q\n", cfg.DB.Database)

	return runDBInit(cmd, configPath)
}
