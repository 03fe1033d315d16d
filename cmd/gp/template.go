package main

import (
	"fmt"

	"github.com/crewbase/gangplank/internal/models"
	"github.com/crewbase/gangplank/internal/template"
	"github.com/spf13/cobra"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Template management commands",
	}

	cmd.AddCommand(newTemplateCreateCmd())
	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateShowCmd())
	cmd.AddCommand(newTemplateAddItemCmd())
	cmd.AddCommand(newTemplateDeleteCmd())
	return cmd
}

func newTemplateCreateCmd() *cobra.Command {
	var configPath, title, description, programType, stage, createdBy string
	var autoAssign, requiresVerification bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a checklist template",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			tpl, err := template.Create(conn, template.CreateOpts{
				Title:                title,
				Description:          description,
				ProgramType:          programType,
				Stage:                models.Stage(stage),
				AutoAssign:           autoAssign,
				RequiresVerification: requiresVerification,
				CreatedBy:            createdBy,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %s: %s\n", tpl.ID, tpl.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&title, "title", "", "template title (required)")
	cmd.Flags().StringVar(&description, "description", "", "template description")
	cmd.Flags().StringVar(&programType, "program", "", "program type tag")
	cmd.Flags().StringVar(&stage, "stage", "prepare", "onboarding stage (prepare, orient, land, integrate, excel)")
	cmd.Flags().StringVar(&createdBy, "by", "", "creating user ID")
	cmd.Flags().BoolVar(&autoAssign, "auto-assign", false, "enable auto-assignment rules for this template")
	cmd.Flags().BoolVar(&requiresVerification, "verify", false, "completed items require verification")
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	var configPath, programType, stage string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List checklist templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			tpls, err := template.List(conn, template.ListFilters{
				ProgramType: programType,
				Stage:       models.Stage(stage),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range tpls {
				verify := ""
				if t.RequiresVerification {
					verify = " [verify]"
				}
				fmt.Fprintf(out, "%s  %-8s %s%s\n", t.ID, t.Stage, t.Title, verify)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&programType, "program", "", "filter by program type")
	cmd.Flags().StringVar(&stage, "stage", "", "filter by stage")
	return cmd
}

func newTemplateShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <template-id>",
		Short: "Show a template and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			tpl, err := template.Get(conn, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s (stage: %s, program: %s)\n", tpl.ID, tpl.Title, tpl.Stage, tpl.ProgramType)
			if tpl.Description != "" {
				fmt.Fprintf(out, "  %s\n", tpl.Description)
			}
			for _, item := range tpl.Items {
				req := " "
				if item.Required {
					req = "*"
				}
				fmt.Fprintf(out, "  %2d. %s %s (%s)\n", item.OrderIndex, req, item.Title, item.ControlledBy)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}

func newTemplateAddItemCmd() *cobra.Command {
	var configPath, title, description, phase, controlledBy string
	var orderIndex int
	var optional bool

	cmd := &cobra.Command{
		Use:   "add-item <template-id>",
		Short: "Add an item to a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			item, err := template.AddItem(conn, args[0], template.ItemOpts{
				Title:        title,
				Description:  description,
				Required:     !optional,
				OrderIndex:   orderIndex,
				Phase:        models.Stage(phase),
				ControlledBy: models.ControlledBy(controlledBy),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added item %s at index %d\n", item.ID, item.OrderIndex)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	cmd.Flags().StringVar(&title, "title", "", "item title (required)")
	cmd.Flags().StringVar(&description, "description", "", "item description")
	cmd.Flags().StringVar(&phase, "phase", "", "phase tag")
	cmd.Flags().StringVar(&controlledBy, "controlled-by", "employee", "who marks the item complete (employee, hr, both)")
	cmd.Flags().IntVar(&orderIndex, "index", 0, "order index (unique per template)")
	cmd.Flags().BoolVar(&optional, "optional", false, "mark the item as not required")
	return cmd
}

func newTemplateDeleteCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a template without live assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := template.Delete(conn, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted template %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "gangplank.yaml", "path to Gangplank config file")
	return cmd
}
