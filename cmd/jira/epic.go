package main

import (
	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/models"
)

func newEpicCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "epic",
		GroupID: "issues",
		Short:   "Create, delete, and update epics",
	}
	cmd.AddCommand(newEpicCreateCmd(a), newEpicDeleteCmd(a), newEpicStatusCmd(a))
	return cmd
}

func newEpicCreateCmd(a *app) *cobra.Command {
	var name, description, status string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an epic",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			epic := models.NewEpic(name, description)
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				epic.Status = s
			}

			id, err := a.store.CreateEpic(epic)
			if err != nil {
				return err
			}
			a.success("Created epic %d: %s", id, name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Epic name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Epic description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default Open)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEpicDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <epic-id>",
		Short: "Delete an epic and all of its stories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "epic")
			if err != nil {
				return err
			}
			if err := a.store.DeleteEpic(id); err != nil {
				return err
			}
			a.success("Deleted epic %d", id)
			return nil
		},
	}
}

func newEpicStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <epic-id> <status>",
		Short: "Set the status of an epic",
		Long: `Set the status of an epic.

Status is one of Open, InProgress, Resolved, Closed (case-insensitive; "in progress",
"in-progress" and the menu numbers 1-4 also work).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "epic")
			if err != nil {
				return err
			}
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.store.UpdateEpicStatus(id, status); err != nil {
				return err
			}
			a.success("Epic %d is now %s", id, status.Label())
			return nil
		},
	}
}
