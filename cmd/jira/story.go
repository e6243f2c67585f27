package main

import (
	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/models"
)

func newStoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "story",
		GroupID: "issues",
		Short:   "Create, delete, and update stories",
	}
	cmd.AddCommand(newStoryCreateCmd(a), newStoryDeleteCmd(a), newStoryStatusCmd(a))
	return cmd
}

func newStoryCreateCmd(a *app) *cobra.Command {
	var name, description, status string

	cmd := &cobra.Command{
		Use:   "create <epic-id>",
		Short: "Create a story inside an epic",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			epicID, err := parseID(args[0], "epic")
			if err != nil {
				return err
			}

			story := models.NewStory(name, description)
			if status != "" {
				s, err := models.ParseStatus(status)
				if err != nil {
					return err
				}
				story.Status = s
			}

			id, err := a.store.CreateStory(story, epicID)
			if err != nil {
				return err
			}
			a.success("Created story %d in epic %d: %s", id, epicID, name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Story name")
	cmd.Flags().StringVarP(&description, "description", "d", "", "Story description")
	cmd.Flags().StringVarP(&status, "status", "s", "", "Initial status (default Open)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newStoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <epic-id> <story-id>",
		Short: "Delete a story from its epic",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			epicID, err := parseID(args[0], "epic")
			if err != nil {
				return err
			}
			storyID, err := parseID(args[1], "story")
			if err != nil {
				return err
			}
			if err := a.store.DeleteStory(epicID, storyID); err != nil {
				return err
			}
			a.success("Deleted story %d from epic %d", storyID, epicID)
			return nil
		},
	}
}

func newStoryStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <story-id> <status>",
		Short: "Set the status of a story",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "story")
			if err != nil {
				return err
			}
			status, err := models.ParseStatus(args[1])
			if err != nil {
				return err
			}
			if err := a.store.UpdateStoryStatus(id, status); err != nil {
				return err
			}
			a.success("Story %d is now %s", id, status.Label())
			return nil
		},
	}
}
