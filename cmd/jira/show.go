package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/db"
	"github.com/mschirtzinger/jira/internal/models"
	"github.com/mschirtzinger/jira/internal/ui"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		format string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "show [epic-id]",
		GroupID: "views",
		Short:   "Print the document or one epic",
		Long: `Print all epics with their stories, or a single epic with its description.

With --format json, yaml or toml the whole document is printed in that file
format instead, which can be redirected into a new document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				format = "json"
			}

			doc, err := a.store.ReadDB()
			if err != nil {
				return err
			}

			if format != "" && format != "table" {
				if len(args) > 0 {
					return fmt.Errorf("--format %s prints the whole document; drop the epic id", format)
				}
				codec, err := db.CodecByName(format)
				if err != nil {
					return err
				}
				data, err := codec.Marshal(doc)
				if err != nil {
					return err
				}
				_, err = a.out.Write(data)
				return err
			}

			if len(args) == 1 {
				id, err := parseID(args[0], "epic")
				if err != nil {
					return err
				}
				return printEpic(a.out, doc, id)
			}
			printDocument(a.out, doc)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json, yaml, or toml")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Shorthand for --format json")
	return cmd
}

func printDocument(w io.Writer, doc models.DBState) {
	if len(doc.Epics) == 0 {
		fmt.Fprintln(w, "No epics yet. Create one with: jira epic create --name <name>")
		return
	}

	fmt.Fprintf(w, "%s%s%s\n", ui.ColumnString("ID", 8), ui.ColumnString("STATUS", 14), "NAME")
	for _, id := range sortedKeys(doc.Epics) {
		epic := doc.Epics[id]
		fmt.Fprintf(w, "%s%s%s\n",
			ui.ColumnString(strconv.FormatUint(uint64(id), 10), 8),
			ui.ColumnString(epic.Status.Label(), 14),
			epic.Name)

		for _, storyID := range epic.Stories {
			story, ok := doc.Stories[storyID]
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %s%s%s\n",
				ui.ColumnString(strconv.FormatUint(uint64(storyID), 10), 6),
				ui.ColumnString(story.Status.Label(), 14),
				story.Name)
		}
	}
}

func printEpic(w io.Writer, doc models.DBState, id uint32) error {
	epic, ok := doc.Epics[id]
	if !ok {
		return fmt.Errorf("epic %d: %w", id, db.ErrEpicNotFound)
	}

	fmt.Fprintf(w, "%s %d: %s\n", ui.RenderAccent("Epic"), id, epic.Name)
	fmt.Fprintf(w, "Status: %s\n", epic.Status.Label())
	if epic.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", epic.Description)
	}

	fmt.Fprintf(w, "Stories (%d):\n", len(epic.Stories))
	for _, storyID := range epic.Stories {
		story, ok := doc.Stories[storyID]
		if !ok {
			fmt.Fprintf(w, "  %d  %s\n", storyID, ui.RenderWarn("(missing)"))
			continue
		}
		fmt.Fprintf(w, "  %s%s%s\n",
			ui.ColumnString(strconv.FormatUint(uint64(storyID), 10), 6),
			ui.ColumnString(story.Status.Label(), 14),
			story.Name)
	}
	return nil
}

func parseID(arg, what string) (uint32, error) {
	n, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return uint32(n), nil
}

func sortedKeys[V any](m map[uint32]V) []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
