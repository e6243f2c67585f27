package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mschirtzinger/jira/internal/models"
	"github.com/mschirtzinger/jira/internal/ui"
)

func newCheckCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "check",
		GroupID: "views",
		Short:   "Check the document for broken references",
		Long: `Check the document for broken references between epics and stories.

Reports stories listed by no epic or by several epics, epics listing missing
stories, ids above last_item_id, ids used by both an epic and a story, and
unknown statuses. Exits non-zero when any problem is found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.store.ReadDB()
			if err != nil {
				return err
			}

			problems := models.CheckIntegrity(doc)
			if asJSON {
				if problems == nil {
					problems = []models.Problem{}
				}
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(problems); err != nil {
					return err
				}
			} else if len(problems) == 0 {
				a.success("Document is consistent (%d epics, %d stories)", len(doc.Epics), len(doc.Stories))
			} else {
				for _, p := range problems {
					fmt.Fprintf(a.out, "%s %s\n", ui.RenderFail("✗"), p)
				}
			}

			if len(problems) > 0 {
				return fmt.Errorf("found %d problem(s)", len(problems))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print problems as JSON")
	return cmd
}
