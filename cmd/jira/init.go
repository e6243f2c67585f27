package main

import (
	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		GroupID:     "setup",
		Short:       "Create an empty document",
		Long:        `Create an empty document at the configured path. An existing document is left untouched.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipAutoInit: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := a.store.Init()
			if err != nil {
				return err
			}
			if created {
				a.success("Created empty document at %s", a.cfg.DB)
			} else {
				a.success("Document already exists at %s", a.cfg.DB)
			}
			return nil
		},
	}
}
