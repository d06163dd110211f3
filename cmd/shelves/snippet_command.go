package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"shelves/internal/script"
)

func newSnippetCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "snippet",
		Short:       "Print a file-naming script that prefixes paths with the shelf",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), script.RenameSnippet())
			return nil
		},
	}
}
