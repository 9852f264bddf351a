package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sensehel/senselog/internal/backup"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all tokens, attributes, and subscriptions as JSONL to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		return backup.ExportJSONL(context.Background(), st, os.Stdout)
	},
}
