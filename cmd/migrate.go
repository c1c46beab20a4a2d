package cmd

import (
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(appOptions{migrate: true})
			if err != nil {
				return err
			}
			defer a.Close()
			a.log.Info("schema is up to date")
			return nil
		},
	}
}
