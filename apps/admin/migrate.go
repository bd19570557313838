package main

import (
	"github.com/spf13/cobra"

	"github.com/FAHMIDA-78/copo/storage/database"
)

func migrateCmd(cli *commandLine) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.CreateIfNotExist(cli.conf); err != nil {
				return err
			}
			if err := database.Migrate(cli.db, cli.conf); err != nil {
				return err
			}
			logger.Println("migrations applied")
			return nil
		},
	}
}
