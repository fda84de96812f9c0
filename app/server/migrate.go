package main

import (
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"stix-ui/app/server/inits"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

Missing tables and columns are created, then the initial administrator
(admin / password) and the STIX 2.1 open vocabularies are inserted
into empty tables. Running it again changes nothing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, l := bootstrap()
		defer l.Sync()

		// inits.DB migrates while connecting
		if _, err := inits.DB(cfg.System.DBConnectionString); err != nil {
			l.Error("migration failed", zap.Error(err))
			return err
		}

		fmt.Println("Database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
