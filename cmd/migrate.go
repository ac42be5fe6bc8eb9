package cmd

import (
	"fmt"

	"media-catalog/feature/catalog"

	"github.com/spf13/cobra"
)

var checkOnly bool

// migrateCmd creates or upgrades the catalog schema.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the catalog schema",
	Long: `Creates the libraries, series, books and read_progress tables or adds missing
columns to them. With --check the schema is only verified.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap()
		if err != nil {
			return err
		}
		defer a.close()

		if !checkOnly {
			a.log.Info("Migrating catalog schema")
			if err := catalog.Migrate(a.db); err != nil {
				return err
			}
		}

		if err := catalog.VerifySchema(a.db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Catalog schema is up to date")
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only verify the schema, do not change it")
	RootCmd.AddCommand(migrateCmd)
}
