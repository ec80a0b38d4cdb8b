package cmd

import (
	"fmt"

	dotenv "github.com/dsh2dsh/expx-dotenv"
	"github.com/spf13/cobra"

	"github.com/dsh2dsh/edinet/cmd/db"
)

// SchemaSQL contains db/schema.sql via main.go
var SchemaSQL string

var rootCmd = cobra.Command{
	Use:   "edinet",
	Short: "Fetch financial statements from the EDINET disclosure archive",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvs()
	},
}

func init() {
	rootCmd.AddCommand(&db.Cmd)
}

func Execute() {
	db.SchemaSQL = SchemaSQL
	cobra.CheckErr(rootCmd.Execute())
}

func loadEnvs() error {
	if err := dotenv.New().WithDepth(1).Load(); err != nil {
		return fmt.Errorf("load edinet envs: %w", err)
	}
	return nil
}
