// libctl is the operator command line for the library service.
// It talks to the same Postgres database as the HTTP server, so it
// can seed a catalog, mint invites and create the first admin before
// the server is ever started.
package main

import (
	"fmt"
	"os"

	"github.com/MPfria02/Library-Management-System-sub001/config"
	"github.com/MPfria02/Library-Management-System-sub001/db"

	"github.com/spf13/cobra"
)

var store *db.Repo

var rootCmd = &cobra.Command{
	Use:   "libctl",
	Short: "Operator tooling for the library service",
	Long: `libctl manages the library database directly.

Environment is read from .env / process env the same way the server
reads it (DB_HOST, DB_USER, DB_PASSWORD, DB_NAME, DB_PORT).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadEnv()
		store = db.NewRepo(db.ConnectDB())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
