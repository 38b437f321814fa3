// @title           Clinic EHR API
// @version         1.0
// @description     Patients, encounters and prescriptions behind role-gated cookie sessions, with an audit trail of sensitive access.
// @BasePath        /api
//
// @securityDefinitions.apikey CookieAuth
// @in                         cookie
// @name                       token
package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ehr-server",
		Short:        "Clinic EHR API server",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
