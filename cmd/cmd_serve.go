// cmd_serve.go - Server Funktionen
// Hauptfunktionen: RunServer, versionHandler
package cmd

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/attnviz/attnviz/api"
	"github.com/attnviz/attnviz/envconfig"
	"github.com/attnviz/attnviz/server"
	"github.com/attnviz/attnviz/version"
)

// RunServer - Startet den attnviz-Server
func RunServer(_ *cobra.Command, _ []string) error {
	ln, err := net.Listen("tcp", envconfig.Host().Host)
	if err != nil {
		return err
	}

	err = server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}

	return err
}

// versionHandler - Zeigt die Version an
func versionHandler(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return
	}

	serverVersion, err := client.Version(cmd.Context())
	if err != nil {
		fmt.Fprintln(w, "Warning: could not connect to a running attnviz instance")
	}

	if serverVersion != "" {
		fmt.Fprintf(w, "attnviz version is %s\n", serverVersion)
	}

	if serverVersion != version.Version {
		fmt.Fprintf(w, "Warning: client version is %s\n", version.Version)
	}
}

// newServeCmd - Erstellt den serve Command
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Aliases: []string{"start"},
		Short:   "Start the attnviz backend",
		Args:    cobra.ExactArgs(0),
		RunE:    RunServer,
	}
}
