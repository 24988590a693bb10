// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log"
	"os"
	"runtime"

	"github.com/containerd/console"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/attnviz/attnviz/envconfig"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	cobra.EnableCommandSorting = false

	if runtime.GOOS == "windows" && term.IsTerminal(int(os.Stdout.Fd())) {
		// virtuelle Terminal-Sequenzen fuer die Farbausgabe aktivieren
		console.ConsoleFromFile(os.Stdin) //nolint:errcheck
	}

	rootCmd := &cobra.Command{
		Use:           "attnviz",
		Short:         "Transformer attention visualizer",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	// Commands erstellen
	serveCmd := newServeCmd()
	renderCmd := newRenderCmd()
	runCmd := newRunCmd()
	historyCmd := newHistoryCmd()
	showCmd := newShowCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	envs := []envconfig.EnvVar{envVars["ATTNVIZ_HOST"]}

	for _, cmd := range []*cobra.Command{
		serveCmd,
		renderCmd,
		runCmd,
		historyCmd,
		showCmd,
	} {
		switch cmd {
		case runCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["ATTNVIZ_HOST"], envVars["ATTNVIZ_HEALTH_INTERVAL"]})
		case serveCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["ATTNVIZ_DEBUG"],
				envVars["ATTNVIZ_HOST"],
				envVars["ATTNVIZ_ORIGINS"],
				envVars["ATTNVIZ_D_MODEL"],
				envVars["ATTNVIZ_NHEAD"],
				envVars["ATTNVIZ_DIM_FEEDFORWARD"],
				envVars["ATTNVIZ_DROPOUT"],
				envVars["ATTNVIZ_SEED"],
				envVars["ATTNVIZ_HISTORY"],
				envVars["ATTNVIZ_NOHISTORY"],
			})
		default:
			appendEnvDocs(cmd, envs)
		}
	}

	rootCmd.AddCommand(
		serveCmd,
		renderCmd,
		runCmd,
		historyCmd,
		showCmd,
	)

	return rootCmd
}
