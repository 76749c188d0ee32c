package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wolfbot/internal/ui"
)

const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:           "wolfsim",
	Short:         "Play werewolf games between bots",
	Long:          "wolfsim runs complete werewolf games between bots on the same engine the server uses and reports who won.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	rootCmd.AddCommand(
		newPlayCmd(),
		newSetupsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
