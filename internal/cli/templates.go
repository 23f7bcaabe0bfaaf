package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trafficlens/trafficlens/internal/prompt"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage prompt templates",
}

var templatesInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the built-in prompt templates to ~/.trafficlens/templates",
	Long: `Writes the built-in templates to ~/.trafficlens/templates so they can be
customized. Existing files are never overwritten.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := prompt.InstallBuiltinTemplates(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Templates installed to ~/.trafficlens/templates")
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesInstallCmd)
}
