package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Show the knowledge base layout",
	Long: `Lists the root rules file and the documentation folder with file
sizes and per-folder file counts.`,
	Args: cobra.NoArgs,
	RunE: runStructure,
}

func init() {
	rootCmd.AddCommand(structureCmd)
}

func runStructure(cmd *cobra.Command, _ []string) error {
	a, err := requireApp()
	if err != nil {
		return err
	}

	listing, err := a.Knowledge.ListStructure(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list knowledge base: %w", err)
	}
	cmd.Println(listing)
	return nil
}
