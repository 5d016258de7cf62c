package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newValidateCmd creates the command that checks the identity source.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the identity source without running anything",
		Long: `Loads the identity source and runs the full schema validation: required
fields, priority classes, per-class OAuth references, mutualization links
and duplicate ids. A single invalid record fails the whole source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			identities, err := openRegistry().Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d identities valid\n", len(identities))
			return nil
		},
	}
}
