package cmd

import (
	"fmt"

	"chatcheck/internal/mutual"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newPairsCmd creates the command listing derived mutualization pairs.
func newPairsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pairs",
		Short: "List the mutualization pairs derived from the identity source",
		Long: `Derives every (origin, dependent) mutualization pair from the loaded
identity set. The dependent identity is expected to see the origin's
conversations in its chat history. An empty result means the current
identity set carries no mutualization links.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			identities, err := openRegistry().Load()
			if err != nil {
				return err
			}

			pairs := mutual.FindPairs(identities)
			if len(pairs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no mutualization pairs")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Origin", "Origin Name", "Dependent", "Dependent Name"})
			for _, pair := range pairs {
				t.AppendRow(table.Row{
					pair.Origin.ID,
					pair.Origin.Name,
					pair.Dependent.ID,
					pair.Dependent.Name,
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
