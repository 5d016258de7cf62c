package cmd

import (
	"fmt"
	"strings"

	"chatcheck/internal/registry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// newAppsCmd creates the command listing the loaded application identities.
func newAppsCmd() *cobra.Command {
	var (
		role     string
		priority string
		country  string
	)

	cmd := &cobra.Command{
		Use:   "apps",
		Short: "List the application identities from the identity source",
		Long: `Loads and validates the identity source, then prints the matching
identities. Secrets never appear: the source carries environment variable
names, not values, and this listing shows only those names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := openRegistry()

			var opts []registry.FilterOption
			if role != "" {
				opts = append(opts, registry.WithRole(role))
			}
			if priority != "" {
				p := registry.PriorityClass(priority)
				if !p.Valid() {
					return fmt.Errorf("invalid priority %q: must be %q or %q",
						priority, registry.PriorityUser, registry.PriorityApplication)
				}
				opts = append(opts, registry.WithPriority(p))
			}
			if country != "" {
				opts = append(opts, registry.WithCountry(country))
			}

			identities, err := reg.Filter(opts...)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Priority", "Roles", "Country", "History", "Mutualized With"})
			for _, id := range identities {
				mutualized := ""
				if id.Mutualize {
					mutualized = id.MutualizeWith
				}
				t.AppendRow(table.Row{
					id.ID,
					id.Name,
					string(id.Priority),
					strings.Join(id.Roles, ", "),
					id.Country,
					id.FetchHistory,
					mutualized,
				})
			}
			t.SetStyle(table.StyleLight)
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "%d identities\n", len(identities))
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only identities granted this role")
	cmd.Flags().StringVar(&priority, "priority", "", "only identities of this priority class (user, application)")
	cmd.Flags().StringVar(&country, "country", "", "only identities tagged with this country")

	return cmd
}
