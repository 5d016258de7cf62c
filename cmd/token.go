package cmd

import (
	"fmt"

	"chatcheck/internal/auth"
	"chatcheck/internal/config"

	"github.com/spf13/cobra"
)

// newTokenCmd creates the command that resolves a credential for one identity.
func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token <app-id>",
		Short: "Resolve a bearer credential for an identity",
		Long: `Resolves a credential for the given identity exactly the way the suite
would: mock mode short-circuits, user identities read their pre-provisioned
token from the environment, application identities run the client-credentials
flow against the configured tenant.

The token value is never printed; only a redacted preview is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			identity, err := openRegistry().Get(args[0])
			if err != nil {
				return err
			}
			if identity == nil {
				return fmt.Errorf("identity %q not found in identity source", args[0])
			}

			opts := []auth.Option{
				auth.WithRetryPolicy(auth.RetryPolicy{
					MaxAttempts:   cfg.RetryMaxAttempts,
					InitialDelay:  cfg.RetryInitialDelay,
					BackoffFactor: cfg.RetryBackoffFactor,
				}),
			}
			if cfg.MockAuth {
				opts = append(opts, auth.WithMockToken(cfg.MockAuthToken))
			}
			provider := auth.NewProvider(opts...)

			cred, err := provider.Resolve(cmd.Context(), identity)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "identity:  %s (%s)\n", identity.ID, identity.Name)
			fmt.Fprintf(out, "strategy:  %s\n", provider.StrategyFor(identity))
			fmt.Fprintf(out, "token:     %s\n", cred.Token.Preview())
			if cred.ExpiresAt.IsZero() {
				fmt.Fprintln(out, "expires:   n/a")
			} else {
				fmt.Fprintf(out, "expires:   %s\n", cred.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
}
