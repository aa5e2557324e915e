package cmd

import (
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/spf13/cobra"

	"github.com/carson-networks/allowance-server/internal/service"
)

func newReconcileCmd(opts *options) *cobra.Command {
	var profileID string

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare cached balances with the ledger",
		Long: `Sums each profile's ledger and compares it with the cached balance.
Drift is reported and never repaired. The exit status is 2 when any
profile drifted.

Example:
  ledgerctl reconcile
  ledgerctl reconcile --profile 6f1c1d7e-8d7a-4d8e-9a55-0d7c5a3f2b11`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id uuid.UUID
			if profileID != "" {
				var err error
				if id, err = uuid.FromString(profileID); err != nil {
					return fmt.Errorf("invalid --profile: %w", err)
				}
			}

			app, err := opts.app()
			if err != nil {
				return err
			}
			defer app.Close()

			var reports []service.ReconcileReport
			if id != uuid.Nil {
				report, err := app.Service.Ledger.Reconcile(cmd.Context(), id)
				if err != nil {
					return err
				}
				reports = append(reports, report)
			} else if reports, err = app.Service.Ledger.ReconcileAll(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			drifted := 0
			for _, r := range reports {
				state := "ok"
				if !r.Consistent() {
					state = "DRIFT " + r.Drift.StringFixed(2)
					drifted++
				}
				fmt.Fprintf(out, "%s cached=%s ledger=%s entries=%d %s\n",
					r.ProfileID, r.Cached.StringFixed(2), r.Ledger.StringFixed(2), r.Entries, state)
			}

			if drifted > 0 {
				return fmt.Errorf("%d of %d profiles: %w", drifted, len(reports), ErrDrift)
			}
			return nil
		},
	}

	reconcileCmd.Flags().StringVar(&profileID, "profile", "", "reconcile a single profile")
	return reconcileCmd
}
