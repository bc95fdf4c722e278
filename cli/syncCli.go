package cli

import (
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	var (
		csvPath     string
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass over the persisted proposals",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			submitter, err := newSubmitter(cfg)
			if err != nil {
				return err
			}
			r, db, err := openReconciler(cfg, submitter)
			if err != nil {
				return err
			}
			defer db.Close()

			outcomes, err := r.Sync(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			err = printOutcomes(out, outcomes, nil)
			if err != nil {
				return err
			}
			if len(csvPath) != 0 {
				err = exportCSV(csvPath, outcomes, nil)
				if err != nil {
					return err
				}
			}
			if showMetrics {
				return printMetrics(out)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "", "export settled transactions to this csv file")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print metrics after the pass")
	return cmd
}
