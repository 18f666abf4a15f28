package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/georisk/internal/models"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		countries []string
		limit     int
		since     time.Duration
		worldWar  bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored assessments for a country set",
		Long:  "Print stored risk assessments newest first, those within --since oldest first, or the latest world-war assessment with --world-war",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			key := models.CountryKey(countries)

			store, err := a.openStorage()
			if err != nil {
				return err
			}
			defer a.closeStorage(store)

			if worldWar {
				ww, err := store.LatestWorldWar(ctx, key)
				if errors.Is(err, models.ErrNotFound) {
					return writeJSON(cmd.OutOrStdout(), nil)
				}
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), ww)
			}

			var list []*models.RiskAssessment
			if since > 0 {
				list, err = store.ListAssessmentsSince(ctx, key, time.Now().Add(-since))
			} else {
				list, err = store.ListAssessments(ctx, key, limit)
			}
			if err != nil {
				return err
			}
			if list == nil {
				list = []*models.RiskAssessment{}
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&countries, "countries", nil, "Country codes (comma-separated) [REQUIRED]")
	f.IntVar(&limit, "limit", 10, "Maximum number of assessments, newest first (0 for all)")
	f.DurationVar(&since, "since", 0, "Only assessments from this long ago, oldest first (e.g. 24h)")
	f.BoolVar(&worldWar, "world-war", false, "Print the latest stored world-war assessment instead")
	_ = cmd.MarkFlagRequired("countries")

	return cmd
}
