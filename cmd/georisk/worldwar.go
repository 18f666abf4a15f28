package main

import (
	"github.com/spf13/cobra"

	"github.com/rewired-gh/georisk/internal/escalation"
	"github.com/rewired-gh/georisk/internal/monitor"
)

func newWorldWarCmd(a *app) *cobra.Command {
	var (
		countries       []string
		theaters        []string
		baseScore       float64
		escalationScore float64
		save            bool
		notify          bool
	)

	cmd := &cobra.Command{
		Use:   "worldwar",
		Short: "Model escalation of a regional conflict toward global war",
		Long:  "Run the world-war escalation model for a country set: sub-factor scores, combination multiplier, probability band, pathways, thresholds and prevention strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			req := escalation.Request{
				Countries: cleanList(countries),
				Theaters:  cleanList(theaters),
			}
			if len(req.Theaters) == 0 {
				req.Theaters = a.cfg.Escalation.Theaters
			}
			base := a.cfg.Escalation.BaseScore
			if cmd.Flags().Changed("base-score") {
				base = baseScore
			}
			req.BaseScore = &base
			if cmd.Flags().Changed("escalation-score") {
				req.EscalationScore = &escalationScore
			}

			ww, err := a.assessWorldWar(a.cfg.Tables(), req)
			if err != nil {
				return err
			}

			if save || notify {
				store, err := a.openStorage()
				if err != nil {
					return err
				}
				defer a.closeStorage(store)

				if notify {
					mon := monitor.New(store, a.log, a.cfg.Monitor.TrendThreshold, a.cfg.Monitor.PillarAlertThreshold)
					notable, err := mon.TrackWorldWar(ctx, ww)
					if err != nil {
						return err
					}
					if notable {
						if err := a.notify(mon, nil, ww); err != nil {
							a.log.Warn("Failed to send notification: %v", err)
						}
					} else {
						a.log.Debug("World war assessment for %s unchanged, not notifying", ww.CountryKey())
					}
				}

				if save {
					if err := a.save(ctx, store, nil, ww); err != nil {
						return err
					}
				}
			}

			return writeJSON(cmd.OutOrStdout(), ww)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&countries, "countries", nil, "Country codes (comma-separated) [REQUIRED]")
	f.StringSliceVar(&theaters, "theaters", nil, "Conflict theaters (comma-separated)")
	f.Float64Var(&baseScore, "base-score", escalation.DefaultBaseScore, "Regional risk score in [0, 100]")
	f.Float64Var(&escalationScore, "escalation-score", escalation.DefaultEscalationScore, "Escalation pillar score in [0, 100]")
	f.BoolVar(&save, "save", false, "Store the assessment in the history database")
	f.BoolVar(&notify, "notify", false, "Send the assessment to Telegram when it moved since the last stored one")
	_ = cmd.MarkFlagRequired("countries")

	return cmd
}
