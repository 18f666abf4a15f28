package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rewired-gh/georisk/internal/escalation"
	"github.com/rewired-gh/georisk/internal/models"
	"github.com/rewired-gh/georisk/internal/monitor"
	"github.com/rewired-gh/georisk/internal/pillars"
	"github.com/rewired-gh/georisk/internal/reference"
	"github.com/rewired-gh/georisk/internal/risk"
	"github.com/rewired-gh/georisk/internal/storage"
)

// assessOutput is the JSON document printed by the assess command.
type assessOutput struct {
	Assessment *models.RiskAssessment     `json:"assessment"`
	WorldWar   *models.WorldWarAssessment `json:"world_war,omitempty"`
	Change     *models.RiskChange         `json:"change,omitempty"`
	// WorldWarNotable is set under --notify when the world-war result moved since the last stored one.
	WorldWarNotable bool `json:"world_war_notable,omitempty"`
}

type assessOptions struct {
	countries     []string
	gti           float64
	gtiConfidence float64
	events        []string
	vulnerability []float64
	systemicRisk  float64
	pillarScores  []string
	theaters      []string
	worldWar      bool
	save          bool
	notify        bool
}

func newAssessCmd(a *app) *cobra.Command {
	var opts assessOptions

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Assess geopolitical risk for a country set",
		Long:  "Score the five risk pillars for the given countries, aggregate them into an overall risk level and derive risk factors, scenarios and recommendations",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := risk.Request{Countries: cleanList(opts.countries)}

			scores, err := parsePillarScores(opts.pillarScores)
			if err != nil {
				return err
			}
			req.Scores = scores

			if cmd.Flags().Changed("gti") {
				req.Providers = append(req.Providers, pillars.Narrative(opts.gti, opts.gtiConfidence))
			}
			if len(opts.events) > 0 {
				req.Providers = append(req.Providers, pillars.EventLevels(cleanList(opts.events)))
			}
			if len(opts.vulnerability) > 0 {
				req.Providers = append(req.Providers, pillars.Network(opts.vulnerability, opts.systemicRisk))
			}

			return a.runAssess(cmd, req, opts)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&opts.countries, "countries", nil, "Country codes (comma-separated) [REQUIRED]")
	f.Float64Var(&opts.gti, "gti", 0, "Geopolitical Tension Index in [-100, 100]")
	f.Float64Var(&opts.gtiConfidence, "gti-confidence", 0.7, "Confidence of the tension index")
	f.StringSliceVar(&opts.events, "events", nil, "Predicted event risk levels (Low/Medium/High/Critical)")
	f.Float64SliceVar(&opts.vulnerability, "vulnerability", nil, "Network vulnerability scores in [0, 1]")
	f.Float64Var(&opts.systemicRisk, "systemic-risk", 0, "Network systemic risk in [0, 2]")
	f.StringArrayVar(&opts.pillarScores, "pillar", nil, "Pillar override name=score:confidence (repeatable)")
	f.StringSliceVar(&opts.theaters, "theaters", nil, "Conflict theaters for the world-war analysis")
	f.BoolVar(&opts.worldWar, "world-war", false, "Also run the world-war escalation analysis")
	f.BoolVar(&opts.save, "save", false, "Store the assessment in the history database")
	f.BoolVar(&opts.notify, "notify", false, "Compare with the last stored assessment and send alerts")
	_ = cmd.MarkFlagRequired("countries")

	return cmd
}

func (a *app) runAssess(cmd *cobra.Command, req risk.Request, opts assessOptions) error {
	ctx := cmd.Context()

	calc, err := risk.New(a.cfg.Tables(),
		risk.WithLogger(a.log),
		risk.WithRecorder(a.metrics),
		risk.WithNeutralScore(a.cfg.Risk.DefaultScore, a.cfg.Risk.DefaultConfidence),
	)
	if err != nil {
		return err
	}

	assessment, err := calc.Assess(req)
	if err != nil {
		return err
	}
	out := assessOutput{Assessment: assessment}

	if opts.worldWar {
		theaters := cleanList(opts.theaters)
		if len(theaters) == 0 {
			theaters = a.cfg.Escalation.Theaters
		}
		out.WorldWar, err = a.assessWorldWar(calc.Tables(), escalation.FromAssessment(assessment, theaters))
		if err != nil {
			return err
		}
	}

	if opts.save || opts.notify {
		store, err := a.openStorage()
		if err != nil {
			return err
		}
		defer a.closeStorage(store)

		if opts.notify {
			mon := monitor.New(store, a.log, a.cfg.Monitor.TrendThreshold, a.cfg.Monitor.PillarAlertThreshold)
			out.Change, err = mon.Track(ctx, assessment)
			if err != nil {
				return err
			}
			var notableWW *models.WorldWarAssessment
			if out.WorldWar != nil {
				out.WorldWarNotable, err = mon.TrackWorldWar(ctx, out.WorldWar)
				if err != nil {
					return err
				}
				if out.WorldWarNotable {
					notableWW = out.WorldWar
				}
			}
			if err := a.notify(mon, out.Change, notableWW); err != nil {
				a.log.Warn("Failed to send notification: %v", err)
			}
		}

		if opts.save {
			if err := a.save(ctx, store, assessment, out.WorldWar); err != nil {
				return err
			}
		}
	}

	return writeJSON(cmd.OutOrStdout(), out)
}

func (a *app) assessWorldWar(tables reference.Tables, req escalation.Request) (*models.WorldWarAssessment, error) {
	if req.EscalationScore == nil {
		esc := a.cfg.Escalation.EscalationScore
		req.EscalationScore = &esc
	}
	model, err := escalation.New(tables, escalation.WithLogger(a.log), escalation.WithRecorder(a.metrics))
	if err != nil {
		return nil, err
	}
	return model.Assess(req)
}

// notify sends the change when it is notable and not in cooldown, plus the world-war
// summary when one is given.
func (a *app) notify(mon *monitor.Monitor, change *models.RiskChange, ww *models.WorldWarAssessment) error {
	client, err := a.telegramClient()
	if err != nil || client == nil {
		return err
	}

	if change != nil && monitor.Notable(change) {
		pending := mon.FilterRecentlySent([]*models.RiskChange{change}, a.cfg.Monitor.NotificationCooldown)
		if len(pending) > 0 {
			if err := client.SendChanges(pending); err != nil {
				return err
			}
			mon.RecordNotified(pending)
			a.log.Info("Sent risk change notification for %s", change.CountryKey)
		}
	} else {
		a.log.Debug("No notable change to notify")
	}

	if ww != nil {
		if err := client.SendWorldWar(ww); err != nil {
			return fmt.Errorf("world war notification: %w", err)
		}
	}
	return nil
}

// save stores the results and trims history.
func (a *app) save(ctx context.Context, store *storage.Storage, assessment *models.RiskAssessment, ww *models.WorldWarAssessment) error {
	if assessment != nil {
		if err := store.SaveAssessment(ctx, assessment); err != nil {
			return err
		}
	}
	if ww != nil {
		if err := store.SaveWorldWar(ctx, ww); err != nil {
			return err
		}
	}
	a.rotate(ctx, store)
	return nil
}
