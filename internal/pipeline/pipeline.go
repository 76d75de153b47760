// Package pipeline orchestrates one evaluation run end to end: load the
// pick window, audit closing-line value, regrade, attribute losses, mine
// segments, fit the candidate confidence curve, run the variant
// tournament, and judge promotion through the gate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/NatLaw2/pickpulse-model/internal/attribution"
	"github.com/NatLaw2/pickpulse-model/internal/calibration"
	"github.com/NatLaw2/pickpulse-model/internal/clv"
	"github.com/NatLaw2/pickpulse-model/internal/config"
	"github.com/NatLaw2/pickpulse-model/internal/datasource"
	"github.com/NatLaw2/pickpulse-model/internal/discovery"
	"github.com/NatLaw2/pickpulse-model/internal/gate"
	"github.com/NatLaw2/pickpulse-model/internal/grading"
	"github.com/NatLaw2/pickpulse-model/internal/logger"
	"github.com/NatLaw2/pickpulse-model/internal/metrics"
	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/replay"
	"github.com/NatLaw2/pickpulse-model/internal/tournament"
)

// Pipeline runs the evaluation stages over the configured lookback window.
type Pipeline struct {
	cfg    *config.Config
	store  Store
	source datasource.HistoricalOddsSource
	log    *logrus.Logger

	auditor    *clv.Auditor
	grader     *grading.Grader
	attributor *attribution.Attributor
	miner      *discovery.Miner
	calibrator *calibration.Calibrator
	tourney    *tournament.Tournament
	evaluator  *gate.Evaluator

	now func() time.Time
}

// New wires a pipeline from its configuration. source may be nil; the run
// then relies entirely on stored quote history.
func New(cfg *config.Config, store Store, source datasource.HistoricalOddsSource, log *logrus.Logger) *Pipeline {
	if log == nil {
		log = logrus.New()
	}

	simulator := replay.NewSimulator(cfg.Evaluation.InitialRating, log)

	return &Pipeline{
		cfg:        cfg,
		store:      store,
		source:     source,
		log:        log,
		auditor:    clv.NewAuditor(log),
		grader:     grading.NewGrader(log),
		attributor: attribution.NewAttributor(cfg.Attribution, log),
		miner:      discovery.NewMiner(cfg.Discovery.MinSupport, cfg.Discovery.MinLift, log),
		calibrator: calibration.NewCalibrator(cfg.Evaluation.MinCalibrationSamples, log),
		tourney:    tournament.New(simulator, log),
		evaluator:  gate.NewEvaluator(cfg.Gate, log),
		now:        time.Now,
	}
}

// Run executes one evaluation run and writes its artifacts. The returned
// report is also written even when the run short-circuits, so a failed or
// thin window still leaves an audit trail.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	runID := uuid.New().String()
	log := logger.NewRunLogger(p.log, runID)

	report := &RunReport{
		RunID:        runID,
		Status:       StatusCompleted,
		Mode:         p.cfg.Evaluation.Mode,
		Stage:        p.cfg.Evaluation.Stage,
		StartedAt:    p.now().UTC(),
		LookbackDays: p.cfg.Evaluation.LookbackDays,
	}
	report.Cutoff = report.StartedAt.AddDate(0, 0, -p.cfg.Evaluation.LookbackDays)

	log.WithFields(logrus.Fields{
		"mode":     report.Mode,
		"stage":    report.Stage,
		"lookback": report.LookbackDays,
	}).Info("Evaluation run starting")

	err := p.run(ctx, log, report)
	report.FinishedAt = p.now().UTC()

	if err != nil {
		report.Status = StatusFailed
		report.Note = err.Error()
	}

	metrics.RecordRun(report.Status)

	if writeErr := writeArtifact(p.cfg.RunReportPath(), report); writeErr != nil {
		log.WithError(writeErr).Error("Failed to write run report")
		if err == nil {
			err = writeErr
		}
	}

	log.WithFields(logrus.Fields{
		"status":   report.Status,
		"picks":    report.PicksLoaded,
		"promoted": report.Promoted,
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
	}).Info("Evaluation run finished")

	return report, err
}

func (p *Pipeline) run(ctx context.Context, log *logrus.Entry, report *RunReport) error {
	picks, quotesByEvent, err := p.loadWindow(ctx, log, report)
	if err != nil {
		return err
	}
	if len(picks) == 0 {
		report.Status = StatusInsufficientData
		report.Note = "no locked picks in lookback window"
		return nil
	}

	picks = p.regrade(ctx, log, report, picks)

	records := p.auditCLV(log, report, picks, quotesByEvent)

	if p.stageEnabled("attribution") {
		p.timed("attribution", func() {
			breakdown := p.attributor.Run(picks, records)
			report.Attribution = &breakdown
		})
	}

	if p.stageEnabled("discovery") {
		p.timed("discovery", func() {
			report.Segments = p.miner.Mine(picks)
		})
	}

	if p.stageEnabled("calibration") {
		if err := p.calibrate(log, report, picks); err != nil {
			return err
		}
	}

	if p.stageEnabled("tournament") {
		if err := p.runTournament(log, report, picks, records); err != nil {
			return err
		}
	}

	if p.stageEnabled("gate") && report.Tournament != nil {
		p.judge(log, report)
	}

	return nil
}

// stageEnabled reports whether a stage participates in this run. The gate
// needs tournament output, so selecting the gate also runs the tournament.
func (p *Pipeline) stageEnabled(stage string) bool {
	selected := p.cfg.Evaluation.Stage
	if selected == "" || selected == stage {
		return true
	}
	return selected == "gate" && stage == "tournament"
}

func (p *Pipeline) timed(stage string, fn func()) {
	start := p.now()
	fn()
	metrics.RecordStage(stage, p.now().Sub(start).Seconds())
}

// loadWindow pulls the lookback picks plus their quote history, backfilling
// events the store has no snapshots for from the external source.
func (p *Pipeline) loadWindow(ctx context.Context, log *logrus.Entry, report *RunReport) ([]models.LockedPick, map[string][]models.OddsQuote, error) {
	picks, err := p.store.GetLockedSince(ctx, report.Cutoff)
	if err != nil {
		return nil, nil, fmt.Errorf("load picks: %w", err)
	}
	report.PicksLoaded = len(picks)
	metrics.PicksProcessedTotal.Add(float64(len(picks)))

	eventIDs := uniqueEventIDs(picks)
	quotesByEvent, err := p.store.GetQuotesByEvents(ctx, eventIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("load quotes: %w", err)
	}

	if p.source != nil {
		p.backfill(ctx, log, report, eventIDs, quotesByEvent)
	}
	report.EventsWithQuotes = len(quotesByEvent)

	log.WithFields(logrus.Fields{
		"picks":       len(picks),
		"events":      len(eventIDs),
		"with_quotes": len(quotesByEvent),
	}).Info("Loaded evaluation window")

	return picks, quotesByEvent, nil
}

func (p *Pipeline) backfill(ctx context.Context, log *logrus.Entry, report *RunReport, eventIDs []string, quotesByEvent map[string][]models.OddsQuote) {
	for _, eventID := range eventIDs {
		if len(quotesByEvent[eventID]) > 0 {
			continue
		}

		quotes, err := p.source.FetchEventQuotes(ctx, eventID)
		if err != nil {
			if errors.Is(err, datasource.ErrNotFound) {
				continue
			}
			log.WithError(err).WithField("event_id", eventID).Warn("Quote backfill failed")
			continue
		}
		if len(quotes) == 0 {
			continue
		}

		if err := p.store.InsertQuotes(ctx, quotes); err != nil {
			log.WithError(err).WithField("event_id", eventID).Warn("Failed to persist backfilled quotes")
		}
		quotesByEvent[eventID] = quotes
		report.QuotesBackfilled += len(quotes)
	}

	if report.QuotesBackfilled > 0 {
		log.WithFields(logrus.Fields{
			"rows":   report.QuotesBackfilled,
			"source": p.source.Name(),
		}).Info("Backfilled missing quote history")
	}
}

// regrade re-derives results from final scores and prefers the derived
// grade when the stored one disagrees.
func (p *Pipeline) regrade(ctx context.Context, log *logrus.Entry, report *RunReport, picks []models.LockedPick) []models.LockedPick {
	scores, err := p.store.GetScoresByEvents(ctx, uniqueEventIDs(picks))
	if err != nil {
		log.WithError(err).Warn("Score lookup failed; keeping stored grades")
		return picks
	}

	regraded, discrepancies := p.grader.Regrade(picks, scores)
	report.Regrades = discrepancies
	return regraded
}

func (p *Pipeline) auditCLV(log *logrus.Entry, report *RunReport, picks []models.LockedPick, quotesByEvent map[string][]models.OddsQuote) []models.CLVRecord {
	var records []models.CLVRecord
	p.timed("clv", func() {
		records = p.auditor.AuditAll(picks, quotesByEvent)
	})

	summary := clv.Summarize(records)
	report.CLV = &summary
	report.CLVByTier = clv.SummarizeByTier(records)
	report.CLVByBucket = clv.SummarizeByConfidence(records, nil)
	report.LeakageFlags = clv.LeakageFlags(records)

	if summary.Total > 0 {
		metrics.CLVDefinedRatio.Set(float64(summary.Defined) / float64(summary.Total))
	}
	for _, flag := range report.LeakageFlags {
		log.WithFields(logrus.Fields{
			"event_id": flag.EventID,
			"reason":   flag.Reason,
		}).Warn("Possible lock-time leakage")
	}

	return records
}

func (p *Pipeline) calibrate(log *logrus.Entry, report *RunReport, picks []models.LockedPick) error {
	samples := calibration.SamplesFromPicks(picks)
	metrics.CalibrationSamples.Set(float64(len(samples)))

	var calErr error
	p.timed("calibration", func() {
		report.Calibration, calErr = p.calibrator.Run(samples)
	})
	if calErr != nil {
		return fmt.Errorf("calibration: %w", calErr)
	}

	if report.Calibration.CandidateCurve != nil {
		if err := writeArtifact(p.cfg.CurvePath(), report.Calibration); err != nil {
			return err
		}
		log.WithField("path", p.cfg.CurvePath()).Info("Wrote candidate confidence curve")
	}
	return nil
}

func (p *Pipeline) runTournament(log *logrus.Entry, report *RunReport, picks []models.LockedPick, records []models.CLVRecord) error {
	input := replay.BuildInput(picks, records)

	start := p.now()
	result, err := p.tourney.Run(p.cfg.Tournament.Grid, p.cfg.Evaluation.Deployed, input)
	metrics.TournamentDuration.Observe(p.now().Sub(start).Seconds())
	metrics.RecordStage("tournament", p.now().Sub(start).Seconds())

	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			report.Status = StatusInsufficientData
			report.Note = "tournament input below usable size"
			log.Warn("Tournament skipped: insufficient replayable picks")
			return nil
		}
		return fmt.Errorf("tournament: %w", err)
	}

	report.Tournament = result
	if best := result.Best(); best != nil {
		metrics.ChallengerLogLoss.Set(best.LogLoss)
		metrics.ChallengerMeanCLV.Set(best.MeanCLV)
	}
	return nil
}

// judge runs the promotion gate and, in deploy mode, publishes the champion
// artifact on a pass. Shadow mode records the verdict and changes nothing.
func (p *Pipeline) judge(log *logrus.Entry, report *RunReport) {
	challenger := report.Tournament.Best()
	champion := report.Tournament.Deployed

	var verdict models.GateVerdict
	p.timed("gate", func() {
		verdict = p.evaluator.Evaluate(champion, challenger)
	})
	report.Gate = &verdict
	metrics.RecordGateVerdict(verdict.Passed)

	if err := writeArtifact(p.cfg.GateAuditPath(), verdict); err != nil {
		log.WithError(err).Error("Failed to write gate audit")
	}

	if !verdict.Passed || !p.cfg.IsDeploy() {
		return
	}

	artifact := ChampionArtifact{
		Params:     challenger.Params,
		PromotedAt: p.now().UTC(),
		RunID:      report.RunID,
		Metrics: ChampionMetrics{
			LogLoss: challenger.LogLoss,
			MeanCLV: challenger.MeanCLV,
			ROIPct:  challenger.ROIPct,
			Bets:    challenger.Bets,
		},
		Verdict: verdict,
	}
	if err := writeArtifact(p.cfg.ChampionPath(), artifact); err != nil {
		log.WithError(err).Error("Failed to write champion artifact")
		return
	}

	report.Promoted = true
	metrics.PromotionsTotal.Inc()
	log.WithFields(logrus.Fields{
		"k":        challenger.Params.LearningRate,
		"hfa":      challenger.Params.HomeAdvantage,
		"min_edge": challenger.Params.MinEdge,
	}).Info("Promoted challenger to champion")
}

func uniqueEventIDs(picks []models.LockedPick) []string {
	seen := make(map[string]struct{}, len(picks))
	ids := make([]string, 0, len(picks))
	for _, p := range picks {
		if _, ok := seen[p.EventID]; ok {
			continue
		}
		seen[p.EventID] = struct{}{}
		ids = append(ids, p.EventID)
	}
	return ids
}
