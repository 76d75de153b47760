package pipeline

import (
	"time"

	"github.com/NatLaw2/pickpulse-model/internal/attribution"
	"github.com/NatLaw2/pickpulse-model/internal/calibration"
	"github.com/NatLaw2/pickpulse-model/internal/clv"
	"github.com/NatLaw2/pickpulse-model/internal/discovery"
	"github.com/NatLaw2/pickpulse-model/internal/grading"
	"github.com/NatLaw2/pickpulse-model/internal/models"
	"github.com/NatLaw2/pickpulse-model/internal/tournament"
)

// Run statuses recorded in the report and in metrics.
const (
	StatusCompleted        = "completed"
	StatusInsufficientData = "insufficient_data"
	StatusFailed           = "failed"
)

// RunReport is the full audit record of one evaluation run. It is written
// as a JSON artifact at the end of every run, including short-circuited
// ones, so the history of what the pipeline saw survives.
type RunReport struct {
	RunID      string    `json:"run_id"`
	Status     string    `json:"status"`
	Mode       string    `json:"mode"`
	Stage      string    `json:"stage,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	LookbackDays int       `json:"lookback_days"`
	Cutoff       time.Time `json:"cutoff"`

	PicksLoaded      int `json:"picks_loaded"`
	EventsWithQuotes int `json:"events_with_quotes"`
	QuotesBackfilled int `json:"quotes_backfilled"`

	Regrades []grading.Discrepancy `json:"regrade_discrepancies,omitempty"`

	CLV          *clv.Summary               `json:"clv,omitempty"`
	CLVByTier    map[string]clv.Summary     `json:"clv_by_tier,omitempty"`
	CLVByBucket  []clv.ConfidenceBucket     `json:"clv_by_confidence,omitempty"`
	LeakageFlags []clv.LeakageFlag          `json:"leakage_flags,omitempty"`
	Attribution  *attribution.LossBreakdown `json:"attribution,omitempty"`
	Segments     []discovery.Segment        `json:"segments,omitempty"`
	Calibration  *calibration.Report        `json:"calibration,omitempty"`
	Tournament   *tournament.Result         `json:"tournament,omitempty"`
	Gate         *models.GateVerdict        `json:"gate,omitempty"`

	Promoted bool   `json:"promoted"`
	Note     string `json:"note,omitempty"`
}

// ChampionMetrics is the promoted variant's replay performance, carried on
// the artifact so the serving layer reads it without unpacking the verdict.
type ChampionMetrics struct {
	LogLoss float64 `json:"logloss"`
	MeanCLV float64 `json:"mean_clv"`
	ROIPct  float64 `json:"roi_pct"`
	Bets    int     `json:"n_bets"`
}

// ChampionArtifact is written when a deploy-mode run passes the gate. The
// serving layer reads it to switch parameter tuples.
type ChampionArtifact struct {
	Params     models.Parameters  `json:"params"`
	PromotedAt time.Time          `json:"promoted_at"`
	RunID      string             `json:"run_id"`
	Metrics    ChampionMetrics    `json:"metrics"`
	Verdict    models.GateVerdict `json:"verdict"`
}
