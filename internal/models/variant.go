package models

// Parameters is one rating-model configuration evaluated by the tournament.
type Parameters struct {
	LearningRate  float64 `json:"k" mapstructure:"k"`
	HomeAdvantage float64 `json:"hfa" mapstructure:"hfa"`
	MinEdge       float64 `json:"min_edge" mapstructure:"min_edge"`
}

// Equal compares parameter tuples exactly; grid values are configured
// constants, so float equality is intentional here.
func (p Parameters) Equal(other Parameters) bool {
	return p.LearningRate == other.LearningRate &&
		p.HomeAdvantage == other.HomeAdvantage &&
		p.MinEdge == other.MinEdge
}

// VariantResult is the aggregate performance of one configuration over one
// replay of the historical pick sequence. Immutable once produced.
type VariantResult struct {
	Params Parameters `json:"params"`

	Bets   int     `json:"n_bets"`
	Wins   int     `json:"n_wins"`
	Losses int     `json:"n_losses"`
	Units  float64 `json:"units"`
	ROIPct float64 `json:"roi_pct"`

	LogLoss float64 `json:"logloss"`
	Brier   float64 `json:"brier"`

	// CLV aggregates over bets that had a defined closing snapshot;
	// undefined values are excluded, never zero-filled.
	MeanCLV        float64 `json:"mean_clv"`
	PctPositiveCLV float64 `json:"pct_positive_clv"`
	CLVSamples     int     `json:"n_clv"`

	AvgConfidence float64 `json:"avg_confidence"`
	WinRate       float64 `json:"win_rate"`
}
