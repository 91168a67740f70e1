package compare

import (
	"fmt"
	"math"

	"datalens/domain/model"
)

// Ref identifies one side of a pairwise comparison
type Ref struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Type model.Type `json:"type"`
}

// Duel holds both raw values for one metric and the id that won it
type Duel struct {
	Model1 float64 `json:"model1"`
	Model2 float64 `json:"model2"`
	Winner string  `json:"winner"`
}

// DuelTable groups the three metric duels
type DuelTable struct {
	RMSE Duel `json:"rmse"`
	MAE  Duel `json:"mae"`
	R2   Duel `json:"r2"`
}

// PairwiseResult is the outcome of a two-model comparison. Improvement holds
// the per-metric improvement percentages keyed by metric name.
type PairwiseResult struct {
	Model1        Ref                `json:"model1"`
	Model2        Ref                `json:"model2"`
	Metrics       DuelTable          `json:"metrics"`
	Improvement   map[string]float64 `json:"improvement_percentage"`
	OverallWinner string             `json:"overall_winner"`
	Summary       string             `json:"summary"`
}

// Pairwise compares exactly two models metric by metric. Three binary votes
// between two candidates cannot split evenly, so an overall winner always
// exists. An exact tie on a single metric goes to the first model.
func Pairwise(m1, m2 model.TrainedModel) *PairwiseResult {
	rmse, rmsePct := duel(m1.ID, m2.ID, m1.Metrics.RMSE, m2.Metrics.RMSE, false)
	mae, maePct := duel(m1.ID, m2.ID, m1.Metrics.MAE, m2.Metrics.MAE, false)
	r2, r2Pct := duel(m1.ID, m2.ID, m1.Metrics.R2, m2.Metrics.R2, true)

	wins := map[string]int{}
	for _, d := range []Duel{rmse, mae, r2} {
		wins[d.Winner]++
	}
	winner := m1
	if wins[m2.ID] > wins[m1.ID] {
		winner = m2
	}

	meanPct := (rmsePct + maePct + r2Pct) / 3.0
	summary := fmt.Sprintf("%s (%s) wins %d of 3 metrics with an average improvement of %.1f%%.",
		winner.Name, winner.Type, wins[winner.ID], meanPct)

	return &PairwiseResult{
		Model1:        Ref{ID: m1.ID, Name: m1.Name, Type: m1.Type},
		Model2:        Ref{ID: m2.ID, Name: m2.Name, Type: m2.Type},
		Metrics:       DuelTable{RMSE: rmse, MAE: mae, R2: r2},
		Improvement:   map[string]float64{"rmse": rmsePct, "mae": maePct, "r2": r2Pct},
		OverallWinner: winner.ID,
		Summary:       summary,
	}
}

// duel decides a single metric and returns the improvement percentage
// alongside it. For r2 the denominator uses absolute values so a negative R²
// cannot flip the sign of the percentage.
func duel(id1, id2 string, v1, v2 float64, higherWins bool) (Duel, float64) {
	winner := id1
	if higherWins {
		if v2 > v1 {
			winner = id2
		}
	} else {
		if v2 < v1 {
			winner = id2
		}
	}

	denom := math.Max(v1, v2)
	if higherWins {
		denom = math.Max(math.Abs(v1), math.Abs(v2))
	}
	pct := 0.0
	if denom != 0 {
		pct = math.Abs(v1-v2) / denom * 100
	}

	return Duel{Model1: v1, Model2: v2, Winner: winner}, pct
}
