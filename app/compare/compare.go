// Package compare implements the model comparison core: rank aggregation
// across trained models, qualitative recommendations, pairwise duels, and
// the version lineage operations. Every function here is pure; callers hand
// in an immutable snapshot of model records and get a fresh result back.
package compare

import (
	"math"
	"sort"

	"datalens/domain/core"
	"datalens/domain/model"
)

// TableRow is one model's row in the ranked comparison table
type TableRow struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        model.Type `json:"type"`
	RMSE        float64    `json:"rmse"`
	MAE         float64    `json:"mae"`
	R2          float64    `json:"r2"`
	MAPE        *float64   `json:"mape,omitempty"`
	RankRMSE    int        `json:"rank_rmse"`
	RankMAE     int        `json:"rank_mae"`
	RankR2      int        `json:"rank_r2"`
	RankOverall int        `json:"rank_overall"`
}

// Result is the full output of a multi-model comparison
type Result struct {
	Table           []TableRow `json:"comparison_table"`
	BestOverall     string     `json:"best_overall"`
	ByRMSE          []string   `json:"by_rmse"`
	ByMAE           []string   `json:"by_mae"`
	ByR2            []string   `json:"by_r2"`
	ByMAPE          []string   `json:"by_mape"`
	Recommendations []string   `json:"recommendations"`
}

// Models ranks a set of trained models against each other. Each of rmse, mae
// and r2 yields a per-metric ordering; a model's overall rank is the rounded
// mean of its three per-metric ranks (halves round away from zero). The table
// is sorted by overall rank with ties keeping input order. A single model
// produces a degenerate result with every rank 1.
func Models(models []model.TrainedModel) (*Result, error) {
	if len(models) == 0 {
		return nil, core.ErrNoModels
	}

	byRMSE := orderIDs(models, func(m model.TrainedModel) float64 { return m.Metrics.RMSE }, true)
	byMAE := orderIDs(models, func(m model.TrainedModel) float64 { return m.Metrics.MAE }, true)
	byR2 := orderIDs(models, func(m model.TrainedModel) float64 { return m.Metrics.R2 }, false)

	rankRMSE := positions(byRMSE)
	rankMAE := positions(byMAE)
	rankR2 := positions(byR2)

	table := make([]TableRow, 0, len(models))
	for _, m := range models {
		row := TableRow{
			ID:       m.ID,
			Name:     m.Name,
			Type:     m.Type,
			RMSE:     m.Metrics.RMSE,
			MAE:      m.Metrics.MAE,
			R2:       m.Metrics.R2,
			MAPE:     m.Metrics.MAPE,
			RankRMSE: rankRMSE[m.ID],
			RankMAE:  rankMAE[m.ID],
			RankR2:   rankR2[m.ID],
		}
		mean := float64(row.RankRMSE+row.RankMAE+row.RankR2) / 3.0
		row.RankOverall = int(math.Round(mean))
		table = append(table, row)
	}

	// Stable sort keeps input-relative order for models that round to the
	// same overall rank.
	sort.SliceStable(table, func(i, j int) bool {
		return table[i].RankOverall < table[j].RankOverall
	})

	result := &Result{
		Table:       table,
		BestOverall: table[0].ID,
		ByRMSE:      byRMSE,
		ByMAE:       byMAE,
		ByR2:        byR2,
		ByMAPE:      orderByMAPE(models),
	}
	result.Recommendations = recommendations(models, table)
	return result, nil
}

// orderIDs returns model ids ordered by the given metric, ascending when
// asc is true. Exact ties keep input order.
func orderIDs(models []model.TrainedModel, metric func(model.TrainedModel) float64, asc bool) []string {
	idx := make([]int, len(models))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := metric(models[idx[a]]), metric(models[idx[b]])
		if asc {
			return va < vb
		}
		return va > vb
	})
	ids := make([]string, len(idx))
	for i, j := range idx {
		ids[i] = models[j].ID
	}
	return ids
}

// orderByMAPE ranks only the models that have a defined mape, lower first
func orderByMAPE(models []model.TrainedModel) []string {
	withMAPE := make([]model.TrainedModel, 0, len(models))
	for _, m := range models {
		if m.Metrics.HasMAPE() {
			withMAPE = append(withMAPE, m)
		}
	}
	return orderIDs(withMAPE, func(m model.TrainedModel) float64 { return *m.Metrics.MAPE }, true)
}

// positions maps each id in an ordering to its 1-based rank
func positions(order []string) map[string]int {
	ranks := make(map[string]int, len(order))
	for i, id := range order {
		ranks[id] = i + 1
	}
	return ranks
}
