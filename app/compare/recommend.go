package compare

import (
	"fmt"

	"datalens/domain/model"

	"github.com/montanaflynn/stats"
)

// recommendations builds the ordered advice list for a ranked model set.
// The first entry always names the best model; every later rule fires
// conditionally and a missing optional metric just skips its rule.
func recommendations(models []model.TrainedModel, table []TableRow) []string {
	best := table[0]
	recs := make([]string, 0, 6)

	recs = append(recs, fmt.Sprintf(
		"%s (%s) performs best overall with R² = %.4f.",
		best.Name, best.Type, best.R2))

	recs = append(recs, fitAssessment(best.R2))

	if msg, ok := rmseImprovement(models); ok {
		recs = append(recs, msg)
	}

	if msg, ok := familySignal(best.Type); ok {
		recs = append(recs, msg)
	}

	if best.MAPE != nil {
		recs = append(recs, accuracyAssessment(*best.MAPE))
	}

	if msg, ok := varianceWarning(models, best.Type); ok {
		recs = append(recs, msg)
	}

	return recs
}

// fitAssessment buckets the best model's R², first match wins
func fitAssessment(r2 float64) string {
	switch {
	case r2 > 0.9:
		return fmt.Sprintf("R² of %.4f indicates an excellent fit.", r2)
	case r2 > 0.7:
		return fmt.Sprintf("R² of %.4f indicates a good fit.", r2)
	case r2 > 0.5:
		return fmt.Sprintf("R² of %.4f indicates a moderate fit, consider feature engineering.", r2)
	default:
		return fmt.Sprintf("R² of %.4f indicates a poor fit, weak predictive power.", r2)
	}
}

// rmseImprovement fires when the spread between the worst and best RMSE in
// the whole set exceeds 10 percent of the worst.
func rmseImprovement(models []model.TrainedModel) (string, bool) {
	worst, best := models[0].Metrics.RMSE, models[0].Metrics.RMSE
	for _, m := range models[1:] {
		if m.Metrics.RMSE > worst {
			worst = m.Metrics.RMSE
		}
		if m.Metrics.RMSE < best {
			best = m.Metrics.RMSE
		}
	}
	if worst == 0 {
		return "", false
	}
	pct := (worst - best) / worst * 100
	if pct <= 10 {
		return "", false
	}
	return fmt.Sprintf(
		"The top model is a significant improvement: %.1f%% lower RMSE than the worst performer.",
		pct), true
}

// familySignal keys off the winning algorithm family only
func familySignal(t model.Type) (string, bool) {
	switch t {
	case model.TypePolynomial:
		return "Polynomial regression won: non-linear relationship detected in this data.", true
	case model.TypeRandomForest:
		return "Random forest won: the data likely contains complex/non-linear patterns.", true
	case model.TypeLinear:
		return "Linear regression won: a linear relationship is sufficient for this data.", true
	}
	return "", false
}

// accuracyAssessment buckets the best model's MAPE
func accuracyAssessment(mape float64) string {
	switch {
	case mape < 10:
		return fmt.Sprintf("MAPE of %.1f%% indicates high accuracy.", mape)
	case mape < 20:
		return fmt.Sprintf("MAPE of %.1f%% indicates good accuracy.", mape)
	default:
		return fmt.Sprintf("MAPE of %.1f%% indicates moderate accuracy, room for improvement.", mape)
	}
}

// varianceWarning fires when several models of the winning family disagree
// strongly on R², which usually means at least one of them overfit.
func varianceWarning(models []model.TrainedModel, bestType model.Type) (string, bool) {
	var r2s []float64
	for _, m := range models {
		if m.Type == bestType {
			r2s = append(r2s, m.Metrics.R2)
		}
	}
	if len(r2s) < 2 {
		return "", false
	}
	sd, err := stats.StdDevP(r2s)
	if err != nil || sd <= 0.1 {
		return "", false
	}
	return fmt.Sprintf(
		"High R² variance (%.2f) across %s models suggests overfitting: use cross-validation to verify.",
		sd, bestType), true
}
