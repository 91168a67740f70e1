package compare

import (
	"fmt"

	"datalens/domain/core"
	"datalens/domain/model"
)

// History reconstructs a model's lineage from a flat collection by walking
// parent_id links backward from the target, returning records in
// root-to-target order. A missing target or a broken parent link is not an
// error: the walk returns whatever it collected. A visited set guards
// against malformed collections with parent cycles.
func History(models []model.TrainedModel, targetID string) []model.TrainedModel {
	index := make(map[string]model.TrainedModel, len(models))
	for _, m := range models {
		index[m.ID] = m
	}

	chain := []model.TrainedModel{}
	visited := map[string]bool{}

	cur, ok := index[targetID]
	for ok && !visited[cur.ID] {
		visited[cur.ID] = true
		chain = append(chain, cur)
		if cur.IsRoot() {
			break
		}
		cur, ok = index[cur.ParentID]
	}

	// Collected target-first, callers want root-first.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// VersionOverrides carries the fields a new version changes relative to its
// parent. Zero-valued fields keep the parent's value; ID is derived from the
// parent when not supplied.
type VersionOverrides struct {
	ID          string
	Name        string
	Description string
	Metrics     *model.Metrics
	Params      model.Params
}

// NewVersion derives a fresh record from a parent: every field is copied,
// overrides applied, version incremented, parent_id set, and trainedAt
// stamped with the current time.
func NewVersion(parent model.TrainedModel, ov VersionOverrides) model.TrainedModel {
	next := parent.Clone()
	next.Version = parent.Version + 1
	next.ParentID = parent.ID
	next.TrainedAt = core.Now()

	next.ID = ov.ID
	if next.ID == "" {
		next.ID = fmt.Sprintf("%s-v%d", parent.ID, next.Version)
	}
	if ov.Name != "" {
		next.Name = ov.Name
	}
	if ov.Description != "" {
		next.Description = ov.Description
	}
	if ov.Metrics != nil {
		next.Metrics = *ov.Metrics
	}
	if ov.Params != nil {
		next.Params = ov.Params
	}
	return next
}
