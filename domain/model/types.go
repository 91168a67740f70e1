package model

import (
	"encoding/json"
	"fmt"

	"datalens/domain/core"
)

// Type identifies the training algorithm behind a model record.
type Type string

const (
	TypeLinear           Type = "linear"
	TypePolynomial       Type = "polynomial"
	TypeRandomForest     Type = "random_forest"
	TypeLogistic         Type = "logistic_regression"
	TypeForestClassifier Type = "random_forest_classifier"
)

// Valid reports whether t is one of the supported algorithm tags.
func (t Type) Valid() bool {
	switch t {
	case TypeLinear, TypePolynomial, TypeRandomForest, TypeLogistic, TypeForestClassifier:
		return true
	}
	return false
}

// IsClassifier reports whether t predicts class labels rather than values.
func (t Type) IsClassifier() bool {
	return t == TypeLogistic || t == TypeForestClassifier
}

// Label returns the human-readable algorithm name used for default model names.
func (t Type) Label() string {
	switch t {
	case TypeLinear:
		return "Linear Regression"
	case TypePolynomial:
		return "Polynomial Regression"
	case TypeRandomForest:
		return "Random Forest"
	case TypeLogistic:
		return "Logistic Regression"
	case TypeForestClassifier:
		return "Random Forest Classifier"
	}
	return string(t)
}

// String returns the wire representation.
func (t Type) String() string { return string(t) }

// Metrics is the fixed record of regression quality metrics attached to every
// trained model. MAPE is undefined (nil) when any actual target value in the
// evaluation set is zero.
type Metrics struct {
	RMSE float64  `json:"rmse"`
	MSE  float64  `json:"mse"`
	MAE  float64  `json:"mae"`
	R2   float64  `json:"r2"`
	MAPE *float64 `json:"mape,omitempty"`
}

// HasMAPE reports whether the optional MAPE metric is defined.
func (m Metrics) HasMAPE() bool { return m.MAPE != nil }

// TrainedModel is the result of a single training run. Records are immutable
// once produced; a new version is a new record, never a mutation.
//
// Field names are the wire contract consumed by the web client and must not
// change: note the mixed camelCase (featureNames, targetName, trainedAt,
// datasetId) and snake_case (parent_id) carried over from the stored files.
type TrainedModel struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Type         Type           `json:"type"`
	Metrics      Metrics        `json:"metrics"`
	Params       Params         `json:"model"`
	FeatureNames []string       `json:"featureNames"`
	TargetName   string         `json:"targetName"`
	TrainedAt    core.Timestamp `json:"trainedAt"`
	DatasetID    string         `json:"datasetId"`
	Version      int            `json:"version"`
	ParentID     string         `json:"parent_id,omitempty"`
	Description  string         `json:"description,omitempty"`
}

// IsRoot reports whether the model starts a version chain.
func (m TrainedModel) IsRoot() bool { return m.ParentID == "" }

// Clone returns a copy safe to modify without touching the receiver.
// Params are shared: records are read-only by contract.
func (m TrainedModel) Clone() TrainedModel {
	out := m
	out.FeatureNames = append([]string(nil), m.FeatureNames...)
	return out
}

// UnmarshalJSON decodes the record and resolves the "model" payload into the
// parameter variant selected by the sibling "type" tag.
func (m *TrainedModel) UnmarshalJSON(data []byte) error {
	type alias TrainedModel
	aux := struct {
		*alias
		RawParams json.RawMessage `json:"model"`
	}{alias: (*alias)(m)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	params, err := DecodeParams(m.Type, aux.RawParams)
	if err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	m.Params = params
	return nil
}
