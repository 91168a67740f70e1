package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"datalens/domain/core"
)

// Params is the algorithm-specific parameter payload of a TrainedModel.
// The comparison engine never inspects it; only the training service and the
// prediction path look inside. The concrete variant is keyed by the owning
// record's Type tag.
type Params interface {
	Kind() Type
}

// LinearParams holds an ordinary least-squares fit.
type LinearParams struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (LinearParams) Kind() Type { return TypeLinear }

// PolynomialParams holds a least-squares fit over per-feature power
// expansions (x, x^2, ... x^degree for each feature, no interaction terms).
// Coefficients are laid out feature-major: all powers of feature 0 first.
type PolynomialParams struct {
	Degree       int       `json:"degree"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (PolynomialParams) Kind() Type { return TypePolynomial }

// TreeNode is one node of a fitted decision tree. Internal nodes carry a
// split (feature index + threshold, left = <=, right = >); leaves carry the
// prediction: a mean value for regression, a class label for classification.
type TreeNode struct {
	IsLeaf       bool      `json:"is_leaf"`
	FeatureIndex int       `json:"feature_index,omitempty"`
	Threshold    float64   `json:"threshold,omitempty"`
	Value        float64   `json:"value,omitempty"`
	Class        string    `json:"class,omitempty"`
	Samples      int       `json:"samples"`
	Left         *TreeNode `json:"left,omitempty"`
	Right        *TreeNode `json:"right,omitempty"`
}

// ForestParams holds a fitted random forest regressor.
type ForestParams struct {
	NumTrees       int         `json:"num_trees"`
	MaxDepth       int         `json:"max_depth"`
	MinSamplesLeaf int         `json:"min_samples_leaf"`
	MaxFeatures    int         `json:"max_features"`
	Seed           int64       `json:"seed"`
	Trees          []*TreeNode `json:"trees"`
}

func (ForestParams) Kind() Type { return TypeRandomForest }

// ForestClassifierParams holds a fitted random forest classifier.
type ForestClassifierParams struct {
	NumTrees       int         `json:"num_trees"`
	MaxDepth       int         `json:"max_depth"`
	MinSamplesLeaf int         `json:"min_samples_leaf"`
	MaxFeatures    int         `json:"max_features"`
	Seed           int64       `json:"seed"`
	Classes        []string    `json:"classes"`
	Trees          []*TreeNode `json:"trees"`
}

func (ForestClassifierParams) Kind() Type { return TypeForestClassifier }

// LogisticParams holds a binary logistic regression fit. Class at index 0 is
// encoded as 0, index 1 as 1.
type LogisticParams struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Classes []string  `json:"classes"`
}

func (LogisticParams) Kind() Type { return TypeLogistic }

// DecodeParams resolves a raw "model" payload into the variant selected by
// the type tag. A null or absent payload yields nil params, which is legal:
// comparison inputs built by hand (tests, imported records) may omit it.
func DecodeParams(t Type, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch t {
	case TypeLinear:
		var p LinearParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode linear params: %w", err)
		}
		return p, nil
	case TypePolynomial:
		var p PolynomialParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode polynomial params: %w", err)
		}
		return p, nil
	case TypeRandomForest:
		var p ForestParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode random forest params: %w", err)
		}
		return p, nil
	case TypeForestClassifier:
		var p ForestClassifierParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode forest classifier params: %w", err)
		}
		return p, nil
	case TypeLogistic:
		var p LogisticParams
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode logistic params: %w", err)
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownModelType, t)
	}
}
