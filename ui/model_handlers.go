package ui

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/app/compare"
	"datalens/app/training"
	"datalens/domain/core"
	"datalens/domain/model"
)

func (s *Server) handleTrainModel(c *gin.Context) {
	var req training.TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trained, err := s.training.Train(c.Request.Context(), req)
	if err != nil {
		s.logger.Error("Training on dataset %s failed: %v", req.DatasetID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trained)
}

func (s *Server) handleListModels(c *gin.Context) {
	var (
		list []*model.TrainedModel
		err  error
	)
	if datasetID := c.Query("datasetId"); datasetID != "" {
		list, err = s.models.ListByDataset(c.Request.Context(), datasetID)
	} else {
		list, err = s.models.List(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"models": list, "count": len(list)})
}

func (s *Server) handleGetModel(c *gin.Context) {
	m, err := s.models.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleDeleteModel(c *gin.Context) {
	id := c.Param("id")
	if err := s.models.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

type predictRequest struct {
	Rows [][]float64 `json:"rows" binding:"required"`
}

// handlePredict scores positional rows. Each row lists values in the
// model's feature order.
func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := c.Param("id")
	m, err := s.models.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]*training.PredictResult, 0, len(req.Rows))
	for i, row := range req.Rows {
		if len(row) != len(m.FeatureNames) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("row %d has %d values, model %s expects %d features",
					i, len(row), id, len(m.FeatureNames)),
			})
			return
		}
		input := make(map[string]float64, len(row))
		for j, name := range m.FeatureNames {
			input[name] = row[j]
		}

		res, err := s.training.Predict(c.Request.Context(), id, input)
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, res)
	}

	c.JSON(http.StatusOK, gin.H{"model_id": id, "predictions": results, "count": len(results)})
}

type compareRequest struct {
	ModelIDs []string `json:"model_ids" binding:"required"`
}

func (s *Server) handleCompareModels(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := s.models.GetByIDs(c.Request.Context(), req.ModelIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := compare.Models(deref(stored))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleComparePair(c *gin.Context) {
	stored, err := s.models.GetByIDs(c.Request.Context(), []string{c.Param("id"), c.Param("other")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, compare.Pairwise(*stored[0], *stored[1]))
}

// handleModelHistory walks the parent chain. Unknown ids and broken links
// yield a shorter list, never an error.
func (s *Server) handleModelHistory(c *gin.Context) {
	all, err := s.models.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	history := compare.History(deref(all), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"model_id": c.Param("id"), "history": history, "count": len(history)})
}

type versionRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Metrics     *model.Metrics  `json:"metrics"`
	Model       json.RawMessage `json:"model"`
}

func (s *Server) handleCreateVersion(c *gin.Context) {
	var req versionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parent, err := s.models.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	params, err := model.DecodeParams(parent.Type, req.Model)
	if err != nil {
		respondError(c, core.NewValidationError("model", err.Error()))
		return
	}

	next := compare.NewVersion(*parent, compare.VersionOverrides{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Metrics:     req.Metrics,
		Params:      params,
	})
	if err := s.models.Create(c.Request.Context(), &next); err != nil {
		respondError(c, err)
		return
	}

	s.logger.Info("Created version %d of model %s as %s", next.Version, parent.ID, next.ID)
	c.JSON(http.StatusCreated, next)
}

func deref(models []*model.TrainedModel) []model.TrainedModel {
	out := make([]model.TrainedModel, len(models))
	for i, m := range models {
		out[i] = *m
	}
	return out
}
