package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/app/analysis"
)

func (s *Server) handleEDA(c *gin.Context) {
	edaType, err := analysis.ParseEDAType(c.Query("type"))
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := s.analysis.EDA(c.Request.Context(), c.Param("id"), edaType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleColumnInfo(c *gin.Context) {
	name := c.Param("name")
	detail, err := s.analysis.Column(c.Request.Context(), c.Param("id"), name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		Name string `json:"name"`
		analysis.ColumnDetail
	}{name, *detail})
}

func (s *Server) handleForecast(c *gin.Context) {
	target := c.Query("target")
	if target == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'target' is required"})
		return
	}
	periods := queryInt(c, "periods", 0)
	method := analysis.ForecastMethod(c.Query("method"))

	result, err := s.analysis.Forecast(c.Request.Context(), c.Param("id"), target, periods, method)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
