package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"datalens/app/datasets"
)

var uploadExtensions = []string{".csv", ".xlsx"}

func (s *Server) handleUploadDataset(c *gin.Context) {
	file, header, err := c.Request.FormFile("dataset")
	if err != nil {
		s.logger.Warn("Upload rejected, no file in form: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded; use multipart field 'dataset'"})
		return
	}
	defer file.Close()

	if header.Size > s.maxUploadBytes {
		s.logger.Warn("Upload rejected, %d bytes exceeds limit", header.Size)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file size (%.1f MB) exceeds the %d MB limit",
				float64(header.Size)/(1024*1024), s.maxUploadBytes/(1024*1024)),
		})
		return
	}

	name := strings.ToLower(header.Filename)
	allowed := false
	for _, ext := range uploadExtensions {
		if strings.HasSuffix(name, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only CSV (.csv) and Excel (.xlsx) files are allowed"})
		return
	}

	ds, err := s.datasets.Upload(c.Request.Context(), datasets.UploadRequest{
		Filename: header.Filename,
		File:     file,
	})
	if err != nil {
		s.logger.Error("Upload of %s failed: %v", header.Filename, err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ds)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	list, err := s.datasets.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": list, "count": len(list)})
}

func (s *Server) handleGetDataset(c *gin.Context) {
	ds, err := s.datasets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ds)
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if err := s.datasets.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (s *Server) handlePreviewDataset(c *gin.Context) {
	rows := queryInt(c, "rows", 10)
	preview, err := s.datasets.Preview(c.Request.Context(), c.Param("id"), rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}
