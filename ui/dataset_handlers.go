package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleUploadDataset(c *gin.Context) {
	workspaceID := c.Param("id")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	defer f.Close()

	info, err := s.datasets.Save(c.Request.Context(), workspaceID, fileHeader.Filename, f)
	if err != nil {
		s.log.Error("[API] dataset upload failed for workspace %s: %v", workspaceID, err)
		respondError(c, err)
		return
	}

	s.log.Info("[API] uploaded dataset %s (%d bytes) to workspace %s", info.Name, info.SizeByte, workspaceID)
	c.JSON(http.StatusCreated, info)
}

func (s *Server) handleListDatasets(c *gin.Context) {
	infos, err := s.datasets.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"datasets": infos, "count": len(infos)})
}

func (s *Server) handleDeleteDataset(c *gin.Context) {
	workspaceID := c.Param("id")
	name := c.Param("name")

	if err := s.datasets.Delete(c.Request.Context(), workspaceID, name); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}
