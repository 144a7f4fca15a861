package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createWorkspaceRequest struct {
	Name string `json:"name" binding:"required"`
}

func (s *Server) handleCreateWorkspace(c *gin.Context) {
	var req createWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ws, err := s.workspaces.Create(c.Request.Context(), req.Name)
	if err != nil {
		s.log.Error("[API] failed to create workspace: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ws)
}

func (s *Server) handleListWorkspaces(c *gin.Context) {
	list, err := s.workspaces.List(c.Request.Context())
	if err != nil {
		s.log.Error("[API] failed to list workspaces: %v", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workspaces": list, "count": len(list)})
}

func (s *Server) handleGetWorkspace(c *gin.Context) {
	ws, err := s.workspaces.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ws)
}

func (s *Server) handleDeleteWorkspace(c *gin.Context) {
	if err := s.workspaces.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
