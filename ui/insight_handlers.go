package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// analysisRequest identifies one (workspace, dataset, decision metric)
// analysis target
type analysisRequest struct {
	WorkspaceID    string `json:"workspace_id" binding:"required"`
	DatasetID      string `json:"dataset_id" binding:"required"`
	DecisionMetric string `json:"decision_metric" binding:"required"`
}

const (
	statusOK                   = "ok"
	statusNoDefensibleInsights = "no_defensible_insights"
)

func (s *Server) handleDecisionEDA(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id, dataset_id and decision_metric are required"})
		return
	}

	summary, err := s.insights.ComputeStats(c.Request.Context(), req.WorkspaceID, req.DatasetID, req.DecisionMetric)
	if err != nil {
		s.log.Error("[API] decision-eda failed for %s/%s: %v", req.WorkspaceID, req.DatasetID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleGenerateInsights(c *gin.Context) {
	var req analysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id, dataset_id and decision_metric are required"})
		return
	}

	snap, err := s.insights.GenerateInsights(c.Request.Context(), req.WorkspaceID, req.DatasetID, req.DecisionMetric)
	if err != nil {
		s.log.Error("[API] insight generation failed for %s/%s: %v", req.WorkspaceID, req.DatasetID, err)
		respondError(c, err)
		return
	}

	// Zero surviving insights is a distinct state, not an empty success
	status := statusOK
	if len(snap.Insights) == 0 {
		status = statusNoDefensibleInsights
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "snapshot": snap})
}

func (s *Server) handleGetInsights(c *gin.Context) {
	req := analysisRequest{
		WorkspaceID:    c.Query("workspace_id"),
		DatasetID:      c.Query("dataset_id"),
		DecisionMetric: c.Query("decision_metric"),
	}
	if req.WorkspaceID == "" || req.DatasetID == "" || req.DecisionMetric == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id, dataset_id and decision_metric are required"})
		return
	}

	snap, stale, err := s.insights.LatestSnapshot(c.Request.Context(), req.WorkspaceID, req.DatasetID, req.DecisionMetric)
	if err != nil {
		respondError(c, err)
		return
	}

	status := statusOK
	if len(snap.Insights) == 0 {
		status = statusNoDefensibleInsights
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "stale": stale, "snapshot": snap})
}

func (s *Server) handleDeleteInsights(c *gin.Context) {
	req := analysisRequest{
		WorkspaceID:    c.Query("workspace_id"),
		DatasetID:      c.Query("dataset_id"),
		DecisionMetric: c.Query("decision_metric"),
	}
	if req.WorkspaceID == "" || req.DatasetID == "" || req.DecisionMetric == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workspace_id, dataset_id and decision_metric are required"})
		return
	}

	if err := s.insights.DeleteSnapshots(c.Request.Context(), req.WorkspaceID, req.DatasetID, req.DecisionMetric); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
