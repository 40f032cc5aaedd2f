package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"socialmesh/backend/internal/connections"
	"socialmesh/backend/internal/typechange"
	"socialmesh/backend/pkg/errors"
	"socialmesh/backend/pkg/logger"
)

// registerRoutes mounts the connection-graph operation surface on the router
func registerRoutes(router *gin.Engine, connSvc *connections.Service, wf *typechange.Workflow) {
	log := logger.Get()
	api := router.Group("/api")
	{
		// Send a connection request
		api.POST("/connections/requests", func(c *gin.Context) {
			var req struct {
				FromUserID string `json:"from_user_id" binding:"required"`
				ToUserID   string `json:"to_user_id" binding:"required"`
				Type       string `json:"type" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			requestID, err := connSvc.SendRequest(c.Request.Context(), req.FromUserID, req.ToUserID, req.Type)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"request_id": requestID})
		})

		// List pending connection requests addressed to a user
		api.GET("/connections/requests/:userId", func(c *gin.Context) {
			pending := connSvc.ListPendingRequests(c.Request.Context(), c.Param("userId"))
			c.JSON(http.StatusOK, gin.H{"requests": pending})
		})

		// Accept or reject a connection request
		api.POST("/connections/requests/:id/respond", func(c *gin.Context) {
			var req struct {
				UserID       string `json:"user_id" binding:"required"`
				Action       string `json:"action" binding:"required"`
				OverrideType string `json:"override_type"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			if err := connSvc.RespondToRequest(c.Request.Context(), c.Param("id"), req.UserID, req.Action, req.OverrideType); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": req.Action + "ed"})
		})

		// Propose a type change for an existing connection. Registered before
		// the :userId connection listing so the literal path wins.
		api.POST("/connections/type-changes", func(c *gin.Context) {
			var req struct {
				FromUserID      string `json:"from_user_id" binding:"required"`
				ToUserID        string `json:"to_user_id" binding:"required"`
				ProposedType    string `json:"proposed_type" binding:"required"`
				ProposedSubType string `json:"proposed_sub_type"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			requestID, err := wf.Propose(c.Request.Context(), req.FromUserID, req.ToUserID, req.ProposedType, req.ProposedSubType)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusCreated, gin.H{"request_id": requestID})
		})

		// List type changes awaiting a user's decision
		api.GET("/connections/type-changes/pending/:userId", func(c *gin.Context) {
			pending := wf.ListPending(c.Request.Context(), c.Param("userId"))
			c.JSON(http.StatusOK, gin.H{"requests": pending})
		})

		// Full type-change history for a user
		api.GET("/connections/type-changes/:userId", func(c *gin.Context) {
			history := wf.ListAll(c.Request.Context(), c.Param("userId"))
			c.JSON(http.StatusOK, gin.H{"requests": history})
		})

		// Approve or reject a type change
		api.POST("/connections/type-changes/:id/respond", func(c *gin.Context) {
			var req struct {
				UserID string `json:"user_id" binding:"required"`
				Action string `json:"action" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}

			resolved, err := wf.Respond(c.Request.Context(), c.Param("id"), req.UserID, req.Action)
			if err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, resolved)
		})

		// List a user's connections
		api.GET("/connections/:userId", func(c *gin.Context) {
			views := connSvc.ListConnections(c.Request.Context(), c.Param("userId"))
			c.JSON(http.StatusOK, gin.H{"connections": views})
		})

		// Remove a connection
		api.DELETE("/connections/:userId/:targetId", func(c *gin.Context) {
			if err := connSvc.RemoveConnection(c.Request.Context(), c.Param("userId"), c.Param("targetId")); err != nil {
				respondError(c, log, err)
				return
			}
			c.JSON(http.StatusOK, gin.H{"status": "removed"})
		})
	}
}

// respondError maps a domain error to an HTTP status and body
func respondError(c *gin.Context, log *zap.Logger, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("Operation failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// errorStatus maps the domain error taxonomy onto HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsUnauthorized(err):
		return http.StatusForbidden
	case errors.IsNotFound(err), errors.IsNotConnected(err):
		return http.StatusNotFound
	case errors.IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
