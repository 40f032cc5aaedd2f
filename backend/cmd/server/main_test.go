package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"socialmesh/backend/pkg/errors"
)

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "graph_healthy": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ok", response["status"])
}

func TestSendRequestEndpoint_InvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.POST("/api/connections/requests", func(c *gin.Context) {
		var req struct {
			FromUserID string `json:"from_user_id" binding:"required"`
			ToUserID   string `json:"to_user_id" binding:"required"`
			Type       string `json:"type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"request_id": "id"})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/connections/requests", bytes.NewBuffer([]byte(`{"from_user_id":"alice"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", errors.NewValidation("type", "required"), http.StatusBadRequest},
		{"unauthorized", errors.NewUnauthorized("req-1", "mallory"), http.StatusForbidden},
		{"not found", errors.NewNotFound("connection request", "req-1"), http.StatusNotFound},
		{"not connected", errors.NewNotConnected("alice", "bob"), http.StatusNotFound},
		{"already connected", errors.NewAlreadyConnected("alice", "bob"), http.StatusConflict},
		{"request pending", errors.NewRequestAlreadyPending("alice", "bob"), http.StatusConflict},
		{"type change pending", errors.NewTypeChangePending("alice", "bob"), http.StatusConflict},
		{"already processed", errors.NewAlreadyProcessed("req-1", "approved"), http.StatusConflict},
		{"backend failure", errors.NewBackendUnavailable("graph", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, errorStatus(tc.err), tc.name)
	}
}
