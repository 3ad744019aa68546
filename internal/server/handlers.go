package server

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"hopqa/internal/multihop"
)

type askRequest struct {
	Question string `json:"question"`
	MaxHops  int    `json:"max_hops"`
}

type askResponse struct {
	multihop.RunResult
	ProcessingTime float64 `json:"processing_time"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question cannot be empty"})
		return
	}

	start := time.Now()
	result, err := s.runner.Run(c.Request.Context(), req.Question, req.MaxHops)
	if err != nil {
		s.logger.Error("ask failed: %v", err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, askResponse{
		RunResult:      *result,
		ProcessingTime: math.Round(time.Since(start).Seconds()*100) / 100,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "API is running",
	})
}
