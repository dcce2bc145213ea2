package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"calmme-backend-go/internal/core"
	"calmme-backend-go/internal/models"
)

// MoodHandler handles mood ledger endpoints.
type MoodHandler struct {
	moodService core.MoodService
	logger      *zap.Logger
}

// NewMoodHandler creates a new MoodHandler.
func NewMoodHandler(ms core.MoodService, logger *zap.Logger) *MoodHandler {
	return &MoodHandler{moodService: ms, logger: logger}
}

// SaveMood handles POST /api/v1/moods. Saving twice on the same day
// overwrites the earlier entry.
func (h *MoodHandler) SaveMood(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.SaveMoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	action, err := h.moodService.SaveMood(c.Request.Context(), userID, req.MoodID, req.MoodLabel)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	status := http.StatusCreated
	message := "Mood recorded"
	if action == "updated" {
		status = http.StatusOK
		message = "Mood updated"
	}
	c.JSON(status, SuccessResponse{Message: message})
}

// GetHistory handles GET /api/v1/moods/history?days=30.
func (h *MoodHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be a positive integer"})
		return
	}

	entries, err := h.moodService.GetMoodHistory(c.Request.Context(), userID, days)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetWeek handles GET /api/v1/moods/week: exactly seven day slots, oldest
// first, ending today.
func (h *MoodHandler) GetWeek(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	days, err := h.moodService.GetLast7DaysMood(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, days)
}

// GetStreak handles GET /api/v1/moods/streak.
func (h *MoodHandler) GetStreak(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	streak, err := h.moodService.CalculateStreak(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"streak": streak})
}

// GetStats handles GET /api/v1/moods/stats?period=week|month|year.
func (h *MoodHandler) GetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", "week")
	if period != "week" && period != "month" && period != "year" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "period must be 'week', 'month' or 'year'"})
		return
	}

	stats, err := h.moodService.GetMoodStats(c.Request.Context(), userID, period)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
