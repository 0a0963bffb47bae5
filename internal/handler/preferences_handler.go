package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"bionews/internal/model"
)

type PreferencesStore interface {
	Upsert(ctx context.Context, p model.Preferences) error
	Get(ctx context.Context, userID string) (*model.Preferences, error)
}

type PreferencesHandler struct {
	store PreferencesStore
}

func NewPreferencesHandler(store PreferencesStore) *PreferencesHandler {
	return &PreferencesHandler{store: store}
}

// SavePreferences upserts a user's category choices. Unknown categories are
// dropped rather than rejected.
func (h *PreferencesHandler) SavePreferences(c *gin.Context) {
	var req PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid preferences request"})
		return
	}

	valid := make([]string, 0, len(req.Categories))
	for _, cat := range req.Categories {
		if model.ValidCategory(cat) {
			valid = append(valid, cat)
		}
	}

	prefs := model.Preferences{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Categories: valid,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.store.Upsert(c.Request.Context(), prefs); err != nil {
		slog.Error("error saving preferences", "error", err, "user_id", req.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, toPreferencesResponse(prefs))
}

// GetPreferences returns the stored choices, or all categories for an
// unknown user.
func (h *PreferencesHandler) GetPreferences(c *gin.Context) {
	userID := c.Param("user_id")

	prefs, err := h.store.Get(c.Request.Context(), userID)
	if err != nil {
		slog.Error("error fetching preferences", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if prefs == nil {
		c.JSON(http.StatusOK, toPreferencesResponse(model.Preferences{
			UserID:     userID,
			Categories: model.Categories,
		}))
		return
	}

	c.JSON(http.StatusOK, toPreferencesResponse(*prefs))
}

func toPreferencesResponse(p model.Preferences) PreferencesResponse {
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	res := PreferencesResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Categories: categories,
	}
	if !p.CreatedAt.IsZero() {
		res.CreatedAt = p.CreatedAt.Format(time.RFC3339)
	}
	return res
}
