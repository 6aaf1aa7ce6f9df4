// Package http exposes the agent's read-and-trigger API: status and
// recent deals come straight from storage, manual search triggers go to
// the worker over the stream.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"travelaigent.app/agent/internal/model"
	"travelaigent.app/agent/internal/queue"
	"travelaigent.app/agent/internal/store"
)

const defaultDealsLimit = 20

// TriggerPublisher is the slice of the queue producer the handlers
// need.
type TriggerPublisher interface {
	Publish(ctx context.Context, trigger queue.Trigger) (string, error)
}

type Handler struct {
	briefs     store.BriefStore
	deals      store.DealStore
	activities store.ActivityStore
	publisher  TriggerPublisher
	now        func() time.Time
}

func NewHandler(briefs store.BriefStore, deals store.DealStore, activities store.ActivityStore, publisher TriggerPublisher) *Handler {
	return &Handler{
		briefs:     briefs,
		deals:      deals,
		activities: activities,
		publisher:  publisher,
		now:        time.Now,
	}
}

type statusResponse struct {
	ActiveBriefs int64                 `json:"active_briefs"`
	LastSearch   *model.SearchActivity `json:"last_search,omitempty"`
}

// Status reports active brief count and the latest search activity.
func (h *Handler) Status(c *gin.Context) {
	active, err := h.briefs.CountActive(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "counting active briefs failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status unavailable"})
		return
	}

	resp := statusResponse{ActiveBriefs: active}
	latest, err := h.activities.Latest(c.Request.Context())
	switch {
	case err == nil:
		resp.LastSearch = &latest
	case errors.Is(err, store.ErrNotFound):
		// no search has run yet
	default:
		slog.WarnContext(c.Request.Context(), "loading latest activity failed", "error", err)
	}

	c.JSON(http.StatusOK, resp)
}

type triggerRequest struct {
	BriefID int64 `json:"brief_id"`
}

// TriggerSearch publishes a manual search trigger for the worker and
// returns 202 with the stream message ID.
func (h *Handler) TriggerSearch(c *gin.Context) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	if req.BriefID != 0 {
		if _, err := h.briefs.GetByID(c.Request.Context(), req.BriefID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "brief not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "brief lookup failed"})
			return
		}
	}

	messageID, err := h.publisher.Publish(c.Request.Context(), queue.Trigger{
		BriefID:     req.BriefID,
		Source:      "api",
		RequestedAt: h.now(),
	})
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "trigger publish failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "trigger not accepted"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message_id": messageID})
}

// ListDeals returns the most recently created deals, newest first.
func (h *Handler) ListDeals(c *gin.Context) {
	limit := int64(defaultDealsLimit)
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || parsed < 1 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
			return
		}
		limit = parsed
	}

	deals, err := h.deals.ListRecent(c.Request.Context(), int32(limit))
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "listing deals failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deals unavailable"})
		return
	}
	if deals == nil {
		deals = []model.Deal{}
	}

	c.JSON(http.StatusOK, gin.H{"deals": deals})
}
