package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"trendradar/internal/digest"
	"trendradar/internal/model"
	"trendradar/pkg/snapshot"

	"github.com/gin-gonic/gin"
)

type TopicSource interface {
	Load(ctx context.Context, date time.Time) (*model.Extraction, error)
}

type TopicHandler struct {
	topics   TopicSource
	location *time.Location
	now      func() time.Time
}

func NewTopicHandler(topics TopicSource, loc *time.Location) *TopicHandler {
	return &TopicHandler{topics: topics, location: loc, now: time.Now}
}

func (h *TopicHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
	})
}

// GetTopics returns the extracted topic list for ?date=YYYY-MM-DD (default today).
func (h *TopicHandler) GetTopics(c *gin.Context) {
	date, ok := h.queryDate(c)
	if !ok {
		return
	}

	extraction, ok := h.load(c, date)
	if !ok {
		return
	}

	limit := getQueryInt("limit", 0, c)
	topics := extraction.Topics
	if limit > 0 && limit < len(topics) {
		topics = topics[:limit]
	}

	res := TopicsResponse{
		Date:   date.Format(time.DateOnly),
		Mode:   string(extraction.Mode),
		Table:  extraction.Table,
		Total:  len(extraction.Topics),
		Limit:  limit,
		Topics: make([]TopicResponse, len(topics)),
	}
	for i, t := range topics {
		res.Topics[i] = TopicResponse{
			Rank:   i + 1,
			Title:  t.Title,
			Source: t.Source,
			URL:    t.URL,
			Heat:   t.Heat,
		}
	}

	c.JSON(http.StatusOK, res)
}

// GetAppendix renders the topic appendix exactly as it appears in the email.
func (h *TopicHandler) GetAppendix(c *gin.Context) {
	date, ok := h.queryDate(c)
	if !ok {
		return
	}

	extraction, ok := h.load(c, date)
	if !ok {
		return
	}

	html, err := digest.RenderAppendix(extraction)
	if err != nil {
		slog.Error("error rendering appendix", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Render error"})
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (h *TopicHandler) queryDate(c *gin.Context) (time.Time, bool) {
	param := c.Query("date")
	if param == "" {
		return h.now().In(h.location), true
	}

	date, err := time.ParseInLocation(time.DateOnly, param, h.location)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func (h *TopicHandler) load(c *gin.Context, date time.Time) (*model.Extraction, bool) {
	extraction, err := h.topics.Load(c.Request.Context(), date)
	if errors.Is(err, snapshot.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Snapshot not found"})
		return nil, false
	}
	if err != nil {
		slog.Error("error loading topics", "date", date.Format(time.DateOnly), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Storage error"})
		return nil, false
	}
	return extraction, true
}

func getQueryInt(name string, defaultValue int, c *gin.Context) int {
	paramLimit := c.Query(name)

	if paramLimit == "" {
		return defaultValue
	}

	parsedValue, err := strconv.Atoi(paramLimit)
	if err != nil {
		slog.Warn("invalid query parameter, using default", "param", name, "value", paramLimit, "error", err)
		return defaultValue
	}

	return parsedValue
}
