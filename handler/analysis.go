package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
	"github.com/kashvi5907-create/legalease/backend/service"
)

// AnalysisHandler serves the AI features on an already ingested document:
// deadline extraction, calendar sync, summary, risk explanation and chat.
type AnalysisHandler struct {
	workspace *service.Workspace
	llm       *service.LLMService
	deadlines *service.DeadlineExtractor

	// newEventCreator builds the calendar collaborator per request so
	// credential files are re-read after the user fixes them. Tests swap in
	// a fake.
	newEventCreator func(ctx context.Context) (service.EventCreator, error)
}

func NewAnalysisHandler(ws *service.Workspace, llm *service.LLMService, de *service.DeadlineExtractor, calCfg *config.CalendarConfig) *AnalysisHandler {
	return &AnalysisHandler{
		workspace: ws,
		llm:       llm,
		deadlines: de,
		newEventCreator: func(ctx context.Context) (service.EventCreator, error) {
			return service.NewGoogleEventCreator(ctx, calCfg)
		},
	}
}

// ExtractDeadlines runs the one-shot AI deadline extraction and attaches the
// result to the record. A second call for the same document is refused.
func (h *AnalysisHandler) ExtractDeadlines(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if doc.HasDeadlines() {
		c.JSON(http.StatusConflict, gin.H{"error": "Deadlines already extracted for this document"})
		return
	}

	ctx := logger.WithDocument(c.Request.Context(), name)

	// Extraction runs outside the store lock; the attach below re-checks.
	deadlines := h.deadlines.Extract(ctx, doc.FullText)

	if err := h.workspace.AttachDeadlines(name, deadlines); err != nil {
		switch {
		case errors.Is(err, service.ErrDeadlinesAttached):
			c.JSON(http.StatusConflict, gin.H{"error": "Deadlines already extracted for this document"})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deadlines": deadlines,
		"count":     len(deadlines),
	})
}

// SyncCalendar pushes the document's extracted deadlines to the calendar.
// Only deadlines with a resolvable YYYY-MM-DD date become events.
func (h *AnalysisHandler) SyncCalendar(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}
	if !doc.HasDeadlines() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Extract deadlines before syncing to the calendar"})
		return
	}

	ctx := logger.WithDocument(c.Request.Context(), name)

	creator, err := h.newEventCreator(ctx)
	if err != nil {
		if errors.Is(err, service.ErrMissingCredentials) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to connect to calendar: " + err.Error()})
		return
	}

	created, err := service.NewCalendarService(creator).SyncDeadlines(ctx, doc.Deadlines, name)
	if err != nil {
		logger.Error(ctx, "calendar sync failed", "created", created, "error", err)
		// Events created before the failure stay; report the honest count.
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   fmt.Sprintf("Calendar sync failed after creating %d events", created),
			"created": created,
		})
		return
	}

	logger.Info(ctx, "calendar sync completed", "created", created)
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d deadlines added to your calendar", created),
		"created": created,
	})
}

type summaryRequest struct {
	Simplify bool `json:"simplify"`
}

// Summarize returns a three-bullet AI summary of the document, optionally
// rewritten in plain English for non-lawyers.
func (h *AnalysisHandler) Summarize(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var req summaryRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := logger.WithDocument(c.Request.Context(), name)
	summary, err := h.llm.Summarize(ctx, doc.FullText, req.Simplify)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Summary generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"summary":    summary,
		"simplified": req.Simplify,
	})
}

type explainRequest struct {
	Category string `json:"category" binding:"required"`
}

// ExplainRisk asks the model why a detected category is a red flag, using
// the first snippet found for it as context.
func (h *AnalysisHandler) ExplainRisk(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	snippets, ok := doc.RedFlags[req.Category]
	if !ok || len(snippets) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not detected in this document"})
		return
	}

	ctx := logger.WithDocument(c.Request.Context(), name)
	explanation, err := h.llm.ExplainRisk(ctx, req.Category, snippets[0])
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Explanation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":    req.Category,
		"explanation": explanation,
	})
}

type chatRequest struct {
	Question string `json:"question" binding:"required"`
}

// Chat answers a free-form question about the document.
func (h *AnalysisHandler) Chat(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Question is required"})
		return
	}

	ctx := logger.WithDocument(c.Request.Context(), name)
	answer, err := h.llm.Chat(ctx, doc.FullText, req.Question)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chat failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}
