package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kashvi5907-create/legalease/backend/model"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
	"github.com/kashvi5907-create/legalease/backend/service"
)

// Upload result statuses reported per file.
const (
	StatusProcessed        = "processed"
	StatusAlreadyProcessed = "already_processed"
	StatusDeleted          = "deleted"
	StatusInProgress       = "in_progress"
	StatusWorkspaceFull    = "workspace_full"
	StatusInvalid          = "invalid"
)

type DocumentHandler struct {
	workspace *service.Workspace
	extractor *service.Extractor
	archive   *service.ArchiveService // nil when archiving is disabled
	keywords  []string
}

func NewDocumentHandler(ws *service.Workspace, extractor *service.Extractor, archive *service.ArchiveService, keywords []string) *DocumentHandler {
	return &DocumentHandler{
		workspace: ws,
		extractor: extractor,
		archive:   archive,
		keywords:  keywords,
	}
}

// UploadResult is the per-file outcome of a batch upload.
type UploadResult struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	RiskScore int    `json:"risk_score,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Upload ingests one or more PDF files from a multipart form. Each file is
// reported individually; a batch never fails as a whole because one file
// was bad or already known.
func (h *DocumentHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	results := make([]UploadResult, 0, len(files))
	for _, header := range files {
		results = append(results, h.ingestFile(c, header.Filename, header))
	}

	c.JSON(http.StatusOK, gin.H{
		"results":      results,
		"current_doc":  h.workspace.Current(),
		"total_stored": h.workspace.Count(),
	})
}

func (h *DocumentHandler) ingestFile(c *gin.Context, name string, header *multipart.FileHeader) UploadResult {
	result := UploadResult{Filename: name}

	if ext := strings.ToLower(filepath.Ext(name)); ext != ".pdf" {
		result.Status = StatusInvalid
		result.Error = "Only PDF files are allowed"
		return result
	}

	// Reserve the name before doing any work so a concurrent upload of the
	// same file cannot run extraction twice.
	if err := h.workspace.BeginIngest(name); err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyProcessed):
			result.Status = StatusAlreadyProcessed
		case errors.Is(err, service.ErrDeleted):
			result.Status = StatusDeleted
			result.Error = "File was deleted this session and will not be reprocessed"
		case errors.Is(err, service.ErrIngestInProgress):
			result.Status = StatusInProgress
		case errors.Is(err, service.ErrWorkspaceFull):
			result.Status = StatusWorkspaceFull
			result.Error = "Workspace document limit reached"
		default:
			result.Status = StatusInvalid
			result.Error = err.Error()
		}
		return result
	}

	// Release the reservation on every exit that does not commit a record,
	// including a panic below. A leaked reservation would keep the name
	// stuck in progress for the rest of the session.
	ingested := false
	defer func() {
		if !ingested {
			h.workspace.AbortIngest(name)
		}
	}()

	ctx := logger.WithDocument(c.Request.Context(), name)

	file, err := header.Open()
	if err != nil {
		result.Status = StatusInvalid
		result.Error = "Failed to read file"
		return result
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		result.Status = StatusInvalid
		result.Error = "Failed to read file"
		return result
	}

	extraction, err := h.extractor.Extract(ctx, data)
	if err != nil {
		logger.Warn(ctx, "extraction failed", "error", err)
		result.Status = StatusInvalid
		result.Error = "Could not read any text from the document"
		return result
	}

	flags := service.ScanRedFlags(extraction.Text, h.keywords)
	doc := &model.Document{
		Name:      name,
		FullText:  extraction.Text,
		PageCount: extraction.PageCount,
		RedFlags:  flags,
		RiskScore: service.RiskScore(flags),
		OCRUsed:   extraction.OCRUsed,
		Warnings:  extraction.Warnings,
		CreatedAt: time.Now(),
	}

	// Archiving the original is best-effort; the analysis stands without it.
	if h.archive != nil {
		url, err := h.archive.ArchiveDocument(ctx, name, data)
		if err != nil {
			logger.Warn(ctx, "archive upload failed", "error", err)
		} else {
			doc.ArchiveURL = url
		}
	}

	h.workspace.CompleteIngest(doc)
	ingested = true
	logger.Info(ctx, "document ingested",
		"pages", doc.PageCount,
		"risk_score", doc.RiskScore,
		"categories", len(doc.RedFlags),
		"ocr_used", doc.OCRUsed,
	)

	result.Status = StatusProcessed
	result.RiskScore = doc.RiskScore
	result.PageCount = doc.PageCount
	return result
}

// List returns summary rows for every processed document.
func (h *DocumentHandler) List(c *gin.Context) {
	docs := h.workspace.List()
	current := h.workspace.Current()

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"name":          doc.Name,
			"risk_score":    doc.RiskScore,
			"page_count":    doc.PageCount,
			"categories":    doc.RedFlags.Categories(),
			"has_deadlines": doc.HasDeadlines(),
			"ocr_used":      doc.OCRUsed,
			"current":       doc.Name == current,
			"created_at":    doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":   result,
		"current_doc": current,
	})
}

// Get returns the full record for one document.
func (h *DocumentHandler) Get(c *gin.Context) {
	name := c.Param("name")

	doc, ok := h.workspace.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Select makes an existing document the active one.
func (h *DocumentHandler) Select(c *gin.Context) {
	name := c.Param("name")

	if err := h.workspace.Select(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Document selected",
		"current_doc": name,
	})
}

// Delete removes a document and tombstones its name for the session. When
// the active document is deleted, the most recently ingested survivor is
// selected in its place.
func (h *DocumentHandler) Delete(c *gin.Context) {
	name := c.Param("name")

	if err := h.workspace.Delete(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	if h.workspace.Current() == "" {
		if remaining := h.workspace.List(); len(remaining) > 0 {
			// Selection can only fail if the doc vanished concurrently, in
			// which case no fallback is owed.
			_ = h.workspace.Select(remaining[len(remaining)-1].Name)
		}
	}

	logger.Info(logger.WithDocument(c.Request.Context(), name), "document deleted")

	c.JSON(http.StatusOK, gin.H{
		"message":     "Document deleted",
		"current_doc": h.workspace.Current(),
	})
}
