package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
)

// ocrFallbackThreshold is the decision threshold for scan-only documents:
// when native extraction yields fewer trimmed characters than this, the
// pages are rasterized and OCRed instead.
const ocrFallbackThreshold = 100

// ExtractionResult is the output of text extraction for one document.
type ExtractionResult struct {
	Text      string
	PageCount int
	OCRUsed   bool
	Warnings  []string
}

// Extractor turns raw document bytes into plain text. Native extraction
// runs pdftotext; scan-only documents fall back to pdftoppm + tesseract.
// All binaries run through a Runner so tests can stub them.
type Extractor struct {
	cfg    *config.OCRConfig
	runner Runner
}

func NewExtractor(cfg *config.OCRConfig) *Extractor {
	return &Extractor{cfg: cfg, runner: execRunner{}}
}

// NewExtractorWithRunner is used by tests to inject a stub runner.
func NewExtractorWithRunner(cfg *config.OCRConfig, r Runner) *Extractor {
	return &Extractor{cfg: cfg, runner: r}
}

// Extract returns the document's full text and native page count. The text
// may be empty; OCR failures degrade to warnings, never errors. Only
// unreadable bytes produce an error.
func (e *Extractor) Extract(ctx context.Context, data []byte) (ExtractionResult, error) {
	tmpDir, err := os.MkdirTemp("", "legalease-extract-*")
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tmpDir); rmErr != nil {
			logger.Warn(ctx, "failed to remove temp dir", "path", tmpDir, "error", rmErr)
		}
	}()

	pdfPath := filepath.Join(tmpDir, "document.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return ExtractionResult{}, fmt.Errorf("write temp document: %w", err)
	}

	text, pageCount, err := e.nativeText(ctx, pdfPath)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	result := ExtractionResult{Text: text, PageCount: pageCount}

	// Fewer than the threshold characters usually means a scanned PDF with
	// only page numbers or artifacts; rasterize and OCR instead. Page count
	// stays the native one.
	if len(strings.TrimSpace(text)) < ocrFallbackThreshold {
		logger.Info(ctx, "native text below threshold, running OCR fallback",
			"native_chars", len(strings.TrimSpace(text)),
			"dpi", e.cfg.DPI,
		)
		ocrText, warns := e.ocrText(ctx, pdfPath, tmpDir)
		result.Warnings = append(result.Warnings, warns...)
		if ocrText != "" {
			result.Text = ocrText
			result.OCRUsed = true
		}
	}

	return result, nil
}

// nativeText extracts embedded text page by page. pdftotext separates pages
// with form feeds; each page is trimmed and pages are joined with newlines.
func (e *Extractor) nativeText(ctx context.Context, path string) (string, int, error) {
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %v (%s)", err, truncate(string(errb), 512))
	}

	pages := strings.Split(string(out), "\f")
	// pdftotext emits a trailing form feed after the last page
	if len(pages) > 0 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}

	var b strings.Builder
	for _, page := range pages {
		b.WriteString(strings.TrimSpace(page))
		b.WriteString("\n")
	}
	return b.String(), len(pages), nil
}

// ocrText rasterizes every page at the configured DPI in grayscale and runs
// tesseract over each image. Failures are collected as warnings and the
// best-effort text (possibly empty) is returned.
func (e *Extractor) ocrText(ctx context.Context, pdfPath, tmpDir string) (string, []string) {
	var warns []string

	prefix := filepath.Join(tmpDir, "page")
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI), "-gray", "-png", pdfPath, prefix)
	if err != nil {
		warns = append(warns, fmt.Sprintf("pdftoppm: %v (%s)", err, truncate(string(errb), 512)))
		return "", warns
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		warns = append(warns, "pdftoppm produced no images")
		return "", warns
	}

	var b strings.Builder
	for _, img := range matches {
		// --psm 3 keeps automatic layout analysis, which groups text into
		// paragraphs rather than isolated lines
		out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract,
			img, "stdout", "-l", e.cfg.Language, "--psm", "3")
		if err != nil {
			warns = append(warns, fmt.Sprintf("tesseract %s: %v (%s)", filepath.Base(img), err, truncate(string(errb), 512)))
			continue
		}
		b.WriteString(strings.TrimSpace(string(out)))
		b.WriteString("\n")
	}
	return b.String(), warns
}
