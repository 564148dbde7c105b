package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
	"github.com/kashvi5907-create/legalease/backend/service"
)

// CompareHandler runs the two-document head-to-head. Comparison is
// ephemeral: nothing it reads or produces touches the workspace.
type CompareHandler struct {
	comparer *service.Comparer
}

func NewCompareHandler(comparer *service.Comparer) *CompareHandler {
	return &CompareHandler{comparer: comparer}
}

// Compare analyzes the multipart files file_a and file_b and returns the
// verdict with the category breakdown and common risks.
func (h *CompareHandler) Compare(c *gin.Context) {
	headerA, err := c.FormFile("file_a")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_a is required"})
		return
	}
	headerB, err := c.FormFile("file_b")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_b is required"})
		return
	}

	dataA, err := readUpload(headerA)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file_a"})
		return
	}
	dataB, err := readUpload(headerB)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file_b"})
		return
	}

	comparison, err := h.comparer.Compare(c.Request.Context(),
		headerA.Filename, dataA, headerB.Filename, dataB)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFile) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		logger.Error(c.Request.Context(), "comparison failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed"})
		return
	}

	logger.Info(c.Request.Context(), "comparison completed",
		"file_a", headerA.Filename,
		"file_b", headerB.Filename,
		"winner", comparison.Winner,
	)

	c.JSON(http.StatusOK, comparison)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
