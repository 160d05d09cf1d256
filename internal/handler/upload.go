package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ingestor indexes one uploaded document and reports the chunk count.
type Ingestor interface {
	Ingest(ctx context.Context, filename string, data []byte) (int, error)
}

type UploadHandler struct {
	ingest Ingestor
}

func NewUploadHandler(ingest Ingestor) *UploadHandler {
	return &UploadHandler{ingest: ingest}
}

// Upload accepts a multipart form with a required non-empty "file" field and
// runs it through the ingestion pipeline. Upstream failures surface as a
// generic 500; the cause is only logged.
func (h *UploadHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil || header.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file provided."})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No file provided."})
		return
	}

	chunks, err := h.ingest.Ingest(c.Request.Context(), header.Filename, data)
	if err != nil {
		log.Printf("Upload endpoint error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to process file."})
		return
	}

	log.Printf("Processed %q into %d chunks", header.Filename, chunks)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("File '%s' processed successfully.", header.Filename),
	})
}
