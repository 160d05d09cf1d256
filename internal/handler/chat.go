package handler

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/patrickmvla/shiru/internal/service"
)

// Answerer produces a grounded answer with sources for one question.
type Answerer interface {
	Answer(ctx context.Context, query string) (*service.Answer, error)
}

type ChatHandler struct {
	answer Answerer
}

func NewChatHandler(answer Answerer) *ChatHandler {
	return &ChatHandler{answer: answer}
}

type chatRequest struct {
	Message string `json:"message"`
}

// Chat answers a question from ingested documents. Validation happens here;
// an empty message never reaches the retrieval pipeline.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "No message provided."})
		return
	}

	ans, err := h.answer.Answer(c.Request.Context(), req.Message)
	if err != nil {
		log.Printf("Chat endpoint error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to process chat message."})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"answer":  ans.Text,
		"sources": ans.Sources,
	})
}
