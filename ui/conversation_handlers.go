package ui

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"datalens/app/assistant"
	"datalens/domain/chat"
	"datalens/domain/core"
)

type startConversationRequest struct {
	DatasetID string `json:"datasetId" binding:"required"`
	Title     string `json:"title"`
}

func (s *Server) handleStartConversation(c *gin.Context) {
	var req startConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conv, err := s.assistant.StartConversation(c.Request.Context(), core.DatasetID(req.DatasetID), req.Title)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (s *Server) handleListConversations(c *gin.Context) {
	list, err := s.assistant.ListConversations(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": list, "count": len(list)})
}

func (s *Server) handleGetConversation(c *gin.Context) {
	conv, err := s.assistant.GetConversation(c.Request.Context(), core.ConversationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (s *Server) handleDeleteConversation(c *gin.Context) {
	id := c.Param("id")
	if err := s.assistant.DeleteConversation(c.Request.Context(), core.ConversationID(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

func (s *Server) handleListMessages(c *gin.Context) {
	messages, err := s.assistant.Messages(c.Request.Context(), core.ConversationID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := s.assistant.Send(c.Request.Context(), core.ConversationID(c.Param("id")), req.Content)
	if err != nil {
		s.logger.Error("Send on conversation %s failed: %v", c.Param("id"), err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// handleTranscript renders the conversation as a standalone HTML page,
// assistant markdown included.
func (s *Server) handleTranscript(c *gin.Context) {
	id := core.ConversationID(c.Param("id"))

	conv, err := s.assistant.GetConversation(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	messages, err := s.assistant.Messages(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(assistant.TranscriptHTML(conv, messages)))
}

// handleStreamMessage runs one reply and streams its chunks as SSE events.
// The user message travels in the query so EventSource clients can connect
// with a plain GET.
func (s *Server) handleStreamMessage(c *gin.Context) {
	message := c.Query("message")

	ch, err := s.assistant.Stream(c.Request.Context(), core.ConversationID(c.Param("id")), message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("Access-Control-Allow-Origin", "*")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-ch:
			if !ok {
				return false
			}
			payload, err := json.Marshal(chunk)
			if err != nil {
				s.logger.Error("Failed to marshal stream chunk: %v", err)
				return true
			}
			c.SSEvent(chunk.Type, string(payload))
			return chunk.Type != chat.ChunkDone

		case <-ctx.Done():
			return false
		}
	})
}
