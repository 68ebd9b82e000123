package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/service"
	"mc-bridge-api/pkg/apierror"
	"mc-bridge-api/pkg/response"

	"github.com/sirupsen/logrus"
)

// ChatHandler handles the chat relay endpoints used by the Minecraft mod.
type ChatHandler struct {
	relay *service.RelayService
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(relay *service.RelayService) *ChatHandler {
	return &ChatHandler{relay: relay}
}

type postChatRequest struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// PostChat handles POST /api/mc/chat - Minecraft chat forwarded to Discord.
func (h *ChatHandler) PostChat(w http.ResponseWriter, r *http.Request) {
	var req postChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if req.Username == "" || req.Message == "" {
		response.Error(w, apierror.BadRequest("Missing username or message"))
		return
	}

	if err := h.relay.RelayFromMinecraft(r.Context(), req.Username, req.Message); err != nil {
		if errors.Is(err, service.ErrForwardFailed) || errors.Is(err, service.ErrNoForwardTarget) {
			logrus.WithError(err).Error("failed to forward chat to Discord")
			response.Error(w, apierror.BadGateway("Failed to send to Discord"))
			return
		}
		logrus.WithError(err).Error("failed to relay chat message")
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.Success(w)
}

// GetMessages handles GET /api/mc/messages?since=<RFC3339>&limit=<n>.
// The Minecraft mod polls this for Discord messages awaiting delivery.
func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	since := time.Time{}
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := parseTimestamp(raw)
		if err != nil {
			response.Error(w, apierror.BadRequest("Invalid since timestamp"))
			return
		}
		since = parsed
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(w, apierror.BadRequest("Invalid limit"))
			return
		}
		limit = parsed
	}

	messages, err := h.relay.PendingMessages(r.Context(), since, limit)
	if err != nil {
		logrus.WithError(err).Error("failed to list pending messages")
		response.Error(w, apierror.InternalError(""))
		return
	}

	if messages == nil {
		messages = []model.RelayMessage{}
	}
	response.OK(w, messages)
}

type ackRequest struct {
	IDs []int64 `json:"ids"`
}

// AckMessages handles POST /api/mc/messages/ack - the mod confirms receipt.
func (h *ChatHandler) AckMessages(w http.ResponseWriter, r *http.Request) {
	var req ackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if len(req.IDs) == 0 {
		response.Error(w, apierror.BadRequest("Missing or empty ids array"))
		return
	}

	acknowledged, err := h.relay.Acknowledge(r.Context(), req.IDs)
	if err != nil {
		logrus.WithError(err).Error("failed to acknowledge messages")
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.OK(w, map[string]int64{"acknowledged": acknowledged})
}

// parseTimestamp accepts RFC3339 or the bare SQL datetime layout the mod
// historically sent.
func parseTimestamp(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
