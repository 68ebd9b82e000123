package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/repository"
	"mc-bridge-api/internal/service"
	"mc-bridge-api/pkg/apierror"
	"mc-bridge-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// PlayerHandler handles player binding endpoints for the Minecraft mod.
type PlayerHandler struct {
	bindings    *service.BindingService
	bindingRepo repository.BindingRepository
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(bindings *service.BindingService, bindingRepo repository.BindingRepository) *PlayerHandler {
	return &PlayerHandler{bindings: bindings, bindingRepo: bindingRepo}
}

// GetPlayers handles GET /api/mc/players - all confirmed bindings.
func (h *PlayerHandler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	total, err := h.bindingRepo.CountBound(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to count bound players")
		response.Error(w, apierror.InternalError(""))
		return
	}

	players := []model.Binding{}
	if total > 0 {
		players, err = h.bindingRepo.ListBound(r.Context(), total, 0)
		if err != nil {
			logrus.WithError(err).Error("failed to list bound players")
			response.Error(w, apierror.InternalError(""))
			return
		}
	}

	response.OK(w, players)
}

// GetPlayer handles GET /api/mc/players/{mc_uuid}.
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	mcUUID := chi.URLParam(r, "mc_uuid")

	player, err := h.bindingRepo.GetByMCUUID(r.Context(), mcUUID)
	if err != nil {
		logrus.WithError(err).Error("failed to get player binding")
		response.Error(w, apierror.InternalError(""))
		return
	}
	if player == nil {
		response.Error(w, apierror.NotFound("Player not found"))
		return
	}

	response.OK(w, player)
}

type bindRequest struct {
	MCUUID   string `json:"mc_uuid"`
	MCName   string `json:"mc_name"`
	BindCode string `json:"bind_code"`
}

// BindPlayer handles POST /api/mc/players/bind - the Minecraft side of the
// verification handshake.
func (h *PlayerHandler) BindPlayer(w http.ResponseWriter, r *http.Request) {
	var req bindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if req.MCUUID == "" || req.MCName == "" || req.BindCode == "" {
		response.Error(w, apierror.BadRequest("Missing mc_uuid, mc_name, or bind_code"))
		return
	}

	binding, err := h.bindings.VerifyBind(r.Context(), req.MCUUID, req.MCName, req.BindCode)
	if errors.Is(err, service.ErrInvalidCode) {
		response.Error(w, apierror.NotFound("Invalid bind code"))
		return
	}
	if errors.Is(err, service.ErrExpiredCode) {
		response.Error(w, apierror.Gone("Bind code has expired"))
		return
	}
	if err != nil {
		logrus.WithError(err).Error("failed to verify bind code")
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.OK(w, map[string]string{
		"discord_id":   binding.DiscordID,
		"discord_name": binding.DiscordName,
		"mc_uuid":      req.MCUUID,
		"mc_name":      req.MCName,
	})
}
