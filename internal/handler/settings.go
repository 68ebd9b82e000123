package handler

import (
	"encoding/json"
	"net/http"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/repository"
	"mc-bridge-api/pkg/apierror"
	"mc-bridge-api/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// SettingHandler handles the mirrored server settings endpoints.
type SettingHandler struct {
	settings repository.SettingRepository
}

// NewSettingHandler creates a new settings handler.
func NewSettingHandler(settings repository.SettingRepository) *SettingHandler {
	return &SettingHandler{settings: settings}
}

// GetSettings handles GET /api/mc/settings.
func (h *SettingHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.ListSettings(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to list settings")
		response.Error(w, apierror.InternalError(""))
		return
	}

	if settings == nil {
		settings = []model.Setting{}
	}
	response.OK(w, settings)
}

// GetSetting handles GET /api/mc/settings/{key}.
func (h *SettingHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.settings.GetSetting(r.Context(), key)
	if err != nil {
		logrus.WithError(err).Error("failed to get setting")
		response.Error(w, apierror.InternalError(""))
		return
	}
	if setting == nil {
		response.Error(w, apierror.NotFound("Setting not found"))
		return
	}

	response.OK(w, setting)
}

type putSettingRequest struct {
	Value *json.RawMessage `json:"value"`
}

// PutSetting handles PUT /api/mc/settings/{key}. The upsert is idempotent:
// writing the same value twice is not an error.
func (h *SettingHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req putSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}
	if req.Value == nil {
		response.Error(w, apierror.BadRequest("Missing value"))
		return
	}

	if err := h.settings.UpsertSetting(r.Context(), key, rawToString(*req.Value)); err != nil {
		logrus.WithError(err).Error("failed to upsert setting")
		response.Error(w, apierror.InternalError(""))
		return
	}

	response.Success(w)
}

// serverStatusKeys maps body fields of POST /api/mc/server/status to their
// setting keys. Unknown fields are ignored.
var serverStatusKeys = map[string]string{
	"status":         model.SettingServerStatus,
	"tps":            model.SettingServerTPS,
	"players_online": model.SettingPlayersOnline,
	"players_max":    model.SettingPlayersMax,
	"version":        model.SettingServerVersion,
}

// PostServerStatus handles POST /api/mc/server/status - the periodic status
// report from the Minecraft mod, stored as a batch settings upsert.
func (h *SettingHandler) PostServerStatus(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, apierror.BadRequest("Invalid JSON body"))
		return
	}

	entries := make(map[string]string)
	for field, key := range serverStatusKeys {
		if raw, ok := body[field]; ok {
			entries[key] = rawToString(raw)
		}
	}

	if len(entries) > 0 {
		if err := h.settings.BatchUpsertSettings(r.Context(), entries); err != nil {
			logrus.WithError(err).Error("failed to upsert server status")
			response.Error(w, apierror.InternalError(""))
			return
		}
	}

	response.Success(w)
}

// rawToString renders a JSON scalar the way it was sent: strings lose their
// quotes, numbers and booleans keep their literal text.
func rawToString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
