package handler

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"mc-bridge-api/internal/discord"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// InteractionHandler terminates the Discord interactions webhook: it checks
// the Ed25519 signature headers against the application public key and hands
// verified payloads to the dispatcher.
type InteractionHandler struct {
	publicKey  ed25519.PublicKey
	dispatcher *discord.Dispatcher
}

// NewInteractionHandler creates the webhook handler. publicKeyHex is the
// hex-encoded application public key from the Discord developer portal.
func NewInteractionHandler(publicKeyHex string, dispatcher *discord.Dispatcher) (*InteractionHandler, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid Discord public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Discord public key length: %d", len(key))
	}

	return &InteractionHandler{
		publicKey:  ed25519.PublicKey(key),
		dispatcher: dispatcher,
	}, nil
}

// Handle serves POST /. Semantic failures inside handlers still answer with
// HTTP 200 and a user-facing message; only a bad signature or an unreadable
// envelope gets a non-200.
func (h *InteractionHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if !discordgo.VerifyInteraction(r, h.publicKey) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid request signature"))
		return
	}

	var interaction discordgo.Interaction
	if err := json.NewDecoder(r.Body).Decode(&interaction); err != nil {
		logrus.WithError(err).Warn("failed to decode interaction payload")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("malformed interaction payload"))
		return
	}

	resp := h.dispatcher.Dispatch(r.Context(), &interaction)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.WithError(err).Error("failed to encode interaction response")
	}
}
