package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mc-bridge-api/internal/model"
	"mc-bridge-api/internal/repository"
	"mc-bridge-api/pkg/bindcode"
)

// BindCodeTTL is how long an issued bind code stays valid.
const BindCodeTTL = 10 * time.Minute

var (
	// ErrAlreadyBound is returned when a Discord user who already completed
	// binding requests a new code.
	ErrAlreadyBound = errors.New("account already bound")

	// ErrInvalidCode is returned when no pending binding holds the code.
	ErrInvalidCode = errors.New("invalid bind code")

	// ErrExpiredCode is returned when the code exists but its issue
	// timestamp is outside the validity window. The code is cleared as a
	// side effect, so a retry with the same code yields ErrInvalidCode.
	ErrExpiredCode = errors.New("bind code has expired")
)

// BindingService drives the account binding flow between Discord and
// Minecraft. A binding moves through three states: unbound, pending
// (code issued), and bound. Bound is terminal; there is no unbind.
type BindingService struct {
	bindings repository.BindingRepository
	now      func() time.Time
}

// NewBindingService creates a binding service.
func NewBindingService(bindings repository.BindingRepository) *BindingService {
	return &BindingService{
		bindings: bindings,
		now:      time.Now,
	}
}

// RequestBind issues a bind code for a Discord user. Re-requesting while a
// code is pending replaces the old code; requesting while already bound
// returns ErrAlreadyBound with the existing binding.
func (s *BindingService) RequestBind(ctx context.Context, discordID, discordName, mcName string) (string, *model.Binding, error) {
	existing, err := s.bindings.GetByDiscordID(ctx, discordID)
	if err != nil {
		return "", nil, fmt.Errorf("lookup binding: %w", err)
	}
	if existing != nil && existing.Confirmed() {
		return "", existing, ErrAlreadyBound
	}

	code := bindcode.New()
	if err := s.bindings.UpsertPending(ctx, discordID, discordName, mcName, code, s.now()); err != nil {
		return "", nil, fmt.Errorf("upsert pending binding: %w", err)
	}
	return code, nil, nil
}

// VerifyBind completes a binding from the Minecraft side. The code is
// case-normalized before lookup. Expired codes are cleared so they cannot
// be replayed.
func (s *BindingService) VerifyBind(ctx context.Context, mcUUID, mcName, code string) (*model.Binding, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrInvalidCode
	}

	binding, err := s.bindings.GetByBindCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("lookup bind code: %w", err)
	}
	if binding == nil || binding.BindCodeAt == nil {
		return nil, ErrInvalidCode
	}

	if s.now().Sub(*binding.BindCodeAt) > BindCodeTTL {
		if err := s.bindings.ClearBindCode(ctx, binding.ID); err != nil {
			return nil, fmt.Errorf("clear expired code: %w", err)
		}
		return nil, ErrExpiredCode
	}

	boundAt := s.now()
	if err := s.bindings.Confirm(ctx, binding.ID, mcUUID, mcName, boundAt); err != nil {
		return nil, fmt.Errorf("confirm binding: %w", err)
	}

	binding.MCUUID = &mcUUID
	binding.MCName = mcName
	binding.BindCode = nil
	binding.BindCodeAt = nil
	binding.BoundAt = &boundAt
	return binding, nil
}
