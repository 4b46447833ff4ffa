package nomadly

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Moxx-Company/Nomadly2/internal/domain"
	"github.com/google/uuid"
)

func sessionKey(userID uuid.UUID) string {
	return fmt.Sprintf("nomadly:session:%s", userID)
}

// loadSession returns the user's conversation state, an idle session when
// none is stored or the stored one cannot be decoded
func (s *Service) loadSession(ctx context.Context, userID uuid.UUID) *domain.Session {
	idle := &domain.Session{Step: domain.SessionStepIdle}
	if s.Cache == nil {
		return idle
	}

	raw, err := s.Cache.Get(ctx, sessionKey(userID))
	if err != nil {
		return idle
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		s.Log.Warn("failed to decode session, resetting",
			"error", err,
			"user_id", userID,
		)
		return idle
	}

	return &session
}

// saveSession stores the conversation state with the session TTL
func (s *Service) saveSession(ctx context.Context, userID uuid.UUID, session *domain.Session) {
	if s.Cache == nil {
		return
	}

	raw, err := json.Marshal(session)
	if err != nil {
		s.Log.Error("failed to encode session", "error", err, "user_id", userID)
		return
	}

	if err := s.Cache.Set(ctx, sessionKey(userID), string(raw), s.Cfg.SessionTTL); err != nil {
		s.Log.Warn("failed to save session", "error", err, "user_id", userID)
	}
}

// clearSession drops the conversation state
func (s *Service) clearSession(ctx context.Context, userID uuid.UUID) {
	if s.Cache == nil {
		return
	}

	if err := s.Cache.Delete(ctx, sessionKey(userID)); err != nil {
		s.Log.Warn("failed to clear session", "error", err, "user_id", userID)
	}
}
