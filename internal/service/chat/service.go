package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/chat"
	"github.com/zhouzirui/papi/backend/internal/model/tier"
)

var ErrSessionNotFound = errors.New("session not found")

// Summary is the externally visible state of a session.
type Summary struct {
	ID            string    `json:"id"`
	Tier          tier.Tier `json:"tier"`
	AssistantName string    `json:"assistantName"`
	Avatar        string    `json:"avatar"`
	Messages      int       `json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
}

// slot pairs a session with its turn lock. Every operation touching the
// session holds turn, so logout waits for an in-flight turn to finish and
// then clears whatever it appended.
type slot struct {
	turn    sync.Mutex
	session *chat.Session
}

// Service owns sessions and serialises access to each of them.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]*slot
	pipeline *Pipeline
	logger   *zap.Logger
}

// NewService returns an in-memory session service.
func NewService(pipeline *Pipeline, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: make(map[string]*slot),
		pipeline: pipeline,
		logger:   logger,
	}
}

// CreateSession bootstraps an unresolved session.
func (s *Service) CreateSession(_ context.Context) (Summary, error) {
	session := chat.NewSession(uuid.NewString())

	s.mu.Lock()
	s.sessions[session.ID] = &slot{session: session}
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session", session.ID))
	return summarize(session), nil
}

// GetSession returns the current state of a session.
func (s *Service) GetSession(_ context.Context, sessionID string) (Summary, error) {
	sl, err := s.lookup(sessionID)
	if err != nil {
		return Summary{}, err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()
	return summarize(sl.session), nil
}

// Login resolves the session tier from secret. An unknown secret leaves the
// session unresolved without error; a second login fails with chat.ErrTierLocked.
func (s *Service) Login(_ context.Context, sessionID, secret string) (Summary, error) {
	sl, err := s.lookup(sessionID)
	if err != nil {
		return Summary{}, err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()

	if sl.session.Tier().Resolved() {
		return summarize(sl.session), chat.ErrTierLocked
	}

	resolved := tier.Resolve(secret)
	if !resolved.Resolved() {
		s.logger.Info("login rejected", zap.String("session", sessionID))
		return summarize(sl.session), nil
	}
	if err := sl.session.Resolve(resolved); err != nil {
		return summarize(sl.session), err
	}

	s.logger.Info("login", zap.String("session", sessionID), zap.Stringer("tier", resolved))
	return summarize(sl.session), nil
}

// Logout clears the whole session. It blocks until any in-flight turn ends.
func (s *Service) Logout(_ context.Context, sessionID string) error {
	sl, err := s.lookup(sessionID)
	if err != nil {
		return err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()

	sl.session.Clear()
	s.logger.Info("logout", zap.String("session", sessionID))
	return nil
}

// Turn runs one chat message through the pipeline.
func (s *Service) Turn(ctx context.Context, sessionID, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	sl, err := s.lookup(sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()

	// Re-checked under the lock: a logout may have won the race.
	return s.pipeline.Run(ctx, sl.session, text)
}

// Transcript returns the session log in display order; empty after logout.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.Message, error) {
	sl, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()
	return sl.session.Log().All(), nil
}

// SetAvatar updates the session's display icon.
func (s *Service) SetAvatar(_ context.Context, sessionID, avatar string) (Summary, error) {
	sl, err := s.lookup(sessionID)
	if err != nil {
		return Summary{}, err
	}
	sl.turn.Lock()
	defer sl.turn.Unlock()

	if err := sl.session.SetAvatar(strings.TrimSpace(avatar)); err != nil {
		return summarize(sl.session), err
	}
	return summarize(sl.session), nil
}

func (s *Service) lookup(sessionID string) (*slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sl, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sl, nil
}

func summarize(session *chat.Session) Summary {
	return Summary{
		ID:            session.ID,
		Tier:          session.Tier(),
		AssistantName: session.AssistantName(),
		Avatar:        session.Avatar(),
		Messages:      session.Log().Len(),
		CreatedAt:     session.CreatedAt,
	}
}
