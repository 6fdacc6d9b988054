package chat

import (
	"errors"
	"time"

	"github.com/zhouzirui/papi/backend/internal/model/tier"
)

var (
	ErrTierLocked    = errors.New("session tier already resolved")
	ErrTierInvalid   = errors.New("tier must be resolved")
	ErrAvatarInvalid = errors.New("avatar not allowed for this tier")
)

const (
	childAssistantName   = "Mentor"
	defaultAssistantName = "PAPI"
	defaultAvatar        = "👤"
	customAvatar         = "⚡"
)

// Buddy is a child-safe avatar choice.
type Buddy struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Buddies is the fixed child avatar catalogue. The panda is the child default.
var Buddies = []Buddy{
	{Name: "Brave Lion", Emoji: "🦁"},
	{Name: "Curious Panda", Emoji: "🐼"},
	{Name: "Smart Fox", Emoji: "🦊"},
	{Name: "Happy Pup", Emoji: "🐶"},
	{Name: "Magical Unicorn", Emoji: "🦄"},
	{Name: "Cool Dino", Emoji: "🦖"},
}

// Session holds everything a login grants. It has a single owner at a time;
// the chat service serialises access.
type Session struct {
	ID        string
	CreatedAt time.Time

	tier          tier.Tier
	assistantName string
	avatar        string
	log           *Log
}

// NewSession returns an unresolved session.
func NewSession(id string) *Session {
	return &Session{
		ID:            id,
		CreatedAt:     time.Now().UTC(),
		assistantName: defaultAssistantName,
		avatar:        defaultAvatar,
		log:           NewLog(),
	}
}

// Tier returns the resolved tier or tier.Unresolved.
func (s *Session) Tier() tier.Tier { return s.tier }

// AssistantName is the persona name shown for assistant messages.
func (s *Session) AssistantName() string { return s.assistantName }

// Avatar is the user's display icon.
func (s *Session) Avatar() string { return s.avatar }

// Log exposes the transcript.
func (s *Session) Log() *Log { return s.log }

// Resolve binds the session to t exactly once.
func (s *Session) Resolve(t tier.Tier) error {
	if !t.Resolved() {
		return ErrTierInvalid
	}
	if s.tier.Resolved() {
		return ErrTierLocked
	}

	s.tier = t
	if t == tier.Child {
		s.assistantName = childAssistantName
		s.avatar = Buddies[1].Emoji
	}
	return nil
}

// SetAvatar changes the display icon. Child sessions may only pick a buddy;
// adult tiers get the custom-icon marker for anything that is not a buddy.
func (s *Session) SetAvatar(avatar string) error {
	if !s.tier.Resolved() {
		return ErrTierInvalid
	}

	for _, b := range Buddies {
		if b.Emoji == avatar || b.Name == avatar {
			s.avatar = b.Emoji
			return nil
		}
	}
	if s.tier == tier.Child || avatar == "" {
		return ErrAvatarInvalid
	}
	s.avatar = customAvatar
	return nil
}

// Clear wipes tier, transcript, assistant name and avatar in one step.
func (s *Session) Clear() {
	s.tier = tier.Unresolved
	s.assistantName = defaultAssistantName
	s.avatar = defaultAvatar
	s.log.reset()
}
