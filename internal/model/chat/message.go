package chat

import "time"

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one immutable transcript entry.
type Message struct {
	ID          string    `json:"id"`
	Seq         int       `json:"seq"`
	Role        Role      `json:"role"`
	Text        string    `json:"text"`
	Audio       []byte    `json:"audio,omitempty"`
	AudioFormat string    `json:"audioFormat,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasAudio reports whether synthesized speech is attached.
func (m Message) HasAudio() bool {
	return len(m.Audio) > 0
}
