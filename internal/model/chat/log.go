package chat

import (
	"time"

	"github.com/google/uuid"
)

// Log is the append-only transcript of a session. Insertion order is display order.
type Log struct {
	messages []Message
}

// NewLog returns an empty transcript.
func NewLog() *Log {
	return &Log{messages: make([]Message, 0, 16)}
}

// Append stores a copy of message, assigning its id, sequence index and timestamp.
func (l *Log) Append(message Message) Message {
	message.ID = uuid.NewString()
	message.Seq = len(l.messages)
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	if message.Audio != nil {
		message.Audio = append([]byte(nil), message.Audio...)
	}

	l.messages = append(l.messages, message)
	return message
}

// All returns the transcript in append order. The slice is a copy.
func (l *Log) All() []Message {
	copied := make([]Message, len(l.messages))
	copy(copied, l.messages)
	return copied
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.messages)
}

// reset is only reachable through Session.Clear.
func (l *Log) reset() {
	l.messages = make([]Message, 0, 16)
}
