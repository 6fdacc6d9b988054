package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/chat"
	"github.com/zhouzirui/papi/backend/internal/model/tier"
	"github.com/zhouzirui/papi/backend/internal/service/brain"
	"github.com/zhouzirui/papi/backend/internal/service/command"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
	"github.com/zhouzirui/papi/backend/internal/service/speech"
)

var (
	ErrUnresolvedTier = errors.New("login required before chatting")
	ErrEmptyMessage   = errors.New("message text is required")
)

// Moderator is the Guardian step.
type Moderator interface {
	Scan(text string, t tier.Tier) guardian.Verdict
}

// Responder is the Brain step.
type Responder interface {
	Respond(text string, t tier.Tier, verdict guardian.Verdict) (brain.Reply, error)
}

// AudioRenderer speaks a reply. Failures are never fatal to a turn.
type AudioRenderer interface {
	Render(ctx context.Context, sessionID, text string) (speech.Audio, error)
}

// AudioPolicy decides which replies get audio.
type AudioPolicy struct {
	Enabled bool
	// Child enables audio for Child-tier replies; adult tiers only need Enabled.
	Child bool
}

func (p AudioPolicy) allows(t tier.Tier, reply brain.Reply) bool {
	if !p.Enabled || !reply.Speakable {
		return false
	}
	if t == tier.Child {
		return p.Child
	}
	return t.Adult()
}

// TurnResult is everything one chat turn produced.
type TurnResult struct {
	User      chat.Message       `json:"user"`
	Reply     chat.Message       `json:"message"`
	Verdict   guardian.Verdict   `json:"verdict"`
	Template  brain.TemplateID   `json:"template"`
	Directive *command.Directive `json:"directive,omitempty"`
}

// Pipeline runs moderate → respond → render → log for one message.
type Pipeline struct {
	moderator Moderator
	responder Responder
	audio     AudioRenderer
	policy    AudioPolicy
	logger    *zap.Logger
}

// NewPipeline wires the turn steps. audio may be nil when speech is not configured.
func NewPipeline(moderator Moderator, responder Responder, audio AudioRenderer, policy AudioPolicy, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if audio == nil {
		policy.Enabled = false
	}
	return &Pipeline{
		moderator: moderator,
		responder: responder,
		audio:     audio,
		policy:    policy,
		logger:    logger,
	}
}

// Run processes text against sess, which the caller must own exclusively for
// the duration of the call. Both transcript entries are appended only after
// the reply is ready, so a failed turn leaves the log untouched.
func (p *Pipeline) Run(ctx context.Context, sess *chat.Session, text string) (TurnResult, error) {
	t := sess.Tier()
	if !t.Resolved() {
		return TurnResult{}, ErrUnresolvedTier
	}

	verdict := p.moderator.Scan(text, t)
	reply, err := p.responder.Respond(text, t, verdict)
	if err != nil {
		return TurnResult{}, fmt.Errorf("respond: %w", err)
	}

	assistant := chat.Message{Role: chat.RoleAssistant, Text: reply.Text}
	if p.policy.allows(t, reply) {
		audio, err := p.audio.Render(ctx, sess.ID, reply.Text)
		if err != nil {
			p.logger.Warn("audio render failed, replying with text only",
				zap.String("session", sess.ID), zap.Error(err))
		} else {
			assistant.Audio = audio.Data
			assistant.AudioFormat = audio.Format
		}
	}

	user := sess.Log().Append(chat.Message{Role: chat.RoleUser, Text: text})
	stored := sess.Log().Append(assistant)

	p.logger.Info("turn complete",
		zap.String("session", sess.ID),
		zap.Stringer("tier", t),
		zap.Stringer("verdict", verdict),
		zap.String("template", string(reply.Template)),
		zap.Bool("audio", stored.HasAudio()))

	return TurnResult{
		User:      user,
		Reply:     stored,
		Verdict:   verdict,
		Template:  reply.Template,
		Directive: reply.Directive,
	}, nil
}
