// Package brain turns a moderated message into the assistant's reply.
package brain

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/tier"
	"github.com/zhouzirui/papi/backend/internal/service/command"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
)

// ErrTierUnresolved is returned when Respond is called before login.
var ErrTierUnresolved = errors.New("brain: tier is unresolved")

// Reply is the assistant's answer to one message.
type Reply struct {
	Text      string
	Template  TemplateID
	Directive *command.Directive
	// Speakable is false for block notices, which are never synthesized.
	Speakable bool
}

// Policy renders replies from a fixed template set.
type Policy struct {
	templates map[TemplateID]*prompt.DefaultChatTemplate
	logger    *zap.Logger
}

// NewPolicy compiles and dry-runs every reply template.
func NewPolicy(ctx context.Context, logger *zap.Logger) (*Policy, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	templates := make(map[TemplateID]*prompt.DefaultChatTemplate, len(replyTemplates))
	for id, text := range replyTemplates {
		tpl := prompt.FromMessages(schema.FString, schema.AssistantMessage(text, nil))
		if _, err := tpl.Format(ctx, sampleVars); err != nil {
			return nil, fmt.Errorf("reply template %s is invalid: %w", id, err)
		}
		templates[id] = tpl
	}

	return &Policy{templates: templates, logger: logger}, nil
}

// Decide is the decision table: verdict first, then tier, then the command extractor.
func Decide(text string, t tier.Tier, verdict guardian.Verdict) (TemplateID, command.Directive) {
	switch verdict.Kind {
	case guardian.Blocked:
		return TemplateBlock, command.Directive{}
	case guardian.Intervention:
		return TemplateIntervention, command.Directive{}
	}

	if t == tier.Child {
		return TemplateSocratic, command.Directive{}
	}

	directive := command.Extract(text)
	switch {
	case directive.Launchable():
		return TemplateLaunch, directive
	case directive.HasVerb():
		return TemplateClarify, command.Directive{}
	default:
		return TemplateAcknowledge, command.Directive{}
	}
}

// Respond produces the reply for text. It depends only on its three inputs.
func (p *Policy) Respond(text string, t tier.Tier, verdict guardian.Verdict) (Reply, error) {
	if !t.Resolved() {
		return Reply{}, ErrTierUnresolved
	}

	id, directive := Decide(text, t, verdict)
	rendered, err := p.render(id, map[string]any{
		"reason": verdict.Reason,
		"text":   text,
		"target": directive.Target,
	})
	if err != nil {
		return Reply{}, err
	}

	reply := Reply{
		Text:      rendered,
		Template:  id,
		Speakable: id != TemplateBlock,
	}
	if directive.Launchable() {
		reply.Directive = &directive
	}

	p.logger.Debug("brain reply", zap.String("template", string(id)), zap.Stringer("tier", t))
	return reply, nil
}

func (p *Policy) render(id TemplateID, vars map[string]any) (string, error) {
	tpl, ok := p.templates[id]
	if !ok {
		return "", fmt.Errorf("reply template %s not registered", id)
	}

	messages, err := tpl.Format(context.Background(), vars)
	if err != nil {
		return "", fmt.Errorf("format reply template %s: %w", id, err)
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("reply template %s produced no message", id)
	}
	return messages[len(messages)-1].Content, nil
}
