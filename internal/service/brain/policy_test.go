package brain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/papi/backend/internal/model/tier"
	"github.com/zhouzirui/papi/backend/internal/service/command"
	"github.com/zhouzirui/papi/backend/internal/service/guardian"
)

func newTestPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := NewPolicy(context.Background(), nil)
	require.NoError(t, err)
	return p
}

func TestRespondBlockedNeverSpeaks(t *testing.T) {
	p := newTestPolicy(t)

	for _, tr := range []tier.Tier{tier.Child, tier.Silver, tier.Gold, tier.Platinum} {
		reply, err := p.Respond("run Something", tr, guardian.BlockedVerdict(guardian.ReasonProfanity))
		require.NoError(t, err)

		assert.Equal(t, "[AEGIS BLOCK]: Language Alert (profanity). Please use kind words.", reply.Text)
		assert.Equal(t, TemplateBlock, reply.Template)
		assert.Nil(t, reply.Directive)
		assert.False(t, reply.Speakable)
	}
}

func TestRespondInterventionIsTierIndependent(t *testing.T) {
	p := newTestPolicy(t)

	child, err := p.Respond("I hate this", tier.Child, guardian.InterventionVerdict())
	require.NoError(t, err)
	adult, err := p.Respond("run away", tier.Platinum, guardian.InterventionVerdict())
	require.NoError(t, err)

	assert.Equal(t, replyTemplates[TemplateIntervention], child.Text)
	assert.Equal(t, child.Text, adult.Text)
	assert.Nil(t, adult.Directive)
	assert.True(t, child.Speakable)
}

func TestRespondChildEchoesVerbatim(t *testing.T) {
	p := newTestPolicy(t)
	text := `Why does ice float?! {curly} "quotes" & 100%`

	reply, err := p.Respond(text, tier.Child, guardian.CleanVerdict())
	require.NoError(t, err)

	assert.Equal(t, TemplateSocratic, reply.Template)
	assert.Equal(t, "That's a great observation! Why do you think '"+text+"' happens? (I'm here to help you figure it out!)", reply.Text)
	assert.Nil(t, reply.Directive, "child tier never extracts commands")
}

func TestRespondChildIgnoresCommands(t *testing.T) {
	p := newTestPolicy(t)

	reply, err := p.Respond("run Minecraft", tier.Child, guardian.CleanVerdict())
	require.NoError(t, err)
	assert.Equal(t, TemplateSocratic, reply.Template)
	assert.Nil(t, reply.Directive)
}

func TestRespondAdultLaunch(t *testing.T) {
	p := newTestPolicy(t)

	reply, err := p.Respond("run Security Console", tier.Silver, guardian.CleanVerdict())
	require.NoError(t, err)

	require.NotNil(t, reply.Directive)
	assert.Equal(t, command.Directive{Verb: command.VerbExecute, Target: "Security console"}, *reply.Directive)
	assert.Equal(t, "[SYSTEM]: Launching Security console. Stand by while the environment initializes.", reply.Text)
	assert.Equal(t, TemplateLaunch, reply.Template)
}

func TestRespondAdultClarifyVersusAcknowledge(t *testing.T) {
	p := newTestPolicy(t)

	clarify, err := p.Respond("please run", tier.Gold, guardian.CleanVerdict())
	require.NoError(t, err)
	assert.Equal(t, TemplateClarify, clarify.Template)
	assert.Nil(t, clarify.Directive)

	ack, err := p.Respond("status report", tier.Gold, guardian.CleanVerdict())
	require.NoError(t, err)
	assert.Equal(t, TemplateAcknowledge, ack.Template)
	assert.Equal(t, "[SYSTEM]: Processing request: 'status report'. Awaiting further input.", ack.Text)
	assert.Nil(t, ack.Directive)
}

func TestRespondIsDeterministic(t *testing.T) {
	p := newTestPolicy(t)
	other := newTestPolicy(t)

	inputs := []struct {
		text    string
		tier    tier.Tier
		verdict guardian.Verdict
	}{
		{"execute MyApp", tier.Platinum, guardian.CleanVerdict()},
		{"why is grass green", tier.Child, guardian.CleanVerdict()},
		{"bad words", tier.Silver, guardian.BlockedVerdict("profanity")},
		{"sad", tier.Child, guardian.InterventionVerdict()},
		{"run", tier.Gold, guardian.CleanVerdict()},
	}

	for _, in := range inputs {
		first, err := p.Respond(in.text, in.tier, in.verdict)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := p.Respond(in.text, in.tier, in.verdict)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
		fresh, err := other.Respond(in.text, in.tier, in.verdict)
		require.NoError(t, err)
		assert.Equal(t, first.Text, fresh.Text)
	}
}

func TestRespondRejectsUnresolvedTier(t *testing.T) {
	p := newTestPolicy(t)

	_, err := p.Respond("hello", tier.Unresolved, guardian.CleanVerdict())
	assert.ErrorIs(t, err, ErrTierUnresolved)
}

func TestDecideTable(t *testing.T) {
	cases := []struct {
		text    string
		tier    tier.Tier
		verdict guardian.Verdict
		want    TemplateID
	}{
		{"x", tier.Child, guardian.BlockedVerdict("profanity"), TemplateBlock},
		{"x", tier.Platinum, guardian.BlockedVerdict("profanity"), TemplateBlock},
		{"x", tier.Child, guardian.InterventionVerdict(), TemplateIntervention},
		{"x", tier.Silver, guardian.InterventionVerdict(), TemplateIntervention},
		{"execute X", tier.Child, guardian.CleanVerdict(), TemplateSocratic},
		{"execute X", tier.Silver, guardian.CleanVerdict(), TemplateLaunch},
		{"execute", tier.Gold, guardian.CleanVerdict(), TemplateClarify},
		{"hello", tier.Platinum, guardian.CleanVerdict(), TemplateAcknowledge},
	}

	for _, tc := range cases {
		got, _ := Decide(tc.text, tc.tier, tc.verdict)
		assert.Equal(t, tc.want, got, "%q %s %s", tc.text, tc.tier, tc.verdict)
	}
}
