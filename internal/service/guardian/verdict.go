package guardian

import "encoding/json"

// Kind classifies a moderation outcome.
type Kind int

const (
	Clean Kind = iota
	Blocked
	Intervention
)

// ReasonProfanity is the block reason for a lexicon hit.
const ReasonProfanity = "profanity"

// Verdict is the moderation outcome for one message. Reason is set only when Blocked.
type Verdict struct {
	Kind   Kind
	Reason string
}

// CleanVerdict lets the message through.
func CleanVerdict() Verdict { return Verdict{Kind: Clean} }

// BlockedVerdict stops the message with reason.
func BlockedVerdict(reason string) Verdict { return Verdict{Kind: Blocked, Reason: reason} }

// InterventionVerdict redirects an emotionally concerning child message.
func InterventionVerdict() Verdict { return Verdict{Kind: Intervention} }

// IsBlocked reports whether the message was stopped.
func (v Verdict) IsBlocked() bool { return v.Kind == Blocked }

func (k Kind) String() string {
	switch k {
	case Blocked:
		return "blocked"
	case Intervention:
		return "intervention"
	default:
		return "clean"
	}
}

func (v Verdict) String() string {
	if v.Kind == Blocked {
		return "blocked(" + v.Reason + ")"
	}
	return v.Kind.String()
}

// MarshalJSON renders {"kind": "...", "reason": "..."}.
func (v Verdict) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   string `json:"kind"`
		Reason string `json:"reason,omitempty"`
	}{Kind: v.Kind.String(), Reason: v.Reason})
}
