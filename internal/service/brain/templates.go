package brain

// TemplateID names one reply template.
type TemplateID string

const (
	TemplateBlock        TemplateID = "block"
	TemplateIntervention TemplateID = "intervention"
	TemplateSocratic     TemplateID = "socratic"
	TemplateLaunch       TemplateID = "launch"
	TemplateClarify      TemplateID = "clarify"
	TemplateAcknowledge  TemplateID = "acknowledge"
)

// replyTemplates are eino FString templates. Placeholders: {reason}, {text}, {target}.
var replyTemplates = map[TemplateID]string{
	TemplateBlock:        "[AEGIS BLOCK]: Language Alert ({reason}). Please use kind words.",
	TemplateIntervention: "I notice you seem a bit down. Remember, mistakes mean you are learning! Let's try again. 🦁",
	TemplateSocratic:     "That's a great observation! Why do you think '{text}' happens? (I'm here to help you figure it out!)",
	TemplateLaunch:       "[SYSTEM]: Launching {target}. Stand by while the environment initializes.",
	TemplateClarify:      "[SYSTEM]: Which application should I run? Name it after 'run' or 'execute'.",
	TemplateAcknowledge:  "[SYSTEM]: Processing request: '{text}'. Awaiting further input.",
}

// sampleVars exercises every placeholder when templates are validated at startup.
var sampleVars = map[string]any{
	"reason": "profanity",
	"text":   "sample",
	"target": "Sample",
}
