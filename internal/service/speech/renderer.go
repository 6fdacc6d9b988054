// Package speech renders assistant replies as audio.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zhouzirui/papi/backend/internal/model/speech"
)

// ErrRenderFailed wraps every synthesis failure surfaced by Renderer.
var ErrRenderFailed = errors.New("audio render failed")

const (
	defaultLanguage = "en"
	defaultTimeout  = 8 * time.Second
	maxRetries      = 1
)

// Synthesizer turns text into audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, req *speech.TTSRequest) (*speech.TTSResponse, error)
}

// Audio is a rendered clip.
type Audio struct {
	Data   []byte
	Format string
}

// RendererConfig bounds a Renderer.
type RendererConfig struct {
	Language string
	Timeout  time.Duration
	Retries  int
}

// Renderer calls a Synthesizer with a fixed language code, a per-attempt
// timeout and at most one retry.
type Renderer struct {
	synth    Synthesizer
	language string
	timeout  time.Duration
	retries  int
	logger   *zap.Logger
}

// NewRenderer applies defaults and clamps retries to [0, 1].
func NewRenderer(synth Synthesizer, cfg RendererConfig, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	language := strings.TrimSpace(cfg.Language)
	if language == "" {
		language = defaultLanguage
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}
	if retries > maxRetries {
		retries = maxRetries
	}

	return &Renderer{synth: synth, language: language, timeout: timeout, retries: retries, logger: logger}
}

// Language is the code every clip is rendered in.
func (r *Renderer) Language() string { return r.language }

// Render synthesizes text. Errors wrap ErrRenderFailed; callers degrade to text only.
func (r *Renderer) Render(ctx context.Context, sessionID, text string) (Audio, error) {
	if strings.TrimSpace(text) == "" {
		return Audio{}, fmt.Errorf("%w: %w", ErrRenderFailed, ErrEmptyText)
	}

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		audio, err := r.attempt(ctx, sessionID, text)
		if err == nil {
			return audio, nil
		}
		lastErr = err

		if ctx.Err() != nil || !retryable(err) {
			break
		}
		if attempt < r.retries {
			r.logger.Warn("audio render attempt failed, retrying", zap.String("session", sessionID), zap.Int("attempt", attempt+1), zap.Error(err))
		}
	}

	return Audio{}, fmt.Errorf("%w: %w", ErrRenderFailed, lastErr)
}

func (r *Renderer) attempt(ctx context.Context, sessionID, text string) (Audio, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.synth.Synthesize(attemptCtx, &speech.TTSRequest{
		SessionID: sessionID,
		Text:      text,
		Format:    defaultFormat,
		Language:  r.language,
	})
	if err != nil {
		return Audio{}, err
	}
	if resp == nil || len(resp.AudioData) == 0 {
		return Audio{}, ErrEmptyAudio
	}

	format := resp.Format
	if format == "" {
		format = defaultFormat
	}
	return Audio{Data: resp.AudioData, Format: format}, nil
}

func retryable(err error) bool {
	return !errors.Is(err, ErrCredentialsMissing) && !errors.Is(err, ErrEmptyText)
}
