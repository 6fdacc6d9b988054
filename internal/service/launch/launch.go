// Package launch produces the cosmetic status sequence shown after a launch
// directive. Nothing is executed.
package launch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrTargetRequired = errors.New("launch target is required")

// DefaultStepDelay paces the sequence when no delay is configured.
const DefaultStepDelay = 600 * time.Millisecond

// Step is one status label in the sequence.
type Step struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Progress int    `json:"progress"`
	Done     bool   `json:"done"`
}

var stepFormats = []string{
	"Verifying clearance for %s",
	"Allocating virtual workspace",
	"Loading %s modules",
	"Initializing environment",
	"%s is running (simulated)",
}

// Sequence returns every status label for target in display order.
func Sequence(target string) ([]Step, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrTargetRequired
	}

	steps := make([]Step, len(stepFormats))
	for i, format := range stepFormats {
		label := format
		if strings.Contains(format, "%s") {
			label = fmt.Sprintf(format, target)
		}
		steps[i] = Step{
			Index:    i,
			Label:    label,
			Progress: (i + 1) * 100 / len(stepFormats),
			Done:     i == len(stepFormats)-1,
		}
	}
	return steps, nil
}

// Simulator emits a sequence step by step.
type Simulator struct {
	delay  time.Duration
	logger *zap.Logger
}

// NewSimulator returns a simulator pausing delay between steps. A negative
// delay falls back to DefaultStepDelay; zero emits without pausing.
func NewSimulator(delay time.Duration, logger *zap.Logger) *Simulator {
	if delay < 0 {
		delay = DefaultStepDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{delay: delay, logger: logger}
}

// Run calls emit for each step until the sequence ends, emit fails or ctx is done.
func (s *Simulator) Run(ctx context.Context, target string, emit func(Step) error) error {
	steps, err := Sequence(target)
	if err != nil {
		return err
	}

	s.logger.Debug("simulated launch started", zap.String("target", strings.TrimSpace(target)))

	var timer *time.Timer
	for i, step := range steps {
		if i > 0 && s.delay > 0 {
			if timer == nil {
				timer = time.NewTimer(s.delay)
				defer timer.Stop()
			} else {
				timer.Reset(s.delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := emit(step); err != nil {
			return fmt.Errorf("emit launch step %d: %w", step.Index, err)
		}
	}
	return nil
}
