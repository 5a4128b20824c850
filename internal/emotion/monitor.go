package emotion

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/utils"
)

const defaultInterval = 500 * time.Millisecond

// Snapshot is an immutable reading published by the Monitor.
type Snapshot struct {
	Score    int
	Feedback string
	Emotion  string
	At       time.Time
}

// Monitor samples a Detector in the background and keeps the latest reading.
// The lock only guards copying snapshots in and out, never a detection call.
type Monitor struct {
	detector Detector
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu   sync.Mutex
	snap Snapshot
}

// NewMonitor creates a monitor polling the detector every interval.
func NewMonitor(detector Detector, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Monitor{
		detector: detector,
		interval: interval,
		logger:   logger,
		now:      time.Now,
		snap:     Snapshot{Feedback: FeedbackPending},
	}
}

// Latest returns the most recent snapshot.
func (m *Monitor) Latest() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Run samples until ctx is cancelled or the camera turns out to be
// unavailable. Detection failures degrade to a zero score.
func (m *Monitor) Run(ctx context.Context) {
	if m.detector == nil {
		m.publish(0, FeedbackUnavailable, "")
		m.logger.Info("emotion detection disabled", zap.String("reason", "no detector configured"))
		return
	}

	m.logger.Debug("emotion monitor started", zap.Duration("interval", m.interval))
	defer m.logger.Debug("emotion monitor stopped")

	failures := 0
	for {
		label, err := m.detector.Detect(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, ErrUnavailable):
			m.publish(0, FeedbackUnavailable, "")
			m.logger.Warn("camera is not accessible", zap.Error(err))
			return
		case err != nil:
			failures++
			// one warning per 30 failed frames keeps the log readable
			if failures%30 == 1 {
				m.logger.Warn("emotion detection failed", zap.Error(err), zap.Int("failures", failures))
			}
			m.publish(0, FeedbackUnclear, "")
		default:
			failures = 0
			score, feedback := Score(label)
			m.logger.Debug("detected emotion", zap.String("emotion", label), zap.Int("score", score))
			m.publish(score, feedback, label)
		}

		if err := utils.WaitFor(ctx, m.interval); err != nil {
			return
		}
	}
}

func (m *Monitor) publish(score int, feedback, label string) {
	snap := Snapshot{
		Score:    min(score, 10),
		Feedback: feedback,
		Emotion:  label,
		At:       m.now(),
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
}
