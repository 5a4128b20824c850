// Package interview drives one question-answer session from the first
// question to the persisted artifact.
package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/agent"
	"github.com/spigell/interview-coach/internal/catalog"
	"github.com/spigell/interview-coach/internal/emotion"
	"github.com/spigell/interview-coach/internal/evaluator"
	"github.com/spigell/interview-coach/internal/history"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/timer"
	"github.com/spigell/interview-coach/internal/utils"
	"go.uber.org/zap"
)

// Prompt describes the question being asked.
type Prompt struct {
	Question catalog.Question
	Number   int
	Total    int
	// Deadline is zero when answers are not timed.
	Deadline time.Time
}

// AnswerSource collects the candidate's answer to one question.
type AnswerSource interface {
	Answer(ctx context.Context, p Prompt) (string, error)
}

// FeedbackSource provides the latest auxiliary (camera) reading.
type FeedbackSource interface {
	Latest() emotion.Snapshot
}

// Indexer records persisted sessions for later lookup.
type Indexer interface {
	Record(ctx context.Context, e history.Entry) error
}

// EvaluateFunc scores one answer.
type EvaluateFunc func(answer string, category catalog.Category) evaluator.Result

// Result describes a finished run.
type Result struct {
	Artifact *session.Artifact
	Path     string
	// Late counts answers given after the countdown expired.
	Late        int
	Interrupted bool
}

// Runner asks every question the agent serves, scores the answers and
// persists the session.
type Runner struct {
	Agent     *agent.Agent
	Evaluator EvaluateFunc
	Recorder  *session.Recorder
	Answers   AnswerSource
	Emotion   FeedbackSource
	Index     Indexer
	OutputDir string
	TimeLimit time.Duration
	Logger    *zap.Logger

	countdownOpts []timer.Option
	now           func() time.Time
}

// Run loops until the agent has no more questions or ctx is cancelled. The
// answered records are persisted in both cases.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.validate(); err != nil {
		return Result{}, err
	}

	evaluate := r.Evaluator
	if evaluate == nil {
		evaluate = evaluator.Evaluate
	}
	now := r.now
	if now == nil {
		now = time.Now
	}

	log := logger.ForSession(r.Logger, r.Recorder.Role(), r.Recorder.ID())
	total := r.Agent.MaxQuestions()

	log.Info("interview started", zap.Int("questions", total), zap.Duration("time_limit", r.TimeLimit))

	var result Result
	for number := 1; r.Agent.HasMore(); number++ {
		q, ok := r.Agent.Next()
		if !ok {
			break
		}

		log.Debug("asking question", zap.Int("number", number), zap.String("category", string(q.Category)))

		answer, late, err := r.ask(ctx, Prompt{Question: q, Number: number, Total: total}, now, log)
		if err != nil {
			result.Interrupted = true
			log.Warn("interview interrupted", zap.Int("answered", r.Recorder.Len()), zap.Error(err))
			break
		}
		if late {
			result.Late++
		}

		scored := evaluate(answer, q.Category)
		coverage := utils.CheckKeywords(answer, evaluator.Keywords(q.Category))
		aux := emotion.FeedbackUnavailable
		if r.Emotion != nil {
			aux = r.Emotion.Latest().Feedback
		}

		feedback := scored.Feedback
		if late {
			feedback = strings.TrimSpace(feedback + " Answered after the time limit.")
		}

		if err := r.Recorder.Add(session.Record{
			Question:          q.Text,
			Category:          q.Category,
			Answer:            answer,
			Score:             scored.Score,
			Feedback:          feedback,
			AuxiliaryFeedback: aux,
		}); err != nil {
			return result, fmt.Errorf("record answer: %w", err)
		}

		log.Info("answer evaluated",
			zap.Int("number", number),
			zap.Int("score", scored.Score),
			zap.String("feedback", scored.Feedback),
			zap.String("camera_feedback", aux),
			zap.Bool("late", late),
		)
		log.Debug("answer details",
			zap.Int("number", number),
			zap.Int("words", utils.CountWords(answer)),
			zap.Int("keywords_found", coverage.Found),
			zap.Strings("keywords_missing", coverage.Missing),
		)
	}

	path, err := r.Recorder.Persist(r.OutputDir)
	if err != nil {
		return result, fmt.Errorf("persist session: %w", err)
	}

	result.Artifact = r.Recorder.Artifact()
	result.Path = path

	log.Info("session saved",
		zap.String("path", path),
		zap.Int("total_score", result.Artifact.TotalScore),
		zap.Int("answered", result.Artifact.QuestionsAnswered),
	)

	if r.Index != nil {
		// The index is best effort; use a fresh context so an interrupted run
		// is still indexed.
		indexCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.Index.Record(indexCtx, history.EntryFromArtifact(result.Artifact, path)); err != nil {
			log.Warn("failed to index session", zap.String("path", path), zap.Error(err))
		}
	}

	return result, nil
}

// ask collects one answer. The countdown never interrupts the answer source;
// an answer given after it expires is reported as late. Errors other than
// cancellation degrade to an empty answer.
func (r *Runner) ask(ctx context.Context, p Prompt, now func() time.Time, log *zap.Logger) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var countdown *timer.Countdown
	if seconds := countdownSeconds(r.TimeLimit); seconds > 0 {
		p.Deadline = now().Add(r.TimeLimit)
		countdown = timer.New(seconds, r.countdownOpts...)
		countdown.Start(ctx)
		defer countdown.Stop()
	}

	answer, err := r.Answers.Answer(ctx, p)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			return "", false, err
		}
		log.Warn("failed to read answer, recording it as empty", zap.Int("number", p.Number), zap.Error(err))
		answer = ""
	}

	late := countdown != nil && countdown.Expired()
	if late {
		log.Warn("time is up, answer is late", zap.Int("number", p.Number))
	} else if countdown != nil {
		log.Debug("answered in time", zap.Int("number", p.Number), zap.Int("seconds_left", countdown.Remaining()))
	}

	return strings.TrimSpace(answer), late, nil
}

// countdownSeconds rounds the limit up to whole seconds so a sub-second or
// fractional limit is never dropped.
func countdownSeconds(limit time.Duration) int {
	if limit <= 0 {
		return 0
	}
	return int((limit + time.Second - 1) / time.Second)
}

func (r *Runner) validate() error {
	switch {
	case r.Agent == nil:
		return errors.New("interview runner requires an agent")
	case r.Recorder == nil:
		return errors.New("interview runner requires a session recorder")
	case r.Answers == nil:
		return errors.New("interview runner requires an answer source")
	case strings.TrimSpace(r.OutputDir) == "":
		return errors.New("interview runner requires an output directory")
	}
	return nil
}
