package interview

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spigell/interview-coach/internal/agent"
	"github.com/spigell/interview-coach/internal/catalog"
	"github.com/spigell/interview-coach/internal/emotion"
	"github.com/spigell/interview-coach/internal/evaluator"
	"github.com/spigell/interview-coach/internal/history"
	"github.com/spigell/interview-coach/internal/session"
	"github.com/spigell/interview-coach/internal/timer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type scriptedAnswers struct {
	answers []string
	errs    []error
	delay   time.Duration
	prompts []Prompt
	// cancel is called before answering the question with this number.
	cancelAt int
	cancel   context.CancelFunc
}

func (s *scriptedAnswers) Answer(ctx context.Context, p Prompt) (string, error) {
	s.prompts = append(s.prompts, p)
	if s.cancel != nil && p.Number == s.cancelAt {
		s.cancel()
		return "", ctx.Err()
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	i := len(s.prompts) - 1
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if i < len(s.answers) {
		return s.answers[i], err
	}
	return "", err
}

type fixedFeedback string

func (f fixedFeedback) Latest() emotion.Snapshot {
	return emotion.Snapshot{Feedback: string(f)}
}

type recordingIndex struct {
	entries []history.Entry
	err     error
}

func (r *recordingIndex) Record(_ context.Context, e history.Entry) error {
	r.entries = append(r.entries, e)
	return r.err
}

func newAgent(t *testing.T, role string, limit int) *agent.Agent {
	t.Helper()

	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	a, err := agent.New(cat, role, limit, agent.WithRand(rand.New(rand.NewPCG(1, 2))))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func TestRunPersistsEverySession(t *testing.T) {
	dir := t.TempDir()
	answers := &scriptedAnswers{answers: []string{
		"A class groups data and a method operates on it in a program.",
		"   ",
		"for each item print it and return",
	}}
	index := &recordingIndex{}

	r := &Runner{
		Agent:     newAgent(t, "Software Developer", 3),
		Recorder:  session.New("Software Developer", session.WithID("0123456789")),
		Answers:   answers,
		Emotion:   fixedFeedback("You look calm. Try to smile more for confidence."),
		Index:     index,
		OutputDir: dir,
		Logger:    zap.NewNop(),
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Interrupted || result.Late != 0 {
		t.Fatalf("unexpected result flags: %+v", result)
	}

	if len(answers.prompts) != 3 {
		t.Fatalf("expected 3 prompts, got %d", len(answers.prompts))
	}
	for i, p := range answers.prompts {
		if p.Number != i+1 || p.Total != 3 {
			t.Fatalf("unexpected prompt numbering: %+v", p)
		}
		if !p.Deadline.IsZero() {
			t.Fatalf("untimed prompt must have no deadline")
		}
	}

	loaded, err := session.Load(result.Path)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	if loaded.QuestionsAnswered != 3 || len(loaded.Questions) != 3 {
		t.Fatalf("expected 3 records, got %+v", loaded)
	}

	sum := 0
	for i, rec := range loaded.Questions {
		if rec.Question != answers.prompts[i].Question.Text {
			t.Fatalf("record %d out of order", i)
		}
		want := evaluator.Evaluate(rec.Answer, rec.Category)
		if rec.Score != want.Score {
			t.Fatalf("record %d: score %d, want %d", i, rec.Score, want.Score)
		}
		if rec.AuxiliaryFeedback != "You look calm. Try to smile more for confidence." {
			t.Fatalf("unexpected camera feedback %q", rec.AuxiliaryFeedback)
		}
		sum += rec.Score
	}
	if loaded.TotalScore != sum {
		t.Fatalf("total %d does not match sum %d", loaded.TotalScore, sum)
	}
	if loaded.Questions[1].Score != 0 || loaded.Questions[1].Feedback != evaluator.FeedbackNoAnswer {
		t.Fatalf("blank answer must score 0: %+v", loaded.Questions[1])
	}

	if len(index.entries) != 1 || index.entries[0].Path != result.Path || index.entries[0].ID != "0123456789" {
		t.Fatalf("unexpected index entries: %+v", index.entries)
	}
}

func TestRunInterruptedStillPersists(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	answers := &scriptedAnswers{
		answers:  []string{"data and learning"},
		cancelAt: 2,
		cancel:   cancel,
	}
	r := &Runner{
		Agent:     newAgent(t, "AI / ML Beginner", 5),
		Recorder:  session.New("AI / ML Beginner"),
		Answers:   answers,
		OutputDir: t.TempDir(),
	}

	result, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Interrupted {
		t.Fatalf("expected interrupted result")
	}
	if result.Artifact.QuestionsAnswered != 1 {
		t.Fatalf("expected one answered question, got %d", result.Artifact.QuestionsAnswered)
	}
	if result.Artifact.Questions[0].AuxiliaryFeedback != emotion.FeedbackUnavailable {
		t.Fatalf("missing camera must be reported, got %q", result.Artifact.Questions[0].AuxiliaryFeedback)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("artifact must exist: %v", err)
	}
}

func TestRunAnswerErrorDegradesToEmpty(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	answers := &scriptedAnswers{
		answers: []string{"ignored", "class and method"},
		errs:    []error{errors.New("microphone unplugged")},
	}

	r := &Runner{
		Agent:     newAgent(t, "Data Analyst", 2),
		Recorder:  session.New("Data Analyst"),
		Answers:   answers,
		OutputDir: t.TempDir(),
		Logger:    zap.New(core),
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := result.Artifact.Questions[0]
	if first.Answer != "" || first.Score != 0 {
		t.Fatalf("failed answer must be recorded as empty: %+v", first)
	}
	if result.Artifact.Questions[1].Answer != "class and method" {
		t.Fatalf("second answer must be kept: %+v", result.Artifact.Questions[1])
	}
	if observed.FilterMessage("failed to read answer, recording it as empty").Len() != 1 {
		t.Fatalf("expected a warning for the failed answer")
	}
}

func TestRunFlagsLateAnswers(t *testing.T) {
	answers := &scriptedAnswers{
		answers: []string{"object-oriented class"},
		delay:   100 * time.Millisecond,
	}

	r := &Runner{
		Agent:         newAgent(t, "Software Developer", 1),
		Recorder:      session.New("Software Developer"),
		Answers:       answers,
		OutputDir:     t.TempDir(),
		TimeLimit:     2 * time.Second,
		countdownOpts: []timer.Option{timer.WithTick(time.Millisecond)},
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Late != 1 {
		t.Fatalf("expected one late answer, got %d", result.Late)
	}

	rec := result.Artifact.Questions[0]
	if rec.Answer != "object-oriented class" {
		t.Fatalf("late answer must still be recorded: %+v", rec)
	}
	if rec.Score != evaluator.Evaluate(rec.Answer, rec.Category).Score {
		t.Fatalf("late answer must still be scored: %+v", rec)
	}
	if !strings.Contains(rec.Feedback, "after the time limit") {
		t.Fatalf("expected late note in feedback, got %q", rec.Feedback)
	}
	if answers.prompts[0].Deadline.IsZero() {
		t.Fatalf("timed prompt must carry a deadline")
	}
}

func TestRunIndexFailureKeepsArtifact(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	r := &Runner{
		Agent:     newAgent(t, "Data Analyst", 1),
		Recorder:  session.New("Data Analyst"),
		Answers:   &scriptedAnswers{answers: []string{"data"}},
		Index:     &recordingIndex{err: errors.New("database is locked")},
		OutputDir: t.TempDir(),
		Logger:    zap.New(core),
	}

	result, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("index failure must not fail the run: %v", err)
	}
	if _, err := os.Stat(result.Path); err != nil {
		t.Fatalf("artifact must exist: %v", err)
	}
	if observed.FilterMessage("failed to index session").Len() != 1 {
		t.Fatalf("expected index warning")
	}
}

func TestRunPersistFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	r := &Runner{
		Agent:     newAgent(t, "Data Analyst", 1),
		Recorder:  session.New("Data Analyst"),
		Answers:   &scriptedAnswers{answers: []string{"data"}},
		OutputDir: filepath.Join(blocker, "sessions"),
	}

	if _, err := r.Run(context.Background()); err == nil {
		t.Fatal("expected persist error")
	}
	if r.Recorder.Persisted() != "" {
		t.Fatal("failed persist must not mark the session persisted")
	}
}

func TestRunValidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		runner *Runner
	}{
		{name: "no agent", runner: &Runner{Recorder: session.New("x"), Answers: &scriptedAnswers{}, OutputDir: "out"}},
		{name: "no recorder", runner: &Runner{Agent: &agent.Agent{}, Answers: &scriptedAnswers{}, OutputDir: "out"}},
		{name: "no answers", runner: &Runner{Agent: &agent.Agent{}, Recorder: session.New("x"), OutputDir: "out"}},
		{name: "no output dir", runner: &Runner{Agent: &agent.Agent{}, Recorder: session.New("x"), Answers: &scriptedAnswers{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := tt.runner.Run(context.Background()); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCountdownSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit time.Duration
		want  int
	}{
		{limit: 0, want: 0},
		{limit: -time.Second, want: 0},
		{limit: 200 * time.Millisecond, want: 1},
		{limit: time.Second, want: 1},
		{limit: 1500 * time.Millisecond, want: 2},
		{limit: time.Minute, want: 60},
	}

	for _, tt := range tests {
		if got := countdownSeconds(tt.limit); got != tt.want {
			t.Fatalf("countdownSeconds(%s) = %d, want %d", tt.limit, got, tt.want)
		}
	}
}

func TestRunSubSecondLimitIsTimed(t *testing.T) {
	answers := &scriptedAnswers{answers: []string{"data"}}
	r := &Runner{
		Agent:     newAgent(t, "Data Analyst", 1),
		Recorder:  session.New("Data Analyst"),
		Answers:   answers,
		OutputDir: t.TempDir(),
		TimeLimit: 300 * time.Millisecond,
	}

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answers.prompts[0].Deadline.IsZero() {
		t.Fatalf("a sub-second limit must still set a deadline")
	}
}
