// Package session records answered questions for one interview run and
// persists them as a JSON artifact.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/interview-coach/internal/catalog"
)

const (
	fileTimeLayout    = "2006-01-02_15-04-05"
	summaryTimeLayout = "2006-01-02 15:04:05"
)

// ErrPersisted is returned when a record is added to an already persisted session.
var ErrPersisted = errors.New("session is already persisted")

// Record is one answered question.
type Record struct {
	Question          string           `json:"question" yaml:"question"`
	Category          catalog.Category `json:"type" yaml:"type"`
	Answer            string           `json:"answer" yaml:"answer"`
	Score             int              `json:"score" yaml:"score"`
	Feedback          string           `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	AuxiliaryFeedback string           `json:"camera_feedback" yaml:"camera_feedback"`
}

// Artifact is the persisted form of a session.
type Artifact struct {
	ID                string    `json:"id" yaml:"id"`
	Role              string    `json:"role" yaml:"role"`
	StartTime         time.Time `json:"start_time" yaml:"start_time"`
	TotalScore        int       `json:"total_score" yaml:"total_score"`
	QuestionsAnswered int       `json:"questions_answered" yaml:"questions_answered"`
	Questions         []Record  `json:"questions" yaml:"questions"`
}

// Recorder accumulates records in the order they are added.
type Recorder struct {
	id        string
	role      string
	startedAt time.Time
	records   []Record
	persisted string
}

// Option customizes a Recorder.
type Option func(*Recorder)

// WithClock overrides the start time source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.startedAt = now()
		}
	}
}

// WithID overrides the generated session id.
func WithID(id string) Option {
	return func(r *Recorder) {
		if id = strings.TrimSpace(id); id != "" {
			r.id = id
		}
	}
}

// New starts a session for the role.
func New(role string, opts ...Option) *Recorder {
	r := &Recorder{
		id:        uuid.NewString(),
		role:      role,
		startedAt: time.Now(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// AddRecord appends an answered question.
func (r *Recorder) AddRecord(q catalog.Question, answer string, score int, auxiliaryFeedback string) error {
	return r.Add(Record{
		Question:          q.Text,
		Category:          q.Category,
		Answer:            answer,
		Score:             score,
		AuxiliaryFeedback: auxiliaryFeedback,
	})
}

// Add appends a fully populated record.
func (r *Recorder) Add(record Record) error {
	if r.persisted != "" {
		return fmt.Errorf("%w to %s", ErrPersisted, r.persisted)
	}

	r.records = append(r.records, record)
	return nil
}

// TotalScore sums the scores of all records.
func (r *Recorder) TotalScore() int {
	return totalScore(r.records)
}

// Len returns the number of records.
func (r *Recorder) Len() int {
	return len(r.records)
}

// ID returns the session id.
func (r *Recorder) ID() string {
	return r.id
}

// Role returns the interview role.
func (r *Recorder) Role() string {
	return r.role
}

// StartedAt returns the session start time.
func (r *Recorder) StartedAt() time.Time {
	return r.startedAt
}

// Records returns a copy of the records.
func (r *Recorder) Records() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Artifact returns the serializable snapshot of the session.
func (r *Recorder) Artifact() *Artifact {
	return &Artifact{
		ID:                r.id,
		Role:              r.role,
		StartTime:         r.startedAt,
		TotalScore:        r.TotalScore(),
		QuestionsAnswered: len(r.records),
		Questions:         r.Records(),
	}
}

// SummaryText renders the session for humans.
func (r *Recorder) SummaryText() string {
	return r.Artifact().SummaryText()
}

// SummaryText renders the artifact for humans.
func (a *Artifact) SummaryText() string {
	lines := []string{
		fmt.Sprintf("Role: %s", a.Role),
		fmt.Sprintf("Started: %s", a.StartTime.Format(summaryTimeLayout)),
		fmt.Sprintf("Total Score: %d", a.TotalScore),
		"",
	}

	for idx, q := range a.Questions {
		lines = append(lines,
			fmt.Sprintf("Q%d: %s", idx+1, q.Question),
			fmt.Sprintf("Your Answer: %s", q.Answer),
			fmt.Sprintf("Score: %d, Camera: %s", q.Score, q.AuxiliaryFeedback),
		)
		if q.Feedback != "" {
			lines = append(lines, fmt.Sprintf("Feedback: %s", q.Feedback))
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// FileName returns the artifact file name for the session.
func (a *Artifact) FileName() string {
	id := a.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("session_%s_%s.json", a.StartTime.Format(fileTimeLayout), id)
}

func totalScore(records []Record) int {
	total := 0
	for _, rec := range records {
		total += rec.Score
	}
	return total
}
