// Package agent serves interview questions for a role without repetition.
package agent

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/spigell/interview-coach/internal/catalog"
)

// ErrInvalidMaxQuestions is returned when the requested question cap is not positive.
var ErrInvalidMaxQuestions = errors.New("max questions must be positive")

// Agent selects questions at random from the active pool until the cap is
// reached or the pool runs out. It is not safe for concurrent use; a single
// interview flow owns it.
type Agent struct {
	role          string
	roleQuestions []catalog.Question
	custom        []catalog.Question
	useCustom     bool

	maxQuestions int
	served       []catalog.Question
	servedSet    map[catalog.Question]struct{}

	rnd *rand.Rand
}

// Option customizes an Agent.
type Option func(*Agent)

// WithRand sets the random source used for selection.
func WithRand(rnd *rand.Rand) Option {
	return func(a *Agent) {
		if rnd != nil {
			a.rnd = rnd
		}
	}
}

// Summary is a read-only snapshot of the agent progress.
type Summary struct {
	Role            string
	MaxQuestions    int
	Served          int
	ServedQuestions []catalog.Question
	Custom          bool
}

// New creates an agent for the role. The effective cap is the smaller of
// maxQuestions and the number of questions the role has.
func New(cat *catalog.Catalog, role string, maxQuestions int, opts ...Option) (*Agent, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: catalog is required", catalog.ErrInvalidCatalog)
	}

	if maxQuestions <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxQuestions, maxQuestions)
	}

	questions, err := cat.Questions(role)
	if err != nil {
		return nil, err
	}

	a := &Agent{
		role:          role,
		roleQuestions: questions,
		maxQuestions:  min(maxQuestions, len(questions)),
		servedSet:     make(map[catalog.Question]struct{}),
		rnd:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// LoadCustomQuestions replaces the active pool with questions and resets
// progress. Empty input is ignored. Questions without a category are
// treated as definition questions.
func (a *Agent) LoadCustomQuestions(questions []catalog.Question) {
	if len(questions) == 0 {
		return
	}

	pool := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		pool = append(pool, catalog.NewQuestion(q.Text, q.Category))
	}

	a.custom = pool
	a.useCustom = true
	a.maxQuestions = min(a.maxQuestions, len(pool))
	a.ResetSession()
}

// DisableCustomQuestions switches back to the role catalog and resets
// progress. The cap lowered by LoadCustomQuestions is kept.
func (a *Agent) DisableCustomQuestions() {
	a.useCustom = false
	a.ResetSession()
}

// Next returns a random question that has not been served yet. The boolean
// is false when the cap is reached or the pool is exhausted; state is left
// untouched in that case.
func (a *Agent) Next() (catalog.Question, bool) {
	if len(a.served) >= a.maxQuestions {
		return catalog.Question{}, false
	}

	remaining := a.remaining()
	if len(remaining) == 0 {
		return catalog.Question{}, false
	}

	q := remaining[a.rnd.IntN(len(remaining))]
	a.servedSet[q] = struct{}{}
	a.served = append(a.served, q)

	return q, true
}

// HasMore reports whether Next would return a question: the cap has not
// been reached and the active pool still has unserved entries.
func (a *Agent) HasMore() bool {
	return len(a.served) < a.maxQuestions && len(a.remaining()) > 0
}

// ResetSession forgets the served questions. Mode, pool and cap stay as is.
func (a *Agent) ResetSession() {
	a.served = nil
	a.servedSet = make(map[catalog.Question]struct{})
}

// Summary returns a snapshot of the current progress.
func (a *Agent) Summary() Summary {
	served := make([]catalog.Question, len(a.served))
	copy(served, a.served)

	return Summary{
		Role:            a.role,
		MaxQuestions:    a.maxQuestions,
		Served:          len(a.served),
		ServedQuestions: served,
		Custom:          a.useCustom,
	}
}

// Role returns the role the agent was created for.
func (a *Agent) Role() string {
	return a.role
}

// MaxQuestions returns the effective cap.
func (a *Agent) MaxQuestions() int {
	return a.maxQuestions
}

// Custom reports whether the custom pool is active.
func (a *Agent) Custom() bool {
	return a.useCustom
}

func (a *Agent) pool() []catalog.Question {
	if a.useCustom {
		return a.custom
	}
	return a.roleQuestions
}

func (a *Agent) remaining() []catalog.Question {
	pool := a.pool()
	remaining := make([]catalog.Question, 0, len(pool))
	for _, q := range pool {
		if _, ok := a.servedSet[q]; ok {
			continue
		}
		remaining = append(remaining, q)
	}
	return remaining
}
