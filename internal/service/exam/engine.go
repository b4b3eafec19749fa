// Package exam runs the cloze exam over mastered items: idle, testing, results.
package exam

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/samber/lo"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/cloze"
	"github.com/heartmarshall/notas/pkg/ctxutil"
)

// Phase is the exam lifecycle state.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseTesting Phase = "testing"
	PhaseResults Phase = "results"
)

func (p Phase) String() string { return string(p) }

// Config holds the exam pacing.
type Config struct {
	Size         int
	AdvanceDelay time.Duration
}

type catalogReader interface {
	Resolve(ids []domain.ItemID) []domain.Item
}

// Engine is safe for concurrent use: UI calls and the advance timer are
// serialized by its mutex. OnChange runs after every change the timer makes,
// without the lock held.
type Engine struct {
	items    catalogReader
	clock    clockwork.Clock
	rng      *rand.Rand
	cfg      Config
	log      *slog.Logger
	onChange func()

	mu        sync.Mutex
	phase     Phase
	attemptID uuid.UUID
	questions []domain.Item
	clozes    []cloze.Result
	current   int
	answers   []Answer
	revealed  bool
	succeeded bool
	gen       uint64
	timer     clockwork.Timer
}

// NewEngine creates an idle engine. onChange may be nil.
func NewEngine(
	log *slog.Logger,
	items catalogReader,
	clock clockwork.Clock,
	rng *rand.Rand,
	cfg Config,
	onChange func(),
) *Engine {
	if onChange == nil {
		onChange = func() {}
	}
	return &Engine{
		items:    items,
		clock:    clock,
		rng:      rng,
		cfg:      cfg,
		log:      log.With("service", "exam"),
		onChange: onChange,
		phase:    PhaseIdle,
	}
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Start draws a new exam from mastered. It is valid only while idle.
// Returns domain.ErrEmptyPool when no mastered id resolves to a catalog item.
func (e *Engine) Start(ctx context.Context, mastered domain.IDSet) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseIdle {
		return fmt.Errorf("start exam in %s: %w", e.phase, domain.ErrInvalidPhase)
	}
	return e.drawLocked(ctx, mastered)
}

// StartAgain re-enters testing with a fresh draw. It is offered only from
// results with at least one wrong answer.
func (e *Engine) StartAgain(ctx context.Context, mastered domain.IDSet) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseResults || e.scoreLocked() >= len(e.questions) {
		return fmt.Errorf("start exam again in %s: %w", e.phase, domain.ErrInvalidPhase)
	}
	return e.drawLocked(ctx, mastered)
}

// Restart discards the attempt and returns to idle. Pending advances are dropped.
func (e *Engine) Restart() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
	e.phase = PhaseIdle
}

// Submit checks input against the current question.
// Blank input, a visible reveal or a pending success advance are ignored.
// Outside testing the call is ignored and domain.ErrInvalidPhase returned.
func (e *Engine) Submit(ctx context.Context, input string) (Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseTesting {
		return OutcomeIgnored, fmt.Errorf("submit in %s: %w", e.phase, domain.ErrInvalidPhase)
	}
	if strings.TrimSpace(input) == "" || e.revealed || e.succeeded {
		return OutcomeIgnored, nil
	}

	item := e.questions[e.current]
	result := e.clozes[e.current]
	correct := result.Accepts(input)
	e.answers = append(e.answers, Answer{
		Item:       item,
		UserAnswer: input,
		Correct:    correct,
		Accepted:   append([]string(nil), result.Answers...),
	})

	e.log.DebugContext(ctx, "exam answer",
		slog.String("attempt_id", e.attemptID.String()),
		slog.String("item_id", item.ID.String()),
		slog.Bool("correct", correct),
	)

	if !correct {
		e.revealed = true
		return OutcomeWrong, nil
	}

	e.succeeded = true
	e.gen++
	gen := e.gen
	e.timer = e.clock.AfterFunc(e.cfg.AdvanceDelay, func() {
		e.advanceIfCurrent(ctx, gen)
	})
	return OutcomeCorrect, nil
}

// Next leaves a revealed wrong answer for the next question or the results.
func (e *Engine) Next(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseTesting || !e.revealed {
		return fmt.Errorf("next question: %w", domain.ErrInvalidPhase)
	}
	e.advanceLocked(ctx)
	return nil
}

// Snapshot returns a consistent view of the engine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Phase:   e.phase,
		Summary: e.summaryLocked(),
	}
	if e.phase == PhaseTesting {
		q := e.questionLocked()
		s.Question = &q
	}
	return s
}

// Results returns the log so far, with score and total.
func (e *Engine) Results() Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

func (e *Engine) drawLocked(ctx context.Context, mastered domain.IDSet) error {
	resolved := e.items.Resolve(mastered.IDs())
	if len(resolved) == 0 {
		return fmt.Errorf("start exam: %w", domain.ErrEmptyPool)
	}

	pool := lo.Filter(resolved, func(it domain.Item, _ int) bool {
		return it.HasExamples()
	})
	if len(pool) == 0 {
		pool = resolved
	}

	e.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	questions := pool[:min(e.cfg.Size, len(pool))]

	e.resetLocked()
	e.phase = PhaseTesting
	e.attemptID = uuid.New()
	e.questions = questions
	e.clozes = lo.Map(questions, func(it domain.Item, _ int) cloze.Result {
		return cloze.ForItem(it)
	})

	ctx = ctxutil.WithAttemptID(ctx, e.attemptID)
	e.log.InfoContext(ctx, "exam started",
		append(ctxutil.LogAttrs(ctx),
			slog.Int("questions", len(questions)),
			slog.Int("mastered", mastered.Len()),
			slog.Int("eligible", len(pool)),
		)...,
	)
	return nil
}

// resetLocked drops the attempt and invalidates any pending timer.
func (e *Engine) resetLocked() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	e.attemptID = uuid.Nil
	e.questions = nil
	e.clozes = nil
	e.current = 0
	e.answers = nil
	e.revealed = false
	e.succeeded = false
}

func (e *Engine) advanceIfCurrent(ctx context.Context, gen uint64) {
	e.mu.Lock()
	if gen != e.gen || e.phase != PhaseTesting {
		e.mu.Unlock()
		return
	}
	e.advanceLocked(ctx)
	e.mu.Unlock()

	e.onChange()
}

// advanceLocked moves past the current question. The answer for it is already
// in the log, so results always see a complete log.
func (e *Engine) advanceLocked(ctx context.Context) {
	e.gen++
	e.timer = nil
	e.revealed = false
	e.succeeded = false
	e.current++
	if e.current < len(e.questions) {
		return
	}

	e.phase = PhaseResults
	e.log.InfoContext(ctx, "exam finished",
		slog.String("attempt_id", e.attemptID.String()),
		slog.Int("score", e.scoreLocked()),
		slog.Int("total", len(e.questions)),
	)
}

func (e *Engine) scoreLocked() int {
	return lo.CountBy(e.answers, func(a Answer) bool { return a.Correct })
}

func (e *Engine) questionLocked() Question {
	item := e.questions[e.current]
	result := e.clozes[e.current]

	q := Question{
		AttemptID: e.attemptID,
		Item:      item,
		Index:     e.current,
		Total:     len(e.questions),
		Hint:      item.FirstExample().CN,
		Cloze:     result,
		Prompt:    item.Translation,
		Revealed:  e.revealed,
		Succeeded: e.succeeded,
	}
	if result.Cloze != nil {
		q.Prompt = *result.Cloze
	}
	return q
}

func (e *Engine) summaryLocked() Summary {
	score := e.scoreLocked()
	return Summary{
		AttemptID:     e.attemptID,
		Score:         score,
		Total:         len(e.questions),
		Answers:       append([]Answer(nil), e.answers...),
		CanStartAgain: e.phase == PhaseResults && score < len(e.questions),
	}
}
