// Package session owns the state of one study session and the callbacks the
// renderer invokes. It is the single owner of the mastered and favorite sets.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/quiz"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type catalogReader interface {
	ByID(id domain.ItemID) (domain.Item, error)
	ByLevel(level domain.Level) []domain.Item
	Resolve(ids []domain.ItemID) []domain.Item
}

type progressStore interface {
	LoadMastered(ctx context.Context) domain.IDSet
	LoadFavorites(ctx context.Context) domain.IDSet
	SaveMastered(ctx context.Context, set domain.IDSet)
	SaveFavorites(ctx context.Context, set domain.IDSet)
	LoadCursor(ctx context.Context, level domain.Level) int
	SaveCursor(ctx context.Context, level domain.Level, idx int)
}

type choiceGenerator interface {
	Choices(target domain.Item) []domain.Item
}

type examEngine interface {
	Start(ctx context.Context, mastered domain.IDSet) error
	StartAgain(ctx context.Context, mastered domain.IDSet) error
	Submit(ctx context.Context, input string) (exam.Outcome, error)
	Next(ctx context.Context) error
	Restart()
	Snapshot() exam.Snapshot
}

type speaker interface {
	Speak(ctx context.Context, text string) error
}

type cuePlayer interface {
	PlaySuccess(ctx context.Context) error
	PlayError(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Coordinator
// ---------------------------------------------------------------------------

// Config holds learn-phase settings.
type Config struct {
	AdvanceDelay time.Duration
	InitialLevel domain.Level
}

// Coordinator serializes every UI action behind one mutex. The learn advance
// timer takes the same mutex and is dropped when the generation moved on.
// Speech and cues run in their own goroutines and never block a caller.
type Coordinator struct {
	items    catalogReader
	store    progressStore
	choices  choiceGenerator
	exam     examEngine
	speech   speaker
	cues     cuePlayer
	clock    clockwork.Clock
	cfg      Config
	log      *slog.Logger
	effectWG sync.WaitGroup

	mu        sync.Mutex
	sessionID uuid.UUID
	opened    bool
	mode      domain.Mode
	level     domain.Level
	stored    map[domain.Level]int
	levelRows []domain.Item
	options   []domain.Item
	round     quiz.Round
	detail    domain.ItemID
	mastered  domain.IDSet
	favorites domain.IDSet
	gen       uint64
	timer     clockwork.Timer

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// NewCoordinator creates a coordinator. Open must be called before use.
func NewCoordinator(
	log *slog.Logger,
	items catalogReader,
	store progressStore,
	choices choiceGenerator,
	engine examEngine,
	speech speaker,
	cues cuePlayer,
	clock clockwork.Clock,
	cfg Config,
) *Coordinator {
	if !cfg.InitialLevel.IsValid() {
		cfg.InitialLevel = domain.LevelA1
	}
	return &Coordinator{
		items:     items,
		store:     store,
		choices:   choices,
		exam:      engine,
		speech:    speech,
		cues:      cues,
		clock:     clock,
		cfg:       cfg,
		log:       log.With("service", "session"),
		mode:      domain.ModeLearn,
		level:     cfg.InitialLevel,
		stored:    make(map[domain.Level]int, len(domain.Levels())),
		listeners: make(map[int]func()),
	}
}

// Subscribe registers fn to run after every state change, including timer
// fires. The returned func removes it. fn runs without the coordinator lock
// and may call Snapshot.
func (c *Coordinator) Subscribe(fn func()) (unsubscribe func()) {
	c.listenersMu.Lock()
	defer c.listenersMu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersMu.Lock()
		defer c.listenersMu.Unlock()
		delete(c.listeners, id)
	}
}

// Notify runs the listeners. The exam engine calls it after its own timer fires.
func (c *Coordinator) Notify() {
	c.listenersMu.Lock()
	fns := make([]func(), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.listenersMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Wait blocks until pending speech and cue playback have returned.
func (c *Coordinator) Wait() {
	c.effectWG.Wait()
}

// Close cancels a pending learn advance and waits for effects to finish.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.cancelAdvanceLocked()
	c.mu.Unlock()
	c.Wait()
}
