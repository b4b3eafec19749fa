package session

//go:generate moq -out speaker_mock_test.go -pkg session . speaker
//go:generate moq -out cue_player_mock_test.go -pkg session . cuePlayer

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/notas/internal/adapter/memory"
	"github.com/heartmarshall/notas/internal/catalog"
	"github.com/heartmarshall/notas/internal/domain"
	"github.com/heartmarshall/notas/internal/service/exam"
	"github.com/heartmarshall/notas/internal/service/persistence"
	"github.com/heartmarshall/notas/internal/service/quiz"
)

const advanceDelay = time.Second

func testItems() []domain.Item {
	mk := func(id, word string, level domain.Level, examples ...domain.Example) domain.Item {
		return domain.Item{ID: domain.ItemID(id), Word: word, Translation: "译" + word, Level: level, Examples: examples}
	}
	return []domain.Item{
		mk("a", "amigo", domain.LevelA1, domain.Example{PT: "O meu amigo chegou.", CN: "我的朋友到了。"}),
		mk("b", "bola", domain.LevelA1),
		mk("c", "casa", domain.LevelA1, domain.Example{PT: "A casa é grande.", CN: "房子很大。"}),
		mk("d", "dia", domain.LevelA1),
		mk("e", "escola", domain.LevelB1, domain.Example{PT: "Vou à escola.", CN: "我去学校。"}),
		mk("f", "festa", domain.LevelB1),
		mk("g", "gato", domain.LevelB1),
		mk("h", "hora", domain.LevelB1),
	}
}

type fixture struct {
	c      *Coordinator
	kv     *memory.Store
	clock  *clockwork.FakeClock
	speech *speakerMock
	cues   *cuePlayerMock
	ctx    context.Context
}

// newFixture opens a coordinator over a memory store seeded with entries.
func newFixture(t *testing.T, seed map[string]string) fixture {
	t.Helper()
	log := slog.Default()

	store, err := catalog.New(testItems())
	require.NoError(t, err)

	kv := memory.New()
	for k, v := range seed {
		require.NoError(t, kv.Set(context.Background(), k, v))
	}

	clock := clockwork.NewFakeClock()
	speech := &speakerMock{SpeakFunc: func(context.Context, string) error { return nil }}
	cues := &cuePlayerMock{
		PlaySuccessFunc: func(context.Context) error { return nil },
		PlayErrorFunc:   func(context.Context) error { return nil },
	}

	var c *Coordinator
	engine := exam.NewEngine(log, store, clock, quiz.NewRand(5), exam.Config{Size: 10, AdvanceDelay: 700 * time.Millisecond}, func() {
		c.Notify()
	})
	c = NewCoordinator(
		log,
		store,
		persistence.NewService(log, kv),
		quiz.NewGenerator(store, 4, quiz.NewRand(9)),
		engine,
		speech,
		cues,
		clock,
		Config{AdvanceDelay: advanceDelay, InitialLevel: domain.LevelA1},
	)
	ctx := c.Open(context.Background())
	c.Wait()
	t.Cleanup(c.Close)

	return fixture{c: c, kv: kv, clock: clock, speech: speech, cues: cues, ctx: ctx}
}

func (f fixture) stored(t *testing.T, key string) string {
	t.Helper()
	v, err := f.kv.Get(context.Background(), key)
	require.NoError(t, err)
	return v
}

func (f fixture) currentID(t *testing.T) domain.ItemID {
	t.Helper()
	v := f.c.Snapshot()
	require.NotNil(t, v.Item)
	return v.Item.ID
}

// answerCurrent picks the correct option and fires the advance timer.
func (f fixture) answerCurrent(t *testing.T) {
	t.Helper()
	before := f.currentID(t)
	writes := f.kv.Writes()

	require.Equal(t, quiz.OutcomeCorrect, f.c.PickChoice(f.ctx, before))
	f.clock.Advance(advanceDelay)
	require.Eventually(t, func() bool { return f.kv.Writes() > writes }, time.Second, 5*time.Millisecond)
}

func TestOpen_Defaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	v := f.c.Snapshot()
	assert.Equal(t, domain.ModeLearn, v.Mode)
	assert.Equal(t, domain.LevelA1, v.Level)
	require.NotNil(t, v.Item)
	assert.Equal(t, domain.ItemID("a"), v.Item.ID)
	assert.Equal(t, 4, v.Total)
	assert.InDelta(t, 2.0, v.Progress, 1e-9)
	assert.Equal(t, domain.NoFeedback(), v.Feedback)
	assert.NotEqual(t, "", v.SessionID.String())

	require.Len(t, v.Choices, 4)
	hits := 0
	for _, ch := range v.Choices {
		if ch.ID == "a" {
			hits++
		}
	}
	assert.Equal(t, 1, hits)

	calls := f.speech.SpeakCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "amigo", calls[0].Text)
}

func TestLearn_SkipForwardAndWrap(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		persistence.KeyMastered:               `["a","b"]`,
		persistence.CursorKey(domain.LevelA1): "0",
	})

	assert.Equal(t, domain.ItemID("c"), f.currentID(t))
	assert.Equal(t, 2, f.c.StoredIndex(domain.LevelA1))

	f.answerCurrent(t)
	assert.Equal(t, "3", f.stored(t, persistence.CursorKey(domain.LevelA1)))
	assert.Equal(t, domain.ItemID("d"), f.currentID(t))

	f.answerCurrent(t)
	assert.Equal(t, "0", f.stored(t, persistence.CursorKey(domain.LevelA1)))
	assert.Equal(t, domain.ItemID("c"), f.currentID(t))
	assert.Equal(t, domain.NoFeedback(), f.c.Snapshot().Feedback)
}

func TestLearn_WrongPicksKeepChoices(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	v := f.c.Snapshot()
	var wrong []domain.ItemID
	for _, ch := range v.Choices {
		if ch.ID != v.Item.ID {
			wrong = append(wrong, ch.ID)
		}
	}
	require.Len(t, wrong, 3)

	assert.Equal(t, quiz.OutcomeWrong, f.c.PickChoice(f.ctx, wrong[0]))
	assert.True(t, f.c.Snapshot().Feedback.IsWrongPick(wrong[0]))

	assert.Equal(t, quiz.OutcomeWrong, f.c.PickChoice(f.ctx, wrong[1]))
	after := f.c.Snapshot()
	assert.True(t, after.Feedback.IsWrongPick(wrong[1]))
	assert.Equal(t, v.Choices, after.Choices)

	assert.Equal(t, quiz.OutcomeCorrect, f.c.PickChoice(f.ctx, v.Item.ID))
	assert.True(t, f.c.Snapshot().Feedback.IsCorrect())
	assert.Equal(t, quiz.OutcomeIgnored, f.c.PickChoice(f.ctx, wrong[2]))

	f.c.Wait()
	assert.Len(t, f.cues.PlayErrorCalls(), 2)
	assert.Len(t, f.cues.PlaySuccessCalls(), 1)
}

func TestLearn_PickOutsideOptionsIgnored(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	assert.Equal(t, quiz.OutcomeIgnored, f.c.PickChoice(f.ctx, "not-an-option"))
	assert.Equal(t, domain.NoFeedback(), f.c.Snapshot().Feedback)
}

func TestLearn_AdvanceRegeneratesAndSpeaks(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	f.answerCurrent(t)
	require.Eventually(t, func() bool { return len(f.speech.SpeakCalls()) == 2 }, time.Second, 5*time.Millisecond)

	calls := f.speech.SpeakCalls()
	assert.Equal(t, domain.ItemID("b"), f.currentID(t))
	assert.Equal(t, "bola", calls[1].Text)
	assert.Contains(t, choiceIDs(f.c.Snapshot().Choices), domain.ItemID("b"))
}

func TestLearn_LevelChangeSuppressesPendingAdvance(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	require.Equal(t, quiz.OutcomeCorrect, f.c.PickChoice(f.ctx, f.currentID(t)))
	require.NoError(t, f.c.ChangeLevel(f.ctx, domain.LevelB1))

	f.clock.Advance(advanceDelay)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, f.c.StoredIndex(domain.LevelA1))
	assert.Equal(t, "0", f.stored(t, persistence.CursorKey(domain.LevelA1)))
	assert.Equal(t, domain.ItemID("e"), f.currentID(t))
	assert.Equal(t, domain.NoFeedback(), f.c.Snapshot().Feedback)
}

func TestLearn_ModeChangeSuppressesPendingAdvance(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	require.Equal(t, quiz.OutcomeCorrect, f.c.PickChoice(f.ctx, f.currentID(t)))
	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeFavorites))

	f.clock.Advance(advanceDelay)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 0, f.c.StoredIndex(domain.LevelA1))
	_, err := f.kv.Get(context.Background(), persistence.CursorKey(domain.LevelA1))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Picks are ignored outside learn.
	assert.Equal(t, quiz.OutcomeIgnored, f.c.PickChoice(f.ctx, f.currentID(t)))

	// Re-entering learn draws fresh options and speaks the item again.
	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeLearn))
	f.c.Wait()
	assert.Equal(t, domain.NoFeedback(), f.c.Snapshot().Feedback)
	assert.Len(t, f.speech.SpeakCalls(), 2)
}

func TestChangeLevel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		persistence.KeyMastered:               `["f"]`,
		persistence.CursorKey(domain.LevelB1): "1",
	})

	writes := f.kv.Writes()
	require.NoError(t, f.c.ChangeLevel(f.ctx, domain.LevelA1))
	assert.Equal(t, writes, f.kv.Writes(), "same level is a no-op")

	require.NoError(t, f.c.ChangeLevel(f.ctx, domain.LevelB1))
	assert.Equal(t, "0", f.stored(t, persistence.CursorKey(domain.LevelA1)))
	// Stored 1 points at the mastered "f": the display skips to "g".
	assert.Equal(t, domain.ItemID("g"), f.currentID(t))
	assert.Equal(t, 2, f.c.StoredIndex(domain.LevelB1))

	err := f.c.ChangeLevel(f.ctx, "Z9")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestChangeLevel_EmptyLevel(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	require.NoError(t, f.c.ChangeLevel(f.ctx, domain.LevelC2))
	v := f.c.Snapshot()
	assert.Nil(t, v.Item)
	assert.Empty(t, v.Choices)
	assert.Equal(t, 0, v.Total)
	assert.InDelta(t, 2.0, v.Progress, 1e-9)
	assert.Equal(t, quiz.OutcomeIgnored, f.c.PickChoice(f.ctx, "a"))
}

func TestToggle_Idempotence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{persistence.KeyMastered: `["c"]`})

	before := f.c.Mastered()
	on, err := f.c.ToggleMastered(f.ctx, "e")
	require.NoError(t, err)
	assert.True(t, on)
	assert.Equal(t, `["c","e"]`, f.stored(t, persistence.KeyMastered))

	on, err = f.c.ToggleMastered(f.ctx, "e")
	require.NoError(t, err)
	assert.False(t, on)
	assert.True(t, before.Equal(f.c.Mastered()))
	assert.Equal(t, `["c"]`, f.stored(t, persistence.KeyMastered))

	favBefore := f.c.Favorites()
	_, err = f.c.ToggleFavorite(f.ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, `["b"]`, f.stored(t, persistence.KeyFavorites))
	_, err = f.c.ToggleFavorite(f.ctx, "b")
	require.NoError(t, err)
	assert.True(t, favBefore.Equal(f.c.Favorites()))
	assert.Equal(t, `[]`, f.stored(t, persistence.KeyFavorites))
}

func TestToggle_UnknownID(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	_, err := f.c.ToggleMastered(f.ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.c.ToggleFavorite(f.ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, f.c.Mastered().Len())
}

func TestToggleMastered_CurrentItemMovesOn(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	require.Equal(t, domain.ItemID("a"), f.currentID(t))

	_, err := f.c.ToggleMastered(f.ctx, "a")
	require.NoError(t, err)

	v := f.c.Snapshot()
	assert.Equal(t, domain.ItemID("b"), v.Item.ID)
	assert.Contains(t, choiceIDs(v.Choices), domain.ItemID("b"))
	assert.Equal(t, 1, v.MasteredCount)
}

func TestToggle_WriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.kv.FailWrites(errors.New("read-only"))

	on, err := f.c.ToggleFavorite(f.ctx, "d")
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, f.c.Favorites().Contains("d"))
}

func TestSnapshot_SkipsDanglingIDs(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{
		persistence.KeyFavorites: `["zzz","b"]`,
		persistence.KeyMastered:  `["ghost","a"]`,
	})

	v := f.c.Snapshot()
	assert.Equal(t, []domain.ItemID{"b"}, choiceIDs(v.Favorites))
	assert.Equal(t, 1, v.MasteredCount)
	assert.Equal(t, domain.ItemID("b"), v.Item.ID)
}

func TestReadFailureStartsEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.kv.FailReads(errors.New("corrupt"))

	// The incoming cursor cannot be read and falls back to 0.
	require.NoError(t, f.c.ChangeLevel(f.ctx, domain.LevelB1))
	assert.Equal(t, domain.ItemID("e"), f.currentID(t))
}

func TestDetail(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{persistence.KeyFavorites: `["c"]`})

	assert.ErrorIs(t, f.c.OpenDetail(f.ctx, "ghost"), domain.ErrNotFound)

	require.NoError(t, f.c.OpenDetail(f.ctx, "c"))
	v := f.c.Snapshot()
	require.NotNil(t, v.Detail)
	assert.Equal(t, domain.ItemID("c"), v.Detail.Item.ID)
	assert.True(t, v.Detail.Favorite)
	assert.False(t, v.Detail.Mastered)

	_, err := f.c.ToggleMastered(f.ctx, "c")
	require.NoError(t, err)
	assert.True(t, f.c.Snapshot().Detail.Mastered)

	f.c.CloseDetail(f.ctx)
	assert.Nil(t, f.c.Snapshot().Detail)
}

func TestSpeak_FailureIsSwallowed(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)
	f.speech.SpeakFunc = func(context.Context, string) error { return errors.New("no audio device") }

	require.NoError(t, f.c.Speak(f.ctx, "g"))
	f.c.Wait()
	calls := f.speech.SpeakCalls()
	assert.Equal(t, "gato", calls[len(calls)-1].Text)

	assert.ErrorIs(t, f.c.Speak(f.ctx, "ghost"), domain.ErrNotFound)
}

func TestChangeMode_Invalid(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	assert.ErrorIs(t, f.c.ChangeMode(f.ctx, "karaoke"), domain.ErrValidation)
	assert.Equal(t, domain.ModeLearn, f.c.Snapshot().Mode)
}

func TestSubscribe(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	var n atomic.Int32
	unsubscribe := f.c.Subscribe(func() {
		n.Add(1)
		_ = f.c.Snapshot()
	})

	_, err := f.c.ToggleFavorite(f.ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n.Load())

	f.answerCurrent(t)
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, 5*time.Millisecond)

	unsubscribe()
	current := n.Load()
	_, err = f.c.ToggleFavorite(f.ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, current, n.Load())
}

func TestExam_UnmasterFromResults(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{persistence.KeyMastered: `["a","e"]`})

	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeExam))
	assert.Equal(t, exam.PhaseIdle, f.c.Snapshot().Exam.Phase)

	require.NoError(t, f.c.StartExam(f.ctx))
	for range 2 {
		out, err := f.c.SubmitExam(f.ctx, "errado")
		require.NoError(t, err)
		require.Equal(t, exam.OutcomeWrong, out)
		require.NoError(t, f.c.NextExam(f.ctx))
	}

	v := f.c.Snapshot()
	require.Equal(t, exam.PhaseResults, v.Exam.Phase)
	require.Len(t, v.Exam.Summary.Wrong(), 2)
	assert.True(t, v.Exam.Summary.CanStartAgain)

	x := v.Exam.Summary.Wrong()[0].Item.ID
	assert.True(t, f.c.Unmaster(f.ctx, x))
	assert.False(t, f.c.Mastered().Contains(x))
	assert.NotContains(t, f.stored(t, persistence.KeyMastered), `"`+string(x)+`"`)
	assert.False(t, f.c.Unmaster(f.ctx, x))

	f.c.RestartExam(f.ctx)
	require.NoError(t, f.c.StartExam(f.ctx))
	q := f.c.Snapshot().Exam.Question
	require.NotNil(t, q)
	assert.Equal(t, 1, q.Total)
	assert.NotEqual(t, x, q.Item.ID)

	f.c.Wait()
	assert.Len(t, f.cues.PlayErrorCalls(), 2)
}

func TestExam_CorrectAnswerAdvancesAfterDelay(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{persistence.KeyMastered: `["c"]`})

	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeExam))
	require.NoError(t, f.c.StartExam(f.ctx))

	q := f.c.Snapshot().Exam.Question
	require.NotNil(t, q)
	assert.Equal(t, "A ________ é grande.", q.Prompt)
	assert.Equal(t, "房子很大。", q.Hint)

	out, err := f.c.SubmitExam(f.ctx, "Casa")
	require.NoError(t, err)
	require.Equal(t, exam.OutcomeCorrect, out)

	f.clock.Advance(700 * time.Millisecond)
	require.Eventually(t, func() bool {
		return f.c.Snapshot().Exam.Phase == exam.PhaseResults
	}, time.Second, 5*time.Millisecond)

	s := f.c.Snapshot().Exam.Summary
	assert.Equal(t, 1, s.Score)
	assert.False(t, s.CanStartAgain)
	assert.ErrorIs(t, f.c.StartExamAgain(f.ctx), domain.ErrInvalidPhase)
}

func TestExam_EmptyPool(t *testing.T) {
	t.Parallel()
	f := newFixture(t, nil)

	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeExam))
	assert.ErrorIs(t, f.c.StartExam(f.ctx), domain.ErrEmptyPool)
	assert.Equal(t, exam.PhaseIdle, f.c.Snapshot().Exam.Phase)
}

func TestExam_LeavingModeDiscardsAttempt(t *testing.T) {
	t.Parallel()
	f := newFixture(t, map[string]string{persistence.KeyMastered: `["a"]`})

	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeExam))
	require.NoError(t, f.c.StartExam(f.ctx))
	require.Equal(t, exam.PhaseTesting, f.c.Snapshot().Exam.Phase)

	require.NoError(t, f.c.ChangeMode(f.ctx, domain.ModeLearn))
	assert.Equal(t, exam.PhaseIdle, f.c.Snapshot().Exam.Phase)
}

func choiceIDs(items []domain.Item) []domain.ItemID {
	out := make([]domain.ItemID, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
