package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/quiz"
)

var ctx = context.Background()

func TestNew_Idle(t *testing.T) {
	h := newHarness(t, true)
	snap := h.session.Snapshot()

	assert.Empty(t, snap.Question)
	assert.Empty(t, snap.Answer)
	assert.NotNil(t, snap.Sources)
	assert.Empty(t, snap.History)
	assert.False(t, snap.QuizVisible)
	assert.False(t, snap.ShowScore)
	assert.True(t, snap.MemoryEnabled)
	assert.False(t, snap.Answering)
	assert.False(t, snap.Quizzing)
	assert.True(t, snap.HistoryPanelOpen)
}

func TestAskQuestion_BlankIsNoop(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("first answer"))
	require.NoError(t, h.session.AskQuestion(ctx, "first"))
	before := h.session.Snapshot()

	for _, q := range []string{"", "   ", "\n\t"} {
		require.NoError(t, h.session.AskQuestion(ctx, q))
	}

	answers, _ := h.backend.calls()
	assert.Equal(t, 1, answers)
	assert.Equal(t, before, h.session.Snapshot())
}

func TestAskQuestion_Success(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("Goroutines are lightweight threads.", "go.dev"))

	require.NoError(t, h.session.AskQuestion(ctx, "  What is a goroutine?  "))

	snap := h.session.Snapshot()
	assert.Equal(t, "What is a goroutine?", snap.Question)
	assert.Equal(t, "Goroutines are lightweight threads.", snap.Answer)
	assert.Equal(t, []string{"go.dev"}, snap.Sources)
	assert.False(t, snap.Answering)
	assert.Equal(t, []history.QA{{Question: "What is a goroutine?", Answer: "Goroutines are lightweight threads."}}, snap.History)
	assert.Equal(t, []string{"What is a goroutine?"}, h.backend.answerCalls)
}

func TestAskQuestion_Failure(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("earlier", "src"))
	require.NoError(t, h.session.AskQuestion(ctx, "earlier"))

	boom := errors.New("connection refused")
	h.withAnswer(reply{err: boom})
	err := h.session.AskQuestion(ctx, "What is a channel?")
	assert.ErrorIs(t, err, boom)

	snap := h.session.Snapshot()
	assert.Equal(t, FallbackAnswer, snap.Answer)
	assert.Empty(t, snap.Sources)
	assert.False(t, snap.Answering)
	assert.Len(t, snap.History, 1, "failed answers are not recorded")
}

func TestAskQuestion_MemoryDisabled(t *testing.T) {
	h := newHarness(t, false)
	h.withAnswer(ok("a1")).withAnswer(ok("a2"))

	require.NoError(t, h.session.AskQuestion(ctx, "q1"))
	require.NoError(t, h.session.AskQuestion(ctx, "q2"))

	snap := h.session.Snapshot()
	assert.Equal(t, "a2", snap.Answer)
	assert.Empty(t, snap.History)

	_, present, err := h.storage.Get(ctx, history.StorageKey)
	require.NoError(t, err)
	assert.False(t, present, "nothing is written while memory is off")
}

func TestAskQuestion_MemoryCapturedAtInvocation(t *testing.T) {
	h := newHarness(t, true)
	r := gated(ok("answer"))
	h.withAnswer(r)

	done := make(chan error, 1)
	go func() { done <- h.session.AskQuestion(ctx, "q") }()
	<-r.started

	h.session.SetMemoryEnabled(false)
	close(r.release)
	require.NoError(t, <-done)

	assert.Len(t, h.session.Snapshot().History, 1)
}

func TestAskQuestion_HistoryWriteFailureKeepsAnswer(t *testing.T) {
	h := newHarness(t, true)
	h.storage.failSet = true
	h.withAnswer(ok("answer"))

	require.NoError(t, h.session.AskQuestion(ctx, "q"))

	snap := h.session.Snapshot()
	assert.Equal(t, "answer", snap.Answer)
	assert.Len(t, snap.History, 1)
}

func TestAskQuestion_ClearsQuizBeforeAnswer(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("first")).withQuiz(quizReply(sampleItems()...))
	require.NoError(t, h.session.AskQuestion(ctx, "q1"))
	require.NoError(t, h.session.GenerateQuiz(ctx))
	require.NoError(t, h.session.SelectOption(0, "A. go"))
	require.NoError(t, h.session.CheckAnswer(0))
	require.True(t, h.session.Snapshot().QuizVisible)

	r := gated(ok("second"))
	h.withAnswer(r)
	done := make(chan error, 1)
	go func() { done <- h.session.AskQuestion(ctx, "q2") }()
	<-r.started

	mid := h.session.Snapshot()
	assert.True(t, mid.Answering)
	assert.Empty(t, mid.Answer)
	assert.Empty(t, mid.Sources)
	assert.False(t, mid.QuizVisible)
	assert.Empty(t, mid.Quiz)
	assert.Equal(t, 0, mid.Score)

	close(r.release)
	require.NoError(t, <-done)
	assert.Equal(t, "second", h.session.Snapshot().Answer)
}

func TestAskQuestion_StaleCompletionDiscarded(t *testing.T) {
	h := newHarness(t, true)
	slow := gated(ok("slow answer"))
	fast := gated(ok("fast answer"))
	h.withAnswer(slow).withAnswer(fast)

	slowDone := make(chan error, 1)
	go func() { slowDone <- h.session.AskQuestion(ctx, "slow") }()
	<-slow.started

	fastDone := make(chan error, 1)
	go func() { fastDone <- h.session.AskQuestion(ctx, "fast") }()
	<-fast.started

	// The older request finishing must not clear the newer one's flag.
	close(slow.release)
	assert.ErrorIs(t, <-slowDone, ErrSuperseded)
	assert.True(t, h.session.Snapshot().Answering)
	assert.Empty(t, h.session.Snapshot().Answer)

	close(fast.release)
	require.NoError(t, <-fastDone)

	snap := h.session.Snapshot()
	assert.Equal(t, "fast", snap.Question)
	assert.Equal(t, "fast answer", snap.Answer)
	assert.False(t, snap.Answering)
	assert.Equal(t, []history.QA{{Question: "fast", Answer: "fast answer"}}, snap.History)
}

func TestGenerateQuiz_WithoutAnswerIsNoop(t *testing.T) {
	h := newHarness(t, true)
	require.NoError(t, h.session.GenerateQuiz(ctx))

	_, quizzes := h.backend.calls()
	assert.Equal(t, 0, quizzes)
	assert.False(t, h.session.Snapshot().Quizzing)
}

func TestGenerateQuiz_Success(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("Goroutines and channels.")).withQuiz(quizReply(sampleItems()...))
	require.NoError(t, h.session.AskQuestion(ctx, "concurrency?"))

	require.NoError(t, h.session.GenerateQuiz(ctx))

	snap := h.session.Snapshot()
	assert.Equal(t, []string{"Goroutines and channels."}, h.backend.quizCalls)
	assert.True(t, snap.QuizVisible)
	assert.False(t, snap.Quizzing)
	assert.False(t, snap.ShowScore)
	require.Len(t, snap.Quiz, 3)
	for _, item := range snap.Quiz {
		assert.False(t, item.Selected)
		assert.False(t, item.Checked)
	}
}

func TestGenerateQuiz_FailureAndEmptyDegrade(t *testing.T) {
	tests := []struct {
		name string
		r    reply
		err  bool
	}{
		{"backend error", reply{err: errors.New("500")}, true},
		{"invalid payload", reply{err: &quiz.ErrInvalidPayload{Err: errors.New("not an array")}}, true},
		{"empty quiz", quizReply(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, true)
			h.withAnswer(ok("text")).withQuiz(tt.r)
			require.NoError(t, h.session.AskQuestion(ctx, "q"))

			err := h.session.GenerateQuiz(ctx)
			assert.Equal(t, tt.err, err != nil)

			snap := h.session.Snapshot()
			assert.False(t, snap.QuizVisible)
			assert.False(t, snap.ShowScore)
			assert.False(t, snap.Quizzing)
			assert.ErrorIs(t, h.session.SelectOption(0, "A"), ErrNoQuiz)
			assert.ErrorIs(t, h.session.CheckAnswer(0), ErrNoQuiz)
		})
	}
}

func TestQuiz_SelectCheckScore(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("text")).withQuiz(quizReply(sampleItems()...))
	require.NoError(t, h.session.AskQuestion(ctx, "q"))
	require.NoError(t, h.session.GenerateQuiz(ctx))

	assert.ErrorIs(t, h.session.SelectOption(3, "A"), quiz.ErrIndexOutOfRange)
	assert.ErrorIs(t, h.session.CheckAnswer(1), quiz.ErrNoSelection)

	require.NoError(t, h.session.SelectOption(0, "A. go"))
	require.NoError(t, h.session.CheckAnswer(0))
	require.NoError(t, h.session.SelectOption(1, "a. map"))
	require.NoError(t, h.session.CheckAnswer(1))

	snap := h.session.Snapshot()
	assert.True(t, snap.Quiz[0].Correct)
	assert.False(t, snap.Quiz[1].Correct)
	assert.Equal(t, 1, snap.Score)
	assert.False(t, snap.ShowScore)

	require.NoError(t, h.session.SelectOption(2, "  b. mutual exclusion"))
	require.NoError(t, h.session.CheckAnswer(2))

	snap = h.session.Snapshot()
	assert.True(t, snap.ShowScore)
	assert.Equal(t, 2, snap.Score)

	// Changing a checked answer keeps the score.
	require.NoError(t, h.session.SelectOption(0, "D. thread"))
	require.NoError(t, h.session.CheckAnswer(0))
	assert.Equal(t, 2, h.session.Snapshot().Score)
}

func TestRetakeQuiz_DiscardsState(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("source text")).
		withQuiz(quizReply(sampleItems()...)).
		withQuiz(quizReply(sampleItems()[:2]...))
	require.NoError(t, h.session.AskQuestion(ctx, "q"))
	require.NoError(t, h.session.GenerateQuiz(ctx))
	for i := range sampleItems() {
		require.NoError(t, h.session.SelectOption(i, "A"))
		require.NoError(t, h.session.CheckAnswer(i))
	}
	require.True(t, h.session.Snapshot().ShowScore)

	require.NoError(t, h.session.RetakeQuiz(ctx))

	snap := h.session.Snapshot()
	assert.Equal(t, []string{"source text", "source text"}, h.backend.quizCalls)
	require.Len(t, snap.Quiz, 2)
	assert.False(t, snap.ShowScore)
	assert.Equal(t, 0, snap.Score)
	for _, item := range snap.Quiz {
		assert.False(t, item.Selected)
		assert.False(t, item.Checked)
	}
}

func TestRetakeQuiz_FailureLeavesEmptyQuiz(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("text")).
		withQuiz(quizReply(sampleItems()...)).
		withQuiz(reply{err: errors.New("timeout")})
	require.NoError(t, h.session.AskQuestion(ctx, "q"))
	require.NoError(t, h.session.GenerateQuiz(ctx))
	require.NoError(t, h.session.SelectOption(0, "A"))
	require.NoError(t, h.session.CheckAnswer(0))

	assert.Error(t, h.session.RetakeQuiz(ctx))

	snap := h.session.Snapshot()
	assert.False(t, snap.QuizVisible)
	assert.Equal(t, 0, snap.Score)
}

func TestGenerateQuiz_InvalidatedByAsk(t *testing.T) {
	h := newHarness(t, true)
	r := gated(quizReply(sampleItems()...))
	h.withAnswer(ok("first")).withQuiz(r).withAnswer(ok("second"))
	require.NoError(t, h.session.AskQuestion(ctx, "q1"))

	done := make(chan error, 1)
	go func() { done <- h.session.GenerateQuiz(ctx) }()
	<-r.started
	require.True(t, h.session.Snapshot().Quizzing)

	require.NoError(t, h.session.AskQuestion(ctx, "q2"))
	assert.False(t, h.session.Snapshot().Quizzing)

	close(r.release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap := h.session.Snapshot()
	assert.Equal(t, "second", snap.Answer)
	assert.False(t, snap.QuizVisible)
	assert.False(t, snap.Quizzing)
}

func TestGenerateQuiz_NewerRequestWins(t *testing.T) {
	h := newHarness(t, true)
	first := gated(quizReply(sampleItems()...))
	h.withAnswer(ok("text")).withQuiz(first).withQuiz(quizReply(sampleItems()[:1]...))
	require.NoError(t, h.session.AskQuestion(ctx, "q"))

	done := make(chan error, 1)
	go func() { done <- h.session.GenerateQuiz(ctx) }()
	<-first.started

	require.NoError(t, h.session.GenerateQuiz(ctx))
	close(first.release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	assert.Len(t, h.session.Snapshot().Quiz, 1)
}

func TestResetMemory(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("a1", "s")).withAnswer(ok("a2")).withQuiz(quizReply(sampleItems()...))
	require.NoError(t, h.session.AskQuestion(ctx, "q1"))
	require.NoError(t, h.session.AskQuestion(ctx, "q2"))
	require.NoError(t, h.session.GenerateQuiz(ctx))

	require.NoError(t, h.session.ResetMemory(ctx))

	snap := h.session.Snapshot()
	assert.Empty(t, snap.History)
	assert.Empty(t, snap.Question)
	assert.Empty(t, snap.Answer)
	assert.Empty(t, snap.Sources)
	assert.False(t, snap.QuizVisible)
	assert.True(t, snap.MemoryEnabled, "reset does not change the memory toggle")

	_, present, err := h.storage.Get(ctx, history.StorageKey)
	require.NoError(t, err)
	assert.False(t, present)
	assert.Empty(t, h.reload().Snapshot().History)
}

func TestResetMemory_StorageFailure(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("a"))
	require.NoError(t, h.session.AskQuestion(ctx, "q"))
	h.storage.failRemove = true

	assert.Error(t, h.session.ResetMemory(ctx))
	assert.Empty(t, h.session.Snapshot().History)
}

func TestResetMemory_InvalidatesInFlight(t *testing.T) {
	h := newHarness(t, true)
	a := gated(ok("late answer"))
	h.withAnswer(a)

	done := make(chan error, 1)
	go func() { done <- h.session.AskQuestion(ctx, "q") }()
	<-a.started

	require.NoError(t, h.session.ResetMemory(ctx))
	assert.False(t, h.session.Snapshot().Answering)

	close(a.release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap := h.session.Snapshot()
	assert.Empty(t, snap.Answer)
	assert.Empty(t, snap.History)
}

func TestResetMemory_InvalidatesQuiz(t *testing.T) {
	h := newHarness(t, true)
	r := gated(quizReply(sampleItems()...))
	h.withAnswer(ok("text")).withQuiz(r)
	require.NoError(t, h.session.AskQuestion(ctx, "q"))

	done := make(chan error, 1)
	go func() { done <- h.session.GenerateQuiz(ctx) }()
	<-r.started

	require.NoError(t, h.session.ResetMemory(ctx))
	close(r.release)
	assert.ErrorIs(t, <-done, ErrSuperseded)

	snap := h.session.Snapshot()
	assert.False(t, snap.QuizVisible)
	assert.False(t, snap.Quizzing)
}

func TestHistory_SurvivesRestart(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("a1")).withAnswer(ok("a1")).withAnswer(ok("a2"))
	require.NoError(t, h.session.AskQuestion(ctx, "q1"))
	require.NoError(t, h.session.AskQuestion(ctx, "q1"))
	require.NoError(t, h.session.AskQuestion(ctx, "q2"))

	want := []history.QA{
		{Question: "q1", Answer: "a1"},
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}
	assert.Equal(t, want, h.session.History())
	assert.Equal(t, want, h.reload().Snapshot().History)
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	h := newHarness(t, true)
	h.withAnswer(ok("a", "src")).withQuiz(quizReply(sampleItems()...))
	require.NoError(t, h.session.AskQuestion(ctx, "q"))
	require.NoError(t, h.session.GenerateQuiz(ctx))

	snap := h.session.Snapshot()
	snap.Sources[0] = "mutated"
	snap.History[0].Answer = "mutated"
	snap.Quiz[0].Options[0] = "mutated"
	snap.Quiz[0].Checked = true

	fresh := h.session.Snapshot()
	assert.Equal(t, "src", fresh.Sources[0])
	assert.Equal(t, "a", fresh.History[0].Answer)
	assert.Equal(t, "A. go", fresh.Quiz[0].Options[0])
	assert.False(t, fresh.Quiz[0].Checked)
}

func TestToggles(t *testing.T) {
	h := newHarness(t, true)

	assert.False(t, h.session.ToggleMemory())
	assert.False(t, h.session.Snapshot().MemoryEnabled)
	assert.True(t, h.session.ToggleMemory())

	assert.False(t, h.session.ToggleHistoryPanel())
	assert.False(t, h.session.Snapshot().HistoryPanelOpen)
	assert.True(t, h.session.ToggleHistoryPanel())
}
