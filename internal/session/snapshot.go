package session

import (
	"github.com/abhisek/bytebuddy/internal/history"
	"github.com/abhisek/bytebuddy/internal/quiz"
)

// QuizItemView is one quiz item with its interaction state.
type QuizItemView struct {
	quiz.Item
	Selection string
	Selected  bool
	Checked   bool
	Correct   bool
}

// Snapshot is a point-in-time copy of the session for rendering.
// Mutating it does not affect the session.
type Snapshot struct {
	Question string
	Answer   string
	Sources  []string
	History  []history.QA

	Quiz []QuizItemView

	// QuizVisible is false for an empty quiz.
	QuizVisible bool
	// ShowScore is true once every item is checked.
	ShowScore bool
	Score     int

	MemoryEnabled    bool
	Answering        bool
	Quizzing         bool
	HistoryPanelOpen bool
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.quiz.Items()
	views := make([]QuizItemView, len(items))
	for i, it := range items {
		sel, ok := s.quiz.Selection(i)
		views[i] = QuizItemView{
			Item:      it,
			Selection: sel,
			Selected:  ok,
			Checked:   s.quiz.Checked(i),
			Correct:   s.quiz.Correct(i),
		}
	}

	return Snapshot{
		Question:         s.question,
		Answer:           s.answer,
		Sources:          append([]string{}, s.sources...),
		History:          s.history.Entries(),
		Quiz:             views,
		QuizVisible:      s.quiz.Presentable(),
		ShowScore:        s.quiz.Complete(),
		Score:            s.quiz.Score(),
		MemoryEnabled:    s.memoryEnabled,
		Answering:        s.answering,
		Quizzing:         s.quizzing,
		HistoryPanelOpen: s.historyPanel,
	}
}
