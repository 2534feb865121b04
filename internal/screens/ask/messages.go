package ask

import "time"

// askDoneMsg is sent when an AskQuestion call returns.
type askDoneMsg struct {
	Err error
}

// quizDoneMsg is sent when a quiz (re)generation returns.
type quizDoneMsg struct {
	Err error
}

// resetDoneMsg is sent when ResetMemory returns.
type resetDoneMsg struct {
	Err error
}

// spinnerTickMsg animates the busy indicators.
type spinnerTickMsg time.Time
