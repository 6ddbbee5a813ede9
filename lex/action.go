package lex

// ActionType is the kind of action the lexer takes when a pattern matches.
type ActionType int

const (
	// ActionNone discards the matched text and keeps lexing. The position
	// still advances past the match.
	ActionNone ActionType = iota

	// ActionScan produces a token of the action's class from the matched
	// text.
	ActionScan

	// ActionState swaps the lexer to a new state without producing a token.
	ActionState

	// ActionScanAndState produces a token and then swaps the lexer to a new
	// state.
	ActionScanAndState
)

// Action is what the lexer does when a pattern matches.
type Action struct {
	Type    ActionType
	ClassID string
	State   string
}

// SwapState returns an Action that shifts the lexer to the given state
// without producing a token.
func SwapState(toState string) Action {
	return Action{
		Type:  ActionState,
		State: toState,
	}
}

// LexAs returns an Action that produces a token of the given class.
func LexAs(classID string) Action {
	return Action{
		Type:    ActionScan,
		ClassID: classID,
	}
}

// LexAndSwapState returns an Action that produces a token of the given class
// and then shifts the lexer to the given state.
func LexAndSwapState(classID string, newState string) Action {
	return Action{
		Type:    ActionScanAndState,
		ClassID: classID,
		State:   newState,
	}
}

// Discard returns an Action that throws away the matched text. This is the
// "skip" marker for whitespace and comment patterns.
func Discard() Action {
	return Action{}
}
