package task

import "strings"

// Operation represents the type of task operation.
type Operation string

// Operation values for the task queue system.
const (
	OperationRoot                Operation = "playtaste.root"
	OperationExplanation         Operation = "playtaste.explanation"
	OperationPrefetchExplanation Operation = "playtaste.explanation.prefetch"
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return string(o)
}

// IsExplanationOperation returns true if this is an explanation-level operation.
func (o Operation) IsExplanationOperation() bool {
	return strings.HasPrefix(string(o), "playtaste.explanation.")
}
