package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationString(t *testing.T) {
	assert.Equal(t, "playtaste.explanation.prefetch", OperationPrefetchExplanation.String())
}

func TestIsExplanationOperation(t *testing.T) {
	assert.True(t, OperationPrefetchExplanation.IsExplanationOperation())
	assert.False(t, OperationRoot.IsExplanationOperation())
	assert.False(t, OperationExplanation.IsExplanationOperation())
}
