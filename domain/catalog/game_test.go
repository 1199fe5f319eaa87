package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Hades", "hades"},
		{"spaces", "  Portal 2  ", "portal2"},
		{"hyphenated", "Half-Life 2", "halflife2"},
		{"punctuation", "Baldur's Gate 3", "baldursgate3"},
		{"colon", "Divinity: Original Sin II", "divinityoriginalsinii"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.title))
		})
	}
}

func TestNormalizedNameMatchesAcrossPunctuation(t *testing.T) {
	a := NewGame(220, "Half-Life 2")
	b := NewGame(220, "Half Life 2")
	assert.Equal(t, a.NormalizedName(), b.NormalizedName())
}
