package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "keeps whitelisted tags in input order",
			in:   []string{"urn:tag:genre:media:rpg", "urn:tag:genre:media:action"},
			want: []string{"urn:tag:genre:media:rpg", "urn:tag:genre:media:action"},
		},
		{
			name: "drops unknown tags",
			in:   []string{"urn:tag:genre:media:rpg", "urn:tag:genre:media:horror", "made-up"},
			want: []string{"urn:tag:genre:media:rpg"},
		},
		{
			name: "drops duplicates",
			in:   []string{"urn:tag:genre:media:rpg", "urn:tag:genre:media:rpg"},
			want: []string{"urn:tag:genre:media:rpg"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterTags(tt.in))
		})
	}
}

func TestWhitelistCoversBothNamespaces(t *testing.T) {
	assert.Len(t, WhitelistTags, 18)
	assert.Contains(t, WhitelistTags, "urn:tag:genre:media:tycoon")
	assert.Contains(t, WhitelistTags, "urn:tag:wikipedia_category:wikidata:indie_games")
}
