package provider

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed tags.yaml
var tagsYAML []byte

type tagTaxonomy struct {
	Genres     []string `yaml:"genres"`
	Categories []string `yaml:"categories"`
}

// WhitelistTags is the fixed taxonomy of taste-graph tags a caller may
// filter on. Anything outside this set is silently dropped before the
// insights call.
var WhitelistTags = loadWhitelist()

func loadWhitelist() []string {
	var taxonomy tagTaxonomy
	if err := yaml.Unmarshal(tagsYAML, &taxonomy); err != nil {
		panic(fmt.Sprintf("provider: parse tags.yaml: %v", err))
	}
	return append(taxonomy.Genres, taxonomy.Categories...)
}

var whitelistSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(WhitelistTags))
	for _, tag := range WhitelistTags {
		s[tag] = struct{}{}
	}
	return s
}()

// FilterTags returns the tags that appear in the whitelist, preserving
// input order and dropping duplicates.
func FilterTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := whitelistSet[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
