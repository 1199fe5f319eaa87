package request

import (
	"crypto/md5" //nolint:gosec // identity fingerprint, not a security boundary
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Fingerprint computes the dedup fingerprint for a search request: the
// MD5 hex digest of a canonical JSON document holding the sorted seed
// entity IDs and the caller's filters. Two requests with the same seeds
// and semantically identical filters always produce the same value,
// regardless of entity order or filter key order.
//
// Filters are fingerprinted exactly as the caller sent them, before any
// normalization, so requests differing only in ignored filter keys are
// distinct.
func Fingerprint(entityIDs []string, filters map[string]any) string {
	ids := make([]string, 0, len(entityIDs))
	for _, id := range entityIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	doc := map[string]any{
		"qloo_entities": ids,
		"filters":       canonicalize(filters),
	}

	// encoding/json writes map keys in sorted order, which makes the
	// serialization canonical once nested values are plain maps/slices.
	raw, _ := json.Marshal(doc)
	sum := md5.Sum(raw) //nolint:gosec
	return hex.EncodeToString(sum[:])
}

// canonicalize rewrites a JSON-like value into plain maps and slices so
// the encoder's sorted-key behavior applies at every nesting level.
// Slice element order is meaningful and preserved.
func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = canonicalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = canonicalize(val)
		}
		return out
	case nil:
		return nil
	default:
		return t
	}
}
