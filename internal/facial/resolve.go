package facial

import (
	"strings"

	"github.com/normanking/facedriver/internal/mesh"
)

// Resolve maps an ordered list of candidate aliases for one semantic slot
// to a concrete morph-target handle. Three tiers, each tried for every
// alias before falling through:
//
//  1. exact case-insensitive key match (full name or short alias)
//  2. case-insensitive substring match over all registered names
//  3. normalized match: underscores removed, lower-cased, with any
//     dot-delimited prefix stripped from registered names
//
// Morph-target naming varies by export pipeline, so resolution degrades
// instead of demanding exact configuration. A slot that resolves nowhere
// is simply absent; callers skip its contribution.
func Resolve(ix *MorphIndex, aliases ...string) (mesh.Handle, bool) {
	for _, alias := range aliases {
		if hd, ok := ix.Lookup(alias); ok {
			return hd, true
		}
	}

	for _, alias := range aliases {
		needle := strings.ToLower(alias)
		for _, entry := range ix.names {
			if strings.Contains(strings.ToLower(entry.name), needle) {
				return entry.handle, true
			}
		}
	}

	for _, alias := range aliases {
		want := normalizeAlias(alias)
		for _, entry := range ix.names {
			if normalizeRegistered(entry.name) == want {
				return entry.handle, true
			}
		}
	}

	return mesh.Handle{}, false
}

func normalizeAlias(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func normalizeRegistered(s string) string {
	if dot := strings.Index(s, "."); dot >= 0 && dot+1 < len(s) {
		s = s[dot+1:]
	}
	return normalizeAlias(s)
}
