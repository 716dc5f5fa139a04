package canonical

import (
	"fmt"
	"unicode/utf16"

	"github.com/kamiazya/scopes/pkg/domain"
)

// AutoKey stands in for the idempotency key in cache keys built without one.
const AutoKey = "auto"

// Hash is the 32-bit polynomial hash (h = h*31 + unit) over the UTF-16 code units of s.
// It is not collision resistant; callers that need isolation supply an idempotency key.
func Hash(s string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + uint32(unit)
	}
	return h
}

// BuildCacheKey returns "tool|key|hash" where hash covers the canonical form of args.
// An empty key is rendered as AutoKey.
func BuildCacheKey(tool string, args domain.Arguments, key string) string {
	if key == "" {
		key = AutoKey
	}
	return fmt.Sprintf("%s|%s|%08x", tool, key, Hash(Canonicalize(args)))
}
