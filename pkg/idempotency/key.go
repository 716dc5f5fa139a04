package idempotency

import (
	"regexp"

	"github.com/kamiazya/scopes/pkg/domain"
)

// KeyPattern is the accepted shape of a caller-supplied idempotency key.
const KeyPattern = `^[A-Za-z0-9_-]{8,128}$`

var keyRegexp = regexp.MustCompile(KeyPattern)

// ValidKey reports whether key may be used as an idempotency key.
func ValidKey(key string) bool {
	return keyRegexp.MatchString(key)
}

// InvalidKeyEnvelope is returned for a malformed key. It is never stored.
func InvalidKeyEnvelope(key string) domain.Envelope {
	return domain.NewErrorEnvelope(
		domain.CodeInvalidIdempotencyKey,
		"invalid idempotency key: must match "+KeyPattern,
		map[string]domain.Value{
			domain.DetailErrorType: domain.String("InvalidIdempotencyKey"),
			domain.DetailRetryable: domain.Bool(false),
			"pattern":              domain.String(KeyPattern),
			"length":               domain.IntValue(int64(len(key))),
		},
	)
}
