// README: AI usage quota definitions (monthly LLM call allowance per user).
package aiusage

import (
	"context"
	"errors"
)

// ErrInsufficientTokens is returned when a user has no LLM calls left for the current month.
var ErrInsufficientTokens = errors.New("insufficient tokens")

// DefaultTokens is the number of LLM calls granted per month. An intake
// uses roughly one call per turn plus one for the tow-reason check.
const DefaultTokens = 200

type userKey struct{}

// WithUser tags ctx with the user whose quota pays for LLM calls made under it.
func WithUser(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userKey{}, uid)
}

func UserFrom(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(userKey{}).(string)
	return uid, ok && uid != ""
}
