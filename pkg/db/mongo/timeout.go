// Package mongo holds helpers shared by the Mongo repositories.
package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// WithTimeout bounds one driver call. A parent deadline that is already
// sooner wins. Session contexts and non-positive timeouts pass through
// untouched so a call never leaves its transaction.
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, inSession := ctx.(mongo.SessionContext); inSession || timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
