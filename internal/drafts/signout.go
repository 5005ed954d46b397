package drafts

import (
	"context"
	"time"

	"go.uber.org/zap"

	"example.com/mentalreset/internal/auth"
	"example.com/mentalreset/internal/observability"
)

// ChangeSource is the subscription side of the session provider.
type ChangeSource interface {
	Subscribe(fn func(auth.Change)) (unsubscribe func())
}

// DiscardOnSignOut drops a user's drafts as soon as they sign out so the
// next person on the device starts from an empty form. Call the returned
// function to release the subscription.
func DiscardOnSignOut(source ChangeSource, store Store, logger *zap.Logger) (unsubscribe func()) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return source.Subscribe(func(c auth.Change) {
		if c.Event != auth.EventSignedOut {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		n, err := store.DiscardOwnedBy(ctx, c.Session.UserID)
		if err != nil {
			logger.Warn("discard drafts after sign-out failed", zap.String("user_id", c.Session.UserID), zap.Error(err))
			return
		}
		observability.RecordDraftsDiscarded(n)
		logger.Debug("discarded drafts after sign-out", zap.String("user_id", c.Session.UserID), zap.Int("count", n))
	})
}
