package message

import (
	"time"

	"github.com/uptrace/bun"
)

// FeedCursor marks the oldest message a client already holds.
type FeedCursor struct {
	CreatedAt time.Time
}

// ApplyCursorPagination orders the feed newest first and keeps only messages
// strictly older than the cursor.
func ApplyCursorPagination(q *bun.SelectQuery, cursor *FeedCursor, limit int) *bun.SelectQuery {
	if q == nil {
		return nil
	}
	q = q.OrderExpr("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if cursor == nil || cursor.CreatedAt.IsZero() {
		return q
	}
	return q.Where("created_at < ?", cursor.CreatedAt)
}
