package comment

import (
	"context"

	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
)

// Repository persists comments.
type Repository interface {
	Create(ctx context.Context, c domcomment.Comment) (string, error)
	List(ctx context.Context, listID int64, offset, limit int) ([]domcomment.Comment, error)
	Count(ctx context.Context, listID int64) (int64, error)
	// Delete returns domain.ErrNotFound when no comment has the id.
	Delete(ctx context.Context, id string) error
}
