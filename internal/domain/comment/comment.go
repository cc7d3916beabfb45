package comment

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/teamaeris/opendata-api/internal/domain"
)

// MaxContentLength bounds a comment body, in runes.
const MaxContentLength = 2000

// Comment is a user note attached to a dataset.
type Comment struct {
	ID        string
	ListID    int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates and creates a comment.
func New(listID int64, content string, now time.Time) (Comment, error) {
	if listID < 1 {
		return Comment{}, fmt.Errorf("list_id must be positive: %w", domain.ErrInvalidArgument)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, fmt.Errorf("content is required: %w", domain.ErrInvalidArgument)
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return Comment{}, fmt.Errorf("content exceeds %d characters: %w", MaxContentLength, domain.ErrInvalidArgument)
	}
	return Comment{ListID: listID, Content: content, CreatedAt: now}, nil
}

// Page is one page of comments, newest first.
type Page struct {
	Items []Comment
	Total int64
	Page  int
	Size  int
}
