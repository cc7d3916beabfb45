package comment

import (
	"context"
	"fmt"
	"time"

	"github.com/teamaeris/opendata-api/internal/domain"
	"github.com/teamaeris/opendata-api/internal/domain/catalog"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
)

// Service manages dataset comments.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a comment service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: domain.NowKST}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Create validates and stores a comment, returning its id.
func (s *Service) Create(ctx context.Context, listID int64, content string) (string, error) {
	c, err := domcomment.New(listID, content, s.now())
	if err != nil {
		return "", err
	}
	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return "", fmt.Errorf("create comment: %w", err)
	}
	return id, nil
}

// List returns one page of a dataset's comments, newest first.
func (s *Service) List(ctx context.Context, listID int64, page, size int) (domcomment.Page, error) {
	if listID < 1 {
		return domcomment.Page{}, fmt.Errorf("list_id must be positive: %w", domain.ErrInvalidArgument)
	}
	p := catalog.NewPaging(page, size)

	items, err := s.repo.List(ctx, listID, p.Offset(), p.Size)
	if err != nil {
		return domcomment.Page{}, fmt.Errorf("list comments: %w", err)
	}
	total, err := s.repo.Count(ctx, listID)
	if err != nil {
		return domcomment.Page{}, fmt.Errorf("count comments: %w", err)
	}
	if items == nil {
		items = []domcomment.Comment{}
	}
	return domcomment.Page{Items: items, Total: total, Page: p.Page, Size: p.Size}, nil
}

// Delete removes a comment by id.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("comment id is required: %w", domain.ErrInvalidArgument)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	return nil
}
