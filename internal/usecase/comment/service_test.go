package comment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/teamaeris/opendata-api/internal/domain"
	domcomment "github.com/teamaeris/opendata-api/internal/domain/comment"
)

// --- Mocks ---

type mockRepo struct {
	created   *domcomment.Comment
	createErr error
	items     []domcomment.Comment
	listErr   error
	count     int64
	countErr  error
	deleteErr error

	offset, limit int
}

func (m *mockRepo) Create(_ context.Context, c domcomment.Comment) (string, error) {
	m.created = &c
	return "665f1c2e8a1b2c3d4e5f6a7b", m.createErr
}

func (m *mockRepo) List(_ context.Context, _ int64, offset, limit int) ([]domcomment.Comment, error) {
	m.offset, m.limit = offset, limit
	return m.items, m.listErr
}

func (m *mockRepo) Count(_ context.Context, _ int64) (int64, error) { return m.count, m.countErr }

func (m *mockRepo) Delete(_ context.Context, _ string) error { return m.deleteErr }

// --- Tests ---

func TestCreate(t *testing.T) {
	now := time.Date(2025, 7, 1, 9, 0, 0, 0, domain.KST)
	repo := &mockRepo{}
	svc := New(repo).WithClock(func() time.Time { return now })

	id, err := svc.Create(context.Background(), 15001, "  유용한 데이터입니다  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == "" {
		t.Error("expected id")
	}
	if repo.created.Content != "유용한 데이터입니다" || !repo.created.CreatedAt.Equal(now) {
		t.Errorf("unexpected comment: %+v", repo.created)
	}
}

func TestCreate_Invalid(t *testing.T) {
	repo := &mockRepo{}
	_, err := New(repo).Create(context.Background(), 15001, "   ")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if repo.created != nil {
		t.Error("invalid comment must not be stored")
	}
}

func TestCreate_RepoError(t *testing.T) {
	_, err := New(&mockRepo{createErr: errors.New("write conflict")}).Create(context.Background(), 1, "ok")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestList_Paging(t *testing.T) {
	repo := &mockRepo{items: []domcomment.Comment{{ID: "a"}}, count: 31}
	page, err := New(repo).List(context.Background(), 15001, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.offset != 10 || repo.limit != 10 {
		t.Errorf("expected offset 10 limit 10, got %d %d", repo.offset, repo.limit)
	}
	if page.Total != 31 || page.Page != 2 || page.Size != 10 || len(page.Items) != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestList_EmptyIsNotNil(t *testing.T) {
	page, err := New(&mockRepo{}).List(context.Background(), 1, 1, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Items == nil {
		t.Error("expected empty slice")
	}
}

func TestList_InvalidListID(t *testing.T) {
	_, err := New(&mockRepo{}).List(context.Background(), 0, 1, 20)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestList_CountError(t *testing.T) {
	if _, err := New(&mockRepo{countErr: errors.New("boom")}).List(context.Background(), 1, 1, 20); err == nil {
		t.Fatal("expected error")
	}
}

func TestDelete_NotFound(t *testing.T) {
	err := New(&mockRepo{deleteErr: domain.ErrNotFound}).Delete(context.Background(), "665f1c2e8a1b2c3d4e5f6a7b")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete_EmptyID(t *testing.T) {
	err := New(&mockRepo{}).Delete(context.Background(), "")
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
