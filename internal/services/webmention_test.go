package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/featherpress/featherpress/internal/auth"
	"github.com/featherpress/featherpress/internal/models"
)

// stubWebmentionStore keeps mentions in memory and enforces the
// (source, target) uniqueness pair
type stubWebmentionStore struct {
	mentions map[uuid.UUID]*models.Webmention
}

func (s *stubWebmentionStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Webmention, error) {
	return s.mentions[id], nil
}

func (s *stubWebmentionStore) Create(ctx context.Context, wm *models.Webmention) error {
	for _, m := range s.mentions {
		if m.SourceURL == wm.SourceURL && m.TargetURL == wm.TargetURL {
			return gorm.ErrDuplicatedKey
		}
	}
	s.mentions[wm.ID] = wm
	return nil
}

func (s *stubWebmentionStore) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	wm := s.mentions[id]
	if wm == nil {
		return nil
	}
	if v, ok := fields["status"]; ok {
		wm.Status = v.(models.WebmentionStatus)
	}
	return nil
}

func (s *stubWebmentionStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.mentions, id)
	return nil
}

func (s *stubWebmentionStore) ListByPost(ctx context.Context, postID uuid.UUID, offset, limit int) ([]*models.Webmention, error) {
	var out []*models.Webmention
	for _, m := range s.mentions {
		if m.PostID == postID {
			out = append(out, m)
		}
	}
	return out, nil
}

func newWebmentionFixture(perms map[string]bool) (*WebmentionService, *models.Post, *stubWebmentionStore) {
	post := testPost(uuid.New())
	mentions := &stubWebmentionStore{mentions: map[uuid.UUID]*models.Webmention{}}
	posts := &stubPostChecker{posts: map[uuid.UUID]*models.Post{post.ID: post}}
	gate := &stubGate{perms: perms}
	return NewWebmentionService(mentions, posts, gate), post, mentions
}

func TestWebmentionService_DuplicatePairIsConflict(t *testing.T) {
	svc, post, mentions := newWebmentionFixture(nil)

	input := CreateWebmentionInput{
		SourceURL: "https://elsewhere.example/reply",
		TargetURL: "https://blog.example/hello",
	}
	wm, err := svc.Create(context.Background(), post.ID, input)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if wm.Status != models.WebmentionPending {
		t.Errorf("expected pending status, got %q", wm.Status)
	}

	if _, err := svc.Create(context.Background(), post.ID, input); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for repeated pair, got %v", err)
	}
	if len(mentions.mentions) != 1 {
		t.Errorf("expected one mention row, got %d", len(mentions.mentions))
	}
}

func TestWebmentionService_CreateValidatesInput(t *testing.T) {
	svc, post, _ := newWebmentionFixture(nil)

	if _, err := svc.Create(context.Background(), post.ID, CreateWebmentionInput{
		SourceURL: "https://elsewhere.example",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation without target, got %v", err)
	}

	if _, err := svc.Create(context.Background(), post.ID, CreateWebmentionInput{
		SourceURL:   "https://elsewhere.example",
		TargetURL:   "https://blog.example/hello",
		MentionType: strPtr("poke"),
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown type, got %v", err)
	}
}

func TestWebmentionService_ModerationIsGated(t *testing.T) {
	svc, post, _ := newWebmentionFixture(nil)

	wm, err := svc.Create(context.Background(), post.ID, CreateWebmentionInput{
		SourceURL: "https://elsewhere.example/reply",
		TargetURL: "https://blog.example/hello",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.SetStatus(context.Background(), auth.Authenticated(testUser("user")), wm.ID, models.WebmentionVerified); !errors.Is(err, auth.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(context.Background(), auth.Anonymous(), wm.ID); !errors.Is(err, auth.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestWebmentionService_SetStatus(t *testing.T) {
	svc, post, mentions := newWebmentionFixture(map[string]bool{PermModerateComments: true})
	moderator := auth.Authenticated(testUser("admin"))

	wm, err := svc.Create(context.Background(), post.ID, CreateWebmentionInput{
		SourceURL: "https://elsewhere.example/reply",
		TargetURL: "https://blog.example/hello",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), moderator, wm.ID, models.WebmentionVerified)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != models.WebmentionVerified {
		t.Errorf("status not applied, got %q", updated.Status)
	}
	if mentions.mentions[wm.ID].Status != models.WebmentionVerified {
		t.Error("stored row not updated")
	}

	if _, err := svc.SetStatus(context.Background(), moderator, wm.ID, "unknown"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for unknown status, got %v", err)
	}
}
