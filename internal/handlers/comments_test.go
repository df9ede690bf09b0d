package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clipstream/backend/internal/models"
)

func newCommentHandler() (CommentHandler, *inMemoryCommentStore, *inMemoryVideoStore) {
	comments := newInMemoryCommentStore()
	videos := newInMemoryVideoStore()
	handler := CommentHandler{
		Comments: comments,
		Videos:   videos,
		Views:    stubMaterializer{},
		NowFunc:  func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	return handler, comments, videos
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCommentHandlerCreate(t *testing.T) {
	handler, comments, videos := newCommentHandler()
	video := seedVideo(t, videos, models.NewID(), true)

	req := jsonRequest(http.MethodPost, "/api/v1/videos/"+video.ID+"/comments", `{"content":"  nice clip  "}`)
	req.SetPathValue("videoId", video.ID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var created models.Comment
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Content != "nice clip" {
		t.Fatalf("expected trimmed content, got %q", created.Content)
	}
	if created.OwnerID != "actor-1" || created.VideoID != video.ID {
		t.Fatalf("unexpected comment: %+v", created)
	}
	if _, err := comments.FindByID(req.Context(), created.ID); err != nil {
		t.Fatalf("expected comment persisted: %v", err)
	}
}

func TestCommentHandlerCreateMissingVideo(t *testing.T) {
	handler, _, _ := newCommentHandler()
	videoID := models.NewID()

	req := jsonRequest(http.MethodPost, "/api/v1/videos/"+videoID+"/comments", `{"content":"hello"}`)
	req.SetPathValue("videoId", videoID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}

func TestCommentHandlerCreateEmptyContent(t *testing.T) {
	handler, _, videos := newCommentHandler()
	video := seedVideo(t, videos, models.NewID(), true)

	req := jsonRequest(http.MethodPost, "/api/v1/videos/"+video.ID+"/comments", `{"content":"   "}`)
	req.SetPathValue("videoId", video.ID)
	req = req.WithContext(WithActor(req.Context(), "actor-1"))
	rec := httptest.NewRecorder()

	handler.Create(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestCommentHandlerUpdateOwnership(t *testing.T) {
	handler, comments, _ := newCommentHandler()
	comment := models.Comment{
		ID:      models.NewID(),
		VideoID: models.NewID(),
		OwnerID: "owner-1",
		Content: "original",
	}
	if err := comments.Create(context.Background(), comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	req := jsonRequest(http.MethodPatch, "/api/v1/comments/"+comment.ID, `{"content":"edited"}`)
	req.SetPathValue("commentId", comment.ID)
	req = req.WithContext(WithActor(req.Context(), "intruder"))
	rec := httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d got %d", http.StatusForbidden, rec.Code)
	}

	req = jsonRequest(http.MethodPatch, "/api/v1/comments/"+comment.ID, `{"content":"edited"}`)
	req.SetPathValue("commentId", comment.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec = httptest.NewRecorder()

	handler.Update(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	updated, err := comments.FindByID(req.Context(), comment.ID)
	if err != nil {
		t.Fatalf("find comment: %v", err)
	}
	if updated.Content != "edited" {
		t.Fatalf("expected edited content, got %q", updated.Content)
	}
}

func TestCommentHandlerDelete(t *testing.T) {
	handler, comments, _ := newCommentHandler()
	comment := models.Comment{ID: models.NewID(), OwnerID: "owner-1", Content: "bye"}
	if err := comments.Create(context.Background(), comment); err != nil {
		t.Fatalf("seed comment: %v", err)
	}

	req := pathRequest(http.MethodDelete, "/api/v1/comments/"+comment.ID, "commentId", comment.ID)
	req = req.WithContext(WithActor(req.Context(), "owner-1"))
	rec := httptest.NewRecorder()

	handler.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if _, err := comments.FindByID(req.Context(), comment.ID); err == nil {
		t.Fatal("expected comment to be deleted")
	}
}

func TestCommentHandlerList(t *testing.T) {
	handler, _, videos := newCommentHandler()
	video := seedVideo(t, videos, models.NewID(), true)
	handler.Views = stubMaterializer{comments: models.Page[models.CommentView]{
		Items:      []models.CommentView{{ID: models.NewID(), Content: "first"}},
		Page:       1,
		Limit:      10,
		TotalItems: 1,
		TotalPages: 1,
	}}

	req := pathRequest(http.MethodGet, "/api/v1/videos/"+video.ID+"/comments?page=1&limit=10", "videoId", video.ID)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)
	var page models.Page[models.CommentView]
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalItems != 1 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
}

func TestCommentHandlerListMissingVideo(t *testing.T) {
	handler, _, _ := newCommentHandler()
	videoID := models.NewID()

	req := pathRequest(http.MethodGet, "/api/v1/videos/"+videoID+"/comments", "videoId", videoID)
	rec := httptest.NewRecorder()

	handler.List(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d got %d", http.StatusNotFound, rec.Code)
	}
}
