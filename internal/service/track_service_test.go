package service

import (
	"context"
	"testing"
	"time"

	"tsound-server/internal/model"
	"tsound-server/internal/repository"
	"tsound-server/pkg/apperr"
)

func newTrackService(t *testing.T) (*TrackService, *fakeClock) {
	t.Helper()
	svc := NewTrackService(repository.NewTrackRepository(newTestDB(t)))
	clock := newFakeClock()
	svc.SetClock(clock.Now)
	return svc, clock
}

func TestListTracksEmpty(t *testing.T) {
	svc, _ := newTrackService(t)
	tracks, err := svc.ListTracks(context.Background())
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if tracks == nil || len(tracks) != 0 {
		t.Fatalf("expected empty non-nil list, got %v", tracks)
	}
}

func TestUploadAndList(t *testing.T) {
	svc, clock := newTrackService(t)
	ctx := context.Background()

	oldID, err := svc.Upload(ctx, "s1", UploadTrackInput{ID: "t-old", Title: "Old", Artist: "A", AudioURL: "a.mp3"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	clock.Advance(time.Minute)
	newID, err := svc.Upload(ctx, "", UploadTrackInput{Title: "New", Artist: "B", AudioURL: "b.mp3", CoverURL: "b.jpg"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if oldID != "t-old" || newID == "" {
		t.Fatalf("unexpected ids %q %q", oldID, newID)
	}

	if _, err := svc.AddComment(ctx, "s2", AddCommentInput{TrackID: oldID, Text: "nice"}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if _, err := svc.ToggleLike(ctx, "s2", oldID); err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}

	tracks, err := svc.ListTracks(ctx)
	if err != nil {
		t.Fatalf("ListTracks: %v", err)
	}
	if len(tracks) != 2 || tracks[0].ID != newID || tracks[1].ID != oldID {
		t.Fatalf("expected newest first, got %+v", tracks)
	}

	fresh := tracks[0]
	if fresh.LikedBy == nil || fresh.Comments == nil || fresh.PlaylistIDs == nil {
		t.Fatalf("arrays must never be nil: %+v", fresh)
	}
	if fresh.URL != "b.mp3" || fresh.CoverURL != "b.jpg" {
		t.Fatalf("unexpected urls: %+v", fresh)
	}

	old := tracks[1]
	if old.Likes != 1 || len(old.LikedBy) != 1 || old.LikedBy[0] != "s2" {
		t.Fatalf("unexpected likes: %+v", old)
	}
	if len(old.Comments) != 1 || old.Comments[0].UserName != model.DefaultCommenterName || old.Comments[0].UserID != "s2" {
		t.Fatalf("unexpected comments: %+v", old.Comments)
	}
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	svc, _ := newTrackService(t)
	ctx := context.Background()

	id, err := svc.Upload(ctx, "owner", UploadTrackInput{Title: "T", Artist: "A", AudioURL: "t.mp3"})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	first, err := svc.ToggleLike(ctx, "fan", id)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !first.Liked || first.Likes != 1 {
		t.Fatalf("expected liked with 1, got %+v", first)
	}
	second, err := svc.ToggleLike(ctx, "fan", id)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if second.Liked || second.Likes != 0 {
		t.Fatalf("expected unliked with 0, got %+v", second)
	}

	anon, err := svc.ToggleLike(ctx, "", id)
	if err != nil {
		t.Fatalf("ToggleLike anonymous: %v", err)
	}
	if !anon.Liked || anon.Likes != 1 {
		t.Fatalf("expected anonymous like counted, got %+v", anon)
	}
}

func TestToggleLikeUnknownTrack(t *testing.T) {
	svc, _ := newTrackService(t)
	_, err := svc.ToggleLike(context.Background(), "fan", "missing")
	if !apperr.Is(err, apperr.KindNotFound) || err.Error() != "Track not found" {
		t.Fatalf("expected Track not found, got %v", err)
	}
}

func TestAddCommentNames(t *testing.T) {
	svc, clock := newTrackService(t)
	ctx := context.Background()
	id, _ := svc.Upload(ctx, "owner", UploadTrackInput{Title: "T"})

	commentID, err := svc.AddComment(ctx, "s1", AddCommentInput{TrackID: id, CommentID: "c-1", Text: "x", UserName: strPtr("Ivy")})
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if commentID != "c-1" {
		t.Fatalf("expected provided id, got %s", commentID)
	}
	clock.Advance(time.Second)
	if _, err := svc.AddComment(ctx, "s1", AddCommentInput{TrackID: id, Text: "y", UserName: strPtr("")}); err != nil {
		t.Fatalf("AddComment: %v", err)
	}

	tracks, _ := svc.ListTracks(ctx)
	comments := tracks[0].Comments
	if len(comments) != 2 || comments[0].UserName != "Ivy" || comments[1].UserName != model.DefaultCommenterName {
		t.Fatalf("unexpected comments: %+v", comments)
	}

	if _, err := svc.AddComment(ctx, "s1", AddCommentInput{Text: "z"}); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
