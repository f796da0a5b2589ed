// Clipfeed - Short-Form Video Feed Ranking and Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/clipfeed

package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/clipfeed/internal/catalog"
	"github.com/tomtom215/clipfeed/internal/config"
	"github.com/tomtom215/clipfeed/internal/models"
)

// fakeApplier is a thread-safe in-memory EngagementApplier.
type fakeApplier struct {
	mu       sync.Mutex
	videos   map[string]*models.Video
	applied  []string // "videoID/kind"
	applyErr error
}

func newFakeApplier(videos ...*models.Video) *fakeApplier {
	f := &fakeApplier{videos: make(map[string]*models.Video)}
	for _, v := range videos {
		f.videos[v.ID] = v
	}
	return f
}

func (f *fakeApplier) ApplyEngagement(ctx context.Context, videoID, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.applyErr != nil {
		return f.applyErr
	}
	if _, ok := f.videos[videoID]; !ok {
		return catalog.ErrVideoNotFound
	}
	f.applied = append(f.applied, videoID+"/"+kind)
	return nil
}

func (f *fakeApplier) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, catalog.ErrVideoNotFound
	}
	return v, nil
}

func (f *fakeApplier) appliedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.applied)
}

// fakeRecorder is a thread-safe in-memory InteractionRecorder.
type fakeRecorder struct {
	mu           sync.Mutex
	seen         []string // "viewerID/videoID"
	interactions []string // "viewerID/creatorID/kind"
}

func (f *fakeRecorder) MarkSeen(ctx context.Context, viewerID, videoID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, viewerID+"/"+videoID)
	return nil
}

func (f *fakeRecorder) RecordInteraction(ctx context.Context, viewerID, creatorID string, tags []string, kind string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interactions = append(f.interactions, viewerID+"/"+creatorID+"/"+kind)
	return nil
}

func testEventsConfig() *config.EventsConfig {
	return &config.EventsConfig{
		Enabled:                    true,
		RateLimitPerMinute:         100,
		DedupTTL:                   time.Minute,
		RouterRetryCount:           1,
		RouterRetryInitialInterval: time.Millisecond,
		PoisonQueueEnabled:         false,
		RouterCloseTimeout:         5 * time.Second,
	}
}

func testVideo(id, creator string) *models.Video {
	return &models.Video{ID: id, CreatorID: creator, Tags: []string{"comedy"}}
}

func newTestMessage(t *testing.T, event *EngagementEvent) *message.Message {
	t.Helper()
	payload, err := event.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	return message.NewMessage(event.EventID, payload)
}

func TestProcessorAppliesViewEvent(t *testing.T) {
	applier := newFakeApplier(testVideo("v1", "creator-a"))
	recorder := &fakeRecorder{}
	p := NewProcessor(applier, recorder)

	event := NewEngagementEvent("viewer-1", "v1", KindView)
	if err := p.Handle(newTestMessage(t, event)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(applier.applied) != 1 || applier.applied[0] != "v1/view" {
		t.Errorf("applied = %v, want [v1/view]", applier.applied)
	}
	if len(recorder.seen) != 1 || recorder.seen[0] != "viewer-1/v1" {
		t.Errorf("seen = %v, want [viewer-1/v1]", recorder.seen)
	}
	if len(recorder.interactions) != 1 || recorder.interactions[0] != "viewer-1/creator-a/view" {
		t.Errorf("interactions = %v", recorder.interactions)
	}
}

func TestProcessorLikeDoesNotMarkSeen(t *testing.T) {
	applier := newFakeApplier(testVideo("v1", "creator-a"))
	recorder := &fakeRecorder{}
	p := NewProcessor(applier, recorder)

	if err := p.Handle(newTestMessage(t, NewEngagementEvent("viewer-1", "v1", KindLike))); err != nil {
		t.Fatal(err)
	}

	if len(recorder.seen) != 0 {
		t.Errorf("like must not mark seen, got %v", recorder.seen)
	}
	if len(recorder.interactions) != 1 {
		t.Errorf("expected preference update, got %v", recorder.interactions)
	}
}

func TestProcessorAnonymousEventSkipsViewerState(t *testing.T) {
	applier := newFakeApplier(testVideo("v1", "creator-a"))
	recorder := &fakeRecorder{}
	p := NewProcessor(applier, recorder)

	if err := p.Handle(newTestMessage(t, NewEngagementEvent("", "v1", KindView))); err != nil {
		t.Fatal(err)
	}

	if len(applier.applied) != 1 {
		t.Errorf("expected counter update, got %v", applier.applied)
	}
	if len(recorder.seen) != 0 || len(recorder.interactions) != 0 {
		t.Error("anonymous event must not touch viewer state")
	}
}

func TestProcessorDropsPermanentFailures(t *testing.T) {
	applier := newFakeApplier() // no videos
	p := NewProcessor(applier, &fakeRecorder{})

	// Unknown video: acked, not retried.
	if err := p.Handle(newTestMessage(t, NewEngagementEvent("viewer-1", "ghost", KindView))); err != nil {
		t.Errorf("unknown video must be dropped, got %v", err)
	}

	// Malformed payload: acked, not retried.
	if err := p.Handle(message.NewMessage("x", []byte("{broken"))); err != nil {
		t.Errorf("malformed payload must be dropped, got %v", err)
	}

	// Unknown kind: acked, not retried.
	bad := &EngagementEvent{EventID: "e1", VideoID: "v1", Kind: "share"}
	if err := p.Handle(newTestMessage(t, bad)); err != nil {
		t.Errorf("unknown kind must be dropped, got %v", err)
	}
}

func TestProcessorReturnsTransientErrors(t *testing.T) {
	applier := newFakeApplier(testVideo("v1", "creator-a"))
	applier.applyErr = errors.New("database locked")
	p := NewProcessor(applier, &fakeRecorder{})

	if err := p.Handle(newTestMessage(t, NewEngagementEvent("viewer-1", "v1", KindView))); err == nil {
		t.Error("store failure must propagate for retry")
	}
}

func TestPublisherAdmissionControl(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer func() {
		if err := pubsub.Close(); err != nil {
			t.Error(err)
		}
	}()

	cfg := testEventsConfig()
	cfg.RateLimitPerMinute = 2
	pub := NewPublisher(pubsub, cfg)
	ctx := context.Background()

	// Invalid events are rejected up front.
	if err := pub.Publish(ctx, "client-1", &EngagementEvent{EventID: "e", VideoID: "v", Kind: "bad"}); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("expected ErrInvalidEvent, got %v", err)
	}

	// Duplicate event IDs are rejected.
	dup := NewEngagementEvent("viewer-1", "v1", KindView)
	if err := pub.Publish(ctx, "client-1", dup); err != nil {
		t.Fatal(err)
	}
	if err := pub.Publish(ctx, "client-1", dup); !errors.Is(err, ErrDuplicateEvent) {
		t.Errorf("expected ErrDuplicateEvent, got %v", err)
	}

	// Third distinct event breaches the limit of two.
	if err := pub.Publish(ctx, "client-1", NewEngagementEvent("viewer-1", "v2", KindView)); err != nil {
		t.Fatal(err)
	}
	if err := pub.Publish(ctx, "client-1", NewEngagementEvent("viewer-1", "v3", KindView)); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	// Other requesters are unaffected.
	if err := pub.Publish(ctx, "client-2", NewEngagementEvent("viewer-2", "v4", KindView)); err != nil {
		t.Errorf("independent requester rate-limited: %v", err)
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	applier := newFakeApplier(testVideo("v1", "creator-a"))
	recorder := &fakeRecorder{}

	pipeline, err := NewPipeline(testEventsConfig(), NewProcessor(applier, recorder), watermill.NopLogger{})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- pipeline.Run(ctx) }()
	<-pipeline.Running()

	if err := pipeline.Publisher.Publish(ctx, "client-1", NewEngagementEvent("viewer-1", "v1", KindLike)); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for applier.appliedCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("event never reached the processor")
		case <-time.After(10 * time.Millisecond):
		}
	}

	if err := pipeline.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Errorf("router exited with error: %v", err)
	}
}
