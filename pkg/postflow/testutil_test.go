package postflow

import (
	"context"
	"strings"
	"sync"
	"time"
)

// testCtx returns the base context for tests.
func testCtx() context.Context {
	return context.Background()
}

// Fake invokers used across pipeline tests. A single fake may be shared
// by concurrent runs, so mutations are guarded by a mutex.

type fakeResearch struct {
	result *ResearchResult
	err    error

	mu     sync.Mutex
	calls  int
	gotReq ResearchRequest
}

func (f *fakeResearch) Invoke(_ context.Context, req ResearchRequest) (*ResearchResult, error) {
	f.mu.Lock()
	f.calls++
	f.gotReq = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeContent struct {
	result *ContentResult
	err    error

	mu     sync.Mutex
	calls  int
	gotReq ContentRequest
}

func (f *fakeContent) Invoke(_ context.Context, req ContentRequest) (*ContentResult, error) {
	f.mu.Lock()
	f.calls++
	f.gotReq = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeImage struct {
	result *ImageResult
	err    error

	mu     sync.Mutex
	calls  int
	gotReq ImageRequest
}

func (f *fakeImage) Invoke(_ context.Context, req ImageRequest) (*ImageResult, error) {
	f.mu.Lock()
	f.calls++
	f.gotReq = req
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// okResearch returns a fake that produces six bullet points.
func okResearch(topic string) *fakeResearch {
	return &fakeResearch{result: &ResearchResult{
		Topic: topic,
		BulletPoints: []string{
			"solar capacity doubled in five years",
			"wind is the cheapest new generation source",
			"grid storage costs fell 80 percent",
			"heat pumps outsell gas furnaces",
			"EV adoption passed 20 percent of new sales",
			"corporate PPAs drive utility-scale builds",
		},
	}}
}

// okContent returns a fake producing a 40-word post.
func okContent(platform Platform) *fakeContent {
	text := strings.TrimSpace(strings.Repeat("renewable energy keeps getting cheaper ", 8))
	return &fakeContent{result: &ContentResult{
		Text:      text,
		Platform:  platform,
		WordCount: len(strings.Fields(text)),
	}}
}

// okImage returns a fake producing a stored artifact reference.
func okImage() *fakeImage {
	return &fakeImage{result: &ImageResult{
		Path:          "static/images/20250101_120000_renewable-energy_twitter.png",
		Prompt:        "a wind farm at golden hour",
		Size:          DefaultImageSize,
		FileSizeBytes: 2048,
	}}
}

// newTestPipeline builds a pipeline over the three fakes.
func newTestPipeline(t interface{ Fatalf(string, ...any) }, r ResearchInvoker, c ContentInvoker, i ImageInvoker, opts ...Option) *Pipeline {
	p, err := New(r, c, i, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

// notification is one recorded Notify call.
type notification struct {
	Stage   Stage
	Status  Status
	Elapsed time.Duration
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (r *recordingNotifier) Notify(_ context.Context, stage Stage, status Status, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notification{Stage: stage, Status: status, Elapsed: elapsed})
}

func (r *recordingNotifier) snapshot() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification, len(r.calls))
	copy(out, r.calls)
	return out
}
