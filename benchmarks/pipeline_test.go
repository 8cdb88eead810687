package benchmarks

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/randalmurphal/postflow/pkg/postflow"
	"github.com/randalmurphal/postflow/pkg/postflow/event"
)

// Stub invokers with no external calls, to measure orchestration
// overhead rather than capability latency.

type research struct{}

func (research) Invoke(_ context.Context, req postflow.ResearchRequest) (*postflow.ResearchResult, error) {
	return &postflow.ResearchResult{
		Topic:        req.Topic,
		BulletPoints: []string{"a", "b", "c", "d", "e"},
	}, nil
}

type content struct{}

func (content) Invoke(_ context.Context, req postflow.ContentRequest) (*postflow.ContentResult, error) {
	text := strings.Join(req.Research.BulletPoints, " ")
	return &postflow.ContentResult{
		Text:      text,
		Platform:  req.Platform,
		WordCount: len(strings.Fields(text)),
	}, nil
}

type image struct{}

func (image) Invoke(_ context.Context, req postflow.ImageRequest) (*postflow.ImageResult, error) {
	return &postflow.ImageResult{
		Path: "static/images/bench.png",
		Size: req.Size,
	}, nil
}

type failingImage struct{}

func (failingImage) Invoke(_ context.Context, _ postflow.ImageRequest) (*postflow.ImageResult, error) {
	return nil, &postflow.InvocationError{
		Stage: postflow.StageImage,
		Kind:  postflow.KindUpstream,
		Err:   errors.New("bench failure"),
	}
}

func mustPipeline(b *testing.B, opts ...postflow.Option) *postflow.Pipeline {
	b.Helper()
	p, err := postflow.New(research{}, content{}, image{}, opts...)
	if err != nil {
		b.Fatal(err)
	}
	return p
}

// BenchmarkRun_Full measures a full three-stage run.
func BenchmarkRun_Full(b *testing.B) {
	p := mustPipeline(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Run(ctx, "topic", postflow.PlatformGeneral, postflow.ToneInformative)
	}
}

// BenchmarkRun_Degraded measures a run absorbing an image failure.
func BenchmarkRun_Degraded(b *testing.B) {
	p, err := postflow.New(research{}, content{}, failingImage{})
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Run(ctx, "topic", postflow.PlatformGeneral, postflow.ToneInformative)
	}
}

// BenchmarkRun_WithBusNotifier measures runs publishing progress to a
// subscribed bus.
func BenchmarkRun_WithBusNotifier(b *testing.B) {
	bus := event.NewBus()
	defer bus.Close()
	_, cancel := bus.Subscribe("bench")
	defer cancel()

	p := mustPipeline(b, postflow.WithNotifier(event.NewNotifier(bus, "bench")))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = p.Run(ctx, "topic", postflow.PlatformGeneral, postflow.ToneInformative)
	}
}

// BenchmarkRun_Parallel measures concurrent runs over one pipeline.
func BenchmarkRun_Parallel(b *testing.B) {
	p := mustPipeline(b)
	ctx := context.Background()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Run(ctx, "topic", postflow.PlatformGeneral, postflow.ToneInformative)
		}
	})
}

// BenchmarkBusPublish measures event fan-out to multiple subscribers.
func BenchmarkBusPublish(b *testing.B) {
	bus := event.NewBus()
	defer bus.Close()
	for i := 0; i < 4; i++ {
		_, cancel := bus.Subscribe("bench")
		defer cancel()
	}

	evt := event.Progress{RunID: "bench", Stage: "research", Status: "started"}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bus.Publish(evt)
	}
}
