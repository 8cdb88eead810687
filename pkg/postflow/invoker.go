package postflow

import "context"

// ResearchRequest is the input contract of the research stage.
type ResearchRequest struct {
	// Topic to research. Must be non-empty.
	Topic string
	// Context carries optional constraints, e.g. the target platform
	// and tone.
	Context string
}

// ContentRequest is the input contract of the content stage.
type ContentRequest struct {
	// Research is the validated research output. Must be non-empty.
	Research ResearchResult
	Platform Platform
	Tone     Tone
}

// ImageRequest is the input contract of the image stage.
type ImageRequest struct {
	// Content is the validated content output. Must be non-empty.
	Content ContentResult
	// Topic is the original research topic, used for artifact naming.
	Topic string
	// Style of the generated image, e.g. "photorealistic".
	Style string
	// Size of the generated image, e.g. "1024x1024".
	Size string
}

// ResearchInvoker wraps one call to the research capability.
// Implementations validate the request before any external call
// (KindInvalidInput), map capability errors to KindUpstream, and reject
// non-conforming output with KindSchema.
type ResearchInvoker interface {
	Invoke(ctx context.Context, req ResearchRequest) (*ResearchResult, error)
}

// ContentInvoker wraps one call to the content capability.
// Same error contract as ResearchInvoker.
type ContentInvoker interface {
	Invoke(ctx context.Context, req ContentRequest) (*ContentResult, error)
}

// ImageInvoker wraps one call to the image capability.
// This is the only stage with an external side effect beyond the API
// call itself: the generated artifact is persisted and the result
// carries a reference to it.
type ImageInvoker interface {
	Invoke(ctx context.Context, req ImageRequest) (*ImageResult, error)
}
