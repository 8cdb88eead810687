// Package agent implements the three stage invokers over external
// generative capabilities. Each invoker validates its input before any
// external call, maps capability errors to the pipeline's failure kinds,
// and rejects output that does not conform to the stage's schema.
package agent

import "context"

// TextRequest configures one text generation call.
type TextRequest struct {
	// System prompt establishing the capability's role.
	System string
	// User prompt carrying the stage-specific payload.
	User string
	// JSONMode constrains the capability to emit a JSON object.
	JSONMode bool
}

// TextCapability produces text from a prompt. Implementations are
// opaque and non-deterministic; callers validate structure, never
// content.
type TextCapability interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenRequest configures one image generation call.
type ImageGenRequest struct {
	Prompt string
	// Size of the image, e.g. "1024x1024".
	Size string
	// Style hint folded into the prompt, e.g. "photorealistic".
	Style string
}

// ImageCapability renders an image and returns the encoded bytes (PNG).
type ImageCapability interface {
	GenerateImage(ctx context.Context, req ImageGenRequest) ([]byte, error)
}
