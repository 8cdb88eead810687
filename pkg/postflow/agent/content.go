package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// Content invokes the text capability to turn research bullet points
// into platform-specific content.
type Content struct {
	text TextCapability
}

var _ postflow.ContentInvoker = (*Content)(nil)

// NewContent creates the content stage invoker.
func NewContent(text TextCapability) *Content {
	return &Content{text: text}
}

// contentPayload is the JSON shape the capability is instructed to emit.
type contentPayload struct {
	Content string `json:"content"`
}

// Invoke implements postflow.ContentInvoker.
func (c *Content) Invoke(ctx context.Context, req postflow.ContentRequest) (*postflow.ContentResult, error) {
	if err := c.validate(req); err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageContent,
			Kind:  postflow.KindInvalidInput,
			Err:   err,
		}
	}

	raw, err := c.text.GenerateText(ctx, TextRequest{
		System:   contentSystemPrompt,
		User:     contentUserPrompt(req),
		JSONMode: true,
	})
	if err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageContent,
			Kind:  postflow.KindUpstream,
			Err:   err,
		}
	}

	var payload contentPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageContent,
			Kind:  postflow.KindSchema,
			Err:   fmt.Errorf("unparseable content payload: %w", err),
		}
	}

	text := strings.TrimSpace(payload.Content)
	// Word count is recomputed here; a zero count means the capability
	// produced nothing usable.
	wordCount := len(strings.Fields(text))
	if wordCount == 0 {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageContent,
			Kind:  postflow.KindSchema,
			Err:   errors.New("content payload is empty"),
		}
	}
	if limit := req.Platform.MaxLength(); limit > 0 && len([]rune(text)) > limit {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageContent,
			Kind:  postflow.KindSchema,
			Err:   fmt.Errorf("content exceeds %s limit of %d characters", req.Platform, limit),
		}
	}

	return &postflow.ContentResult{
		Text:      text,
		Platform:  req.Platform,
		WordCount: wordCount,
	}, nil
}

func (c *Content) validate(req postflow.ContentRequest) error {
	if len(req.Research.BulletPoints) == 0 {
		return errors.New("research result is required")
	}
	if !req.Platform.Valid() {
		return fmt.Errorf("unsupported platform: %q", req.Platform)
	}
	if !req.Tone.Valid() {
		return fmt.Errorf("unsupported tone: %q", req.Tone)
	}
	return nil
}
