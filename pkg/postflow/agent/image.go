package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/postflow/pkg/postflow"
	"github.com/randalmurphal/postflow/pkg/postflow/artifact"
)

// ArtifactStore persists a generated image and returns a stable
// reference to it.
type ArtifactStore interface {
	Save(topic, platform string, data []byte) (artifact.Ref, error)
}

// Image invokes the text capability to derive a generation prompt from
// the content, renders the image, and persists it. This is the only
// invoker with a side effect beyond the capability call.
type Image struct {
	text  TextCapability
	image ImageCapability
	store ArtifactStore
}

var _ postflow.ImageInvoker = (*Image)(nil)

// NewImage creates the image stage invoker.
func NewImage(text TextCapability, image ImageCapability, store ArtifactStore) *Image {
	return &Image{text: text, image: image, store: store}
}

// Invoke implements postflow.ImageInvoker.
func (i *Image) Invoke(ctx context.Context, req postflow.ImageRequest) (*postflow.ImageResult, error) {
	if strings.TrimSpace(req.Content.Text) == "" {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageImage,
			Kind:  postflow.KindInvalidInput,
			Err:   errors.New("content result is required"),
		}
	}
	size := req.Size
	if size == "" {
		size = postflow.DefaultImageSize
	}

	prompt, err := i.text.GenerateText(ctx, TextRequest{
		System: imagePromptSystemPrompt,
		User:   imagePromptUserPrompt(req),
	})
	if err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageImage,
			Kind:  postflow.KindUpstream,
			Err:   fmt.Errorf("derive image prompt: %w", err),
		}
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageImage,
			Kind:  postflow.KindSchema,
			Err:   errors.New("derived image prompt is empty"),
		}
	}

	data, err := i.image.GenerateImage(ctx, ImageGenRequest{
		Prompt: prompt,
		Size:   size,
		Style:  req.Style,
	})
	if err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageImage,
			Kind:  postflow.KindUpstream,
			Err:   err,
		}
	}

	ref, err := i.store.Save(req.Topic, string(req.Content.Platform), data)
	if err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageImage,
			Kind:  postflow.KindUpstream,
			Err:   fmt.Errorf("persist artifact: %w", err),
		}
	}

	return &postflow.ImageResult{
		Path:          ref.Path,
		Prompt:        prompt,
		Size:          size,
		FileSizeBytes: ref.Size,
	}, nil
}
