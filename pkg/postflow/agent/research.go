package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

// Research invokes the text capability to produce 5-7 factual bullet
// points about a topic.
type Research struct {
	text TextCapability
}

var _ postflow.ResearchInvoker = (*Research)(nil)

// NewResearch creates the research stage invoker.
func NewResearch(text TextCapability) *Research {
	return &Research{text: text}
}

// researchPayload is the JSON shape the capability is instructed to emit.
type researchPayload struct {
	Topic        string   `json:"topic"`
	BulletPoints []string `json:"bullet_points"`
}

// Invoke implements postflow.ResearchInvoker.
func (r *Research) Invoke(ctx context.Context, req postflow.ResearchRequest) (*postflow.ResearchResult, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageResearch,
			Kind:  postflow.KindInvalidInput,
			Err:   errors.New("topic must not be empty"),
		}
	}

	raw, err := r.text.GenerateText(ctx, TextRequest{
		System:   researchSystemPrompt,
		User:     researchUserPrompt(req),
		JSONMode: true,
	})
	if err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageResearch,
			Kind:  postflow.KindUpstream,
			Err:   err,
		}
	}

	var payload researchPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageResearch,
			Kind:  postflow.KindSchema,
			Err:   fmt.Errorf("unparseable research payload: %w", err),
		}
	}

	bullets := make([]string, 0, len(payload.BulletPoints))
	for _, b := range payload.BulletPoints {
		b = strings.TrimSpace(b)
		if b == "" {
			return nil, &postflow.InvocationError{
				Stage: postflow.StageResearch,
				Kind:  postflow.KindSchema,
				Err:   errors.New("research payload contains a blank bullet point"),
			}
		}
		bullets = append(bullets, b)
	}
	if n := len(bullets); n < postflow.MinResearchBullets || n > postflow.MaxResearchBullets {
		return nil, &postflow.InvocationError{
			Stage: postflow.StageResearch,
			Kind:  postflow.KindSchema,
			Err: fmt.Errorf("expected %d-%d bullet points, got %d",
				postflow.MinResearchBullets, postflow.MaxResearchBullets, n),
		}
	}

	// The echo always carries the requested topic, whatever the
	// capability put in the payload.
	return &postflow.ResearchResult{
		Topic:        req.Topic,
		BulletPoints: bullets,
	}, nil
}
