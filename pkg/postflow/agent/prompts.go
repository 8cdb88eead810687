package agent

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/postflow/pkg/postflow"
)

const researchSystemPrompt = `You are an expert researcher generating factual bullet points on a given topic.

Requirements:
1. Produce between 5 and 7 factual bullet points about the topic.
2. Each bullet point must be informative, accurate, and self-contained.
3. Cover the most important and relevant aspects of the topic.
4. Use clear, concise language suitable for content creation.

Respond with a JSON object of this exact shape:
{"topic": "<the topic>", "bullet_points": ["...", "..."]}`

func researchUserPrompt(req postflow.ResearchRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research topic: %s\n", req.Topic)
	if req.Context != "" {
		fmt.Fprintf(&sb, "Additional context: %s\n", req.Context)
	}
	return sb.String()
}

const contentSystemPrompt = `You are an expert content creator producing platform-optimized posts.

Requirements:
1. Transform the research bullet points into engaging, platform-specific content.
2. Keep the research facts accurate while making them engaging.
3. Match the requested tone throughout.
4. Respect the platform's format: Twitter must stay under 280 characters total;
   LinkedIn suits roughly 1300 characters of thought-leadership writing;
   Blog suits 500-1000 structured words; General suits 200-400 balanced words.

Respond with a JSON object of this exact shape:
{"content": "<the generated text>"}`

func contentUserPrompt(req postflow.ContentRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create content for the %s platform with a %s tone.\n\n", req.Platform, req.Tone)
	fmt.Fprintf(&sb, "Research topic: %s\n\nResearch findings:\n", req.Research.Topic)
	for _, bullet := range req.Research.BulletPoints {
		fmt.Fprintf(&sb, "- %s\n", bullet)
	}
	sb.WriteString("\nUse the findings as the factual foundation and optimize for the platform's audience.\n")
	return sb.String()
}

const imagePromptSystemPrompt = `You are a visual content specialist writing prompts for an image generation model.

Requirements:
1. Read the provided content and identify its core message and themes.
2. Write one descriptive prompt for an image that complements the content.
3. Be specific about visual elements, composition, and mood.
4. Never include text or words in the image description.
5. Keep the prompt to 2-3 sentences.

Return only the image generation prompt, nothing else.`

func imagePromptUserPrompt(req postflow.ImageRequest) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Platform: %s\nContent:\n%s\n\n", req.Content.Platform, req.Content.Text)
	sb.WriteString("The image should visually represent the key themes of this content.\n")
	return sb.String()
}
