package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/quailyquaily/snuffles/internal/jsonutil"
)

const summarizerSystemPrompt = "You organize news headlines into topical groups. " +
	"Return strict JSON only. " +
	`Output schema: {"groups":[{"topic":"Topic name","indices":[0,2]}]}. ` +
	"Use only the provided items, referenced by index. " +
	"Never invent items, titles, or indices that are not in the input. " +
	"Every index must appear in at most one group. " +
	"Keep topics short (one to three words)."

// Summarizer asks an OpenAI-compatible model to group headlines topically.
// A nil Summarizer is valid and means the enhancement is disabled.
type Summarizer struct {
	client *openai.Client
	model  string
}

func NewSummarizer(apiKey, model string) *Summarizer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil
	}
	if strings.TrimSpace(model) == "" {
		model = openai.GPT4oMini
	}
	return &Summarizer{client: openai.NewClient(apiKey), model: model}
}

// Organize renders the items grouped by topic in Slack markup. Items the
// model leaves out or references out of range keep the result honest: unknown
// indices are dropped and leftover items are appended under "Other".
func (s *Summarizer) Organize(ctx context.Context, items []Item) (string, error) {
	if s == nil || s.client == nil {
		return "", fmt.Errorf("summarizer is not configured")
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no items to organize")
	}

	payloadItems := make([]map[string]any, 0, len(items))
	for i, item := range items {
		payloadItems = append(payloadItems, map[string]any{
			"index": i,
			"title": item.Title,
		})
	}
	payload, _ := json.Marshal(map[string]any{"items": payloadItems})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0,
		MaxTokens:   600,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizerSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: string(payload)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("news summarizer: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("news summarizer returned no choices")
	}

	var out struct {
		Groups []topicGroup `json:"groups"`
	}
	if err := jsonutil.DecodeWithFallback(resp.Choices[0].Message.Content, &out); err != nil {
		return "", fmt.Errorf("invalid summarizer response: %w", err)
	}
	return renderGroups(items, out.Groups)
}

type topicGroup struct {
	Topic   string `json:"topic"`
	Indices []int  `json:"indices"`
}

func renderGroups(items []Item, groups []topicGroup) (string, error) {
	used := make(map[int]bool, len(items))
	var sections []string
	for _, group := range groups {
		topic := strings.TrimSpace(group.Topic)
		var lines []string
		for _, idx := range group.Indices {
			if idx < 0 || idx >= len(items) || used[idx] {
				continue
			}
			used[idx] = true
			lines = append(lines, "• "+FormatLink(items[idx]))
		}
		if len(lines) == 0 {
			continue
		}
		if topic == "" {
			topic = "News"
		}
		sections = append(sections, "*"+topic+":*\n"+strings.Join(lines, "\n"))
	}
	if len(sections) == 0 {
		return "", fmt.Errorf("summarizer grouped no known items")
	}
	var leftovers []string
	for i, item := range items {
		if !used[i] {
			leftovers = append(leftovers, "• "+FormatLink(item))
		}
	}
	if len(leftovers) > 0 {
		sections = append(sections, "*Other:*\n"+strings.Join(leftovers, "\n"))
	}
	return strings.Join(sections, "\n"), nil
}
