package service

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// LangchainModel adapts a langchaingo chat model to the TextGenerator
// interface used by the menu generator.
type LangchainModel struct {
	model llms.Model
}

func NewLangchainModel(model llms.Model) *LangchainModel {
	return &LangchainModel{model: model}
}

func (m *LangchainModel) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := m.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, system),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return resp.Choices[0].Content, nil
}
