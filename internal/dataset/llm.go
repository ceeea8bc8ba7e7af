// v1
// internal/dataset/llm.go
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Bega-Bytes/CarAI-mqtt-cluster/internal/vehicle"
)

// ChatCompleter is the slice of the OpenAI client the generator needs.
// Tests substitute a scripted fake for it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const personaPrompt = `Generate a realistic driver persona for a car AI system. Include:
- Age range and demographic
- Driving habits and preferences
- Climate preferences (temperature range, fan usage)
- Infotainment preferences (music, volume levels)
- Lighting preferences
- Seat preferences
- Common trip patterns
- Personality traits that affect car usage

Return as JSON format with clear categories.`

// Step is one model-proposed action inside a trip sequence.
type Step struct {
	Action          string   `json:"action"`
	TimestampOffset int      `json:"timestamp_offset"`
	ContextReason   string   `json:"context_reason"`
	Value           *float64 `json:"value"`
}

var fallbackPersonas = []string{
	`{"age_range":"25-35","type":"tech_savvy_commuter","climate_preference":{"temp_range":[21,23],"fan_usage":"auto"},"infotainment":{"music_type":"streaming","volume_range":[15,25]},"lighting":{"preference":"auto_adjust","brightness":"medium"},"personality":["efficient","routine-oriented","tech-friendly"]}`,
	`{"age_range":"35-50","type":"family_driver","climate_preference":{"temp_range":[20,22],"fan_usage":"manual"},"infotainment":{"music_type":"radio","volume_range":[10,20]},"lighting":{"preference":"manual","brightness":"low"},"personality":["cautious","comfort-focused","routine-based"]}`,
}

func fallbackSequences() [][]Step {
	temp := 22.0
	volume := 18.0
	return [][]Step{
		{
			{Action: vehicle.ActionClimateTurnOn, TimestampOffset: 10, ContextReason: "Starting car"},
			{Action: vehicle.ActionClimateSetTemp, TimestampOffset: 15, ContextReason: "Setting comfort temperature", Value: &temp},
			{Action: vehicle.ActionInfotainmentPlay, TimestampOffset: 30, ContextReason: "Starting music"},
			{Action: vehicle.ActionSetVolume, TimestampOffset: 35, ContextReason: "Adjusting volume", Value: &volume},
		},
		{
			{Action: vehicle.ActionLightsTurnOn, TimestampOffset: 5, ContextReason: "Dark conditions"},
			{Action: vehicle.ActionSeatsHeatOn, TimestampOffset: 20, ContextReason: "Cold weather"},
			{Action: vehicle.ActionClimateTurnOn, TimestampOffset: 25, ContextReason: "Defrosting"},
		},
	}
}

// fallbackPersona picks one canned persona document.
func fallbackPersona(rng *rand.Rand) string {
	return fallbackPersonas[rng.Intn(len(fallbackPersonas))]
}

// fallbackSequence picks one canned action sequence.
func fallbackSequence(rng *rand.Rand) []Step {
	sequences := fallbackSequences()
	return sequences[rng.Intn(len(sequences))]
}

// requestPersona asks the chat model for a persona document. Responses
// that are not valid JSON objects are wrapped in a descriptive document
// instead of being rejected.
func requestPersona(ctx context.Context, chat ChatCompleter, model string) (string, error) {
	resp, err := chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: personaPrompt},
		},
		Temperature: 0.8,
	})
	if err != nil {
		return "", fmt.Errorf("persona completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("persona completion: empty response")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		return text, nil
	}
	wrapped, err := json.Marshal(map[string]string{
		"description": text,
		"type":        "descriptive",
	})
	if err != nil {
		return "", fmt.Errorf("wrap persona: %w", err)
	}
	return string(wrapped), nil
}

func sequencePrompt(persona string, tripCtx TripContext) (string, error) {
	ctxJSON, err := json.Marshal(tripCtx)
	if err != nil {
		return "", fmt.Errorf("encode trip context: %w", err)
	}
	return fmt.Sprintf(`Based on this driver persona: %s
And this trip context: %s

Generate a realistic sequence of 5-15 car actions that this driver would perform.
Use these exact action names: %s

Consider:
- Logical action sequences (e.g., turning on climate before adjusting temperature)
- Driver habits and preferences
- Trip context (weather, time, destination)
- Realistic timing between actions

Return as JSON array with objects containing:
- action: the exact action name
- timestamp_offset: seconds from trip start
- context_reason: why this action makes sense
- value: any specific value (temperature, volume, etc.)`,
		persona, ctxJSON, strings.Join(vehicle.Actions(), ", ")), nil
}

// requestSequence asks the chat model for a trip action sequence.
func requestSequence(ctx context.Context, chat ChatCompleter, model, persona string, tripCtx TripContext) ([]Step, error) {
	prompt, err := sequencePrompt(persona, tripCtx)
	if err != nil {
		return nil, err
	}
	resp, err := chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("sequence completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("sequence completion: empty response")
	}
	raw, ok := extractJSONArray(resp.Choices[0].Message.Content)
	if !ok {
		return nil, errors.New("sequence completion: no JSON array in response")
	}
	var steps []Step
	if err := json.Unmarshal([]byte(raw), &steps); err != nil {
		return nil, fmt.Errorf("decode sequence: %w", err)
	}
	if len(steps) == 0 {
		return nil, errors.New("sequence completion: empty sequence")
	}
	return steps, nil
}

// extractJSONArray cuts the first-to-last bracket span out of a chat
// response, tolerating prose around the payload.
func extractJSONArray(text string) (string, bool) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}
