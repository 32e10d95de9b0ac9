package llm

import (
	"encoding/json"
)

const systemInstruction = "You are a helpful assistant."

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatPayload is the chat-completions body shared by the OpenAI and custom
// adapters. The custom adapter leaves Temperature nil.
type chatPayload struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
}

func newChatPayload(model, prompt string, temperature *float64) chatPayload {
	return chatPayload{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
		Temperature: temperature,
	}
}

// chatChoiceContent extracts choices[0].message.content. ok is false when the
// body has no such structure.
func chatChoiceContent(body []byte) (text string, ok bool) {
	var result struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", false
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == nil {
		return "", false
	}
	return *result.Choices[0].Message.Content, true
}

// contentBlockText extracts content[0].text from a message-style body.
func contentBlockText(body []byte) (text string, ok bool) {
	var result struct {
		Content []struct {
			Text *string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", false
	}
	if len(result.Content) == 0 || result.Content[0].Text == nil {
		return "", false
	}
	return *result.Content[0].Text, true
}
