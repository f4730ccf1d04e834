package agent

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain"
	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
	"github.com/QuangHuy54/IntelligentChatbot/internal/infrastructure/llm/openai"
)

// errConsumerStopped aborts a model stream once the consumer stops iterating.
var errConsumerStopped = errors.New("agent: consumer stopped")

// Session runs the tool loop for one conversation.
type Session struct {
	client domain.ToolClient
	model  ChatModel
	opts   Options
	invoke ToolInvoker
	logger *slog.Logger
}

// Stream runs completions until the model answers without calling tools.
// Text deltas and tool results are yielded as they happen.
func (s *Session) Stream(ctx context.Context, messages []entity.CanonicalMessage) iter.Seq2[entity.AgentChunk, error] {
	return func(yield func(entity.AgentChunk, error) bool) {
		history := toWireMessages(messages, s.opts.SystemPrompt)
		tools := toWireTools(s.client.Tools())

		for step := 0; step < s.opts.MaxSteps; step++ {
			msgID := uuid.NewString()
			stopped := false
			resp, err := s.model.StreamChatWithTools(ctx, openai.ChatRequest{
				Model:       s.opts.Model,
				Messages:    history,
				Tools:       tools,
				Temperature: s.opts.Temperature,
				MaxTokens:   s.opts.MaxTokens,
			}, func(delta string) error {
				if !yield(entity.AgentChunk{ID: msgID, Text: delta}, nil) {
					stopped = true
					return errConsumerStopped
				}
				return nil
			})
			if stopped {
				return
			}
			if err != nil {
				yield(entity.AgentChunk{}, fmt.Errorf("agent: model call: %w", err))
				return
			}
			if len(resp.ToolCalls) == 0 {
				return
			}

			history = append(history, openai.Message{
				Role:      openai.RoleAssistant,
				Content:   resp.Content,
				ToolCalls: resp.ToolCalls,
			})
			for _, tc := range resp.ToolCalls {
				call := entity.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments}
				s.logger.Debug("invoking tool", "tool", call.Name, "tool_call_id", call.ID, "step", step)

				res, err := s.invoke(ctx, call)
				if err != nil {
					yield(entity.AgentChunk{}, fmt.Errorf("agent: tool %s: %w", call.Name, err))
					return
				}
				if res.ToolCallID == "" {
					res.ToolCallID = call.ID
				}
				if !yield(entity.AgentChunk{
					ID:         uuid.NewString(),
					ToolCallID: res.ToolCallID,
					Text:       res.Content,
					Artifacts:  res.Artifacts,
				}, nil) {
					return
				}
				history = append(history, openai.Message{
					Role:       openai.RoleTool,
					ToolCallID: res.ToolCallID,
					Content:    toolMessageContent(res),
				})
			}
		}

		yield(entity.AgentChunk{}, domain.ErrMaxStepsExceeded)
	}
}

// Close releases the tool server sessions.
func (s *Session) Close() error {
	return s.client.Close()
}

// toolMessageContent is what the model reads back for a tool call. Images
// cannot travel in a tool message, so they are only counted.
func toolMessageContent(res entity.ToolResult) string {
	content := res.Content
	if n := len(res.Artifacts); n > 0 {
		note := fmt.Sprintf("[%d image(s) produced and shown to the user]", n)
		if content == "" {
			return note
		}
		content += "\n" + note
	}
	if content == "" {
		return "(no output)"
	}
	return content
}

func toWireMessages(messages []entity.CanonicalMessage, systemPrompt string) []openai.Message {
	out := make([]openai.Message, 0, len(messages)+1)
	if prompt := strings.TrimSpace(systemPrompt); prompt != "" &&
		(len(messages) == 0 || messages[0].Role != entity.RoleSystem) {
		out = append(out, openai.Message{Role: openai.RoleSystem, Content: prompt})
	}

	for _, m := range messages {
		switch m.Role {
		case entity.RoleSystem:
			out = append(out, openai.Message{Role: openai.RoleSystem, Content: m.Text()})
		case entity.RoleAssistant:
			out = append(out, openai.Message{Role: openai.RoleAssistant, Content: m.Text()})
		default:
			out = append(out, userMessage(m))
		}
	}
	return out
}

// userMessage keeps plain text turns as a string and switches to a part
// list once an image is involved.
func userMessage(m entity.CanonicalMessage) openai.Message {
	hasImage := false
	for _, p := range m.Parts {
		if _, ok := p.(entity.TextPart); !ok {
			hasImage = true
			break
		}
	}
	if !hasImage {
		return openai.Message{Role: openai.RoleUser, Content: m.Text()}
	}

	parts := make([]openai.ContentPart, 0, len(m.Parts))
	for _, p := range m.Parts {
		switch v := p.(type) {
		case entity.TextPart:
			parts = append(parts, openai.TextPart(v.Text))
		case entity.InlineImagePart:
			parts = append(parts, openai.ImagePart(v.DataURI()))
		case entity.RemoteImagePart:
			parts = append(parts, openai.ImagePart(v.URL))
		}
	}
	return openai.Message{Role: openai.RoleUser, Parts: parts}
}

func toWireTools(tools []entity.Tool) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: "function",
			Function: openai.FunctionDef{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}
	return out
}
