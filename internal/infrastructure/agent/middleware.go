package agent

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/QuangHuy54/IntelligentChatbot/internal/domain/entity"
)

// toolErrorFormat is the text the model sees in place of a failed tool's
// output.
const toolErrorFormat = "Tool error: Please check your input and try again. (%s)"

// ToolInvoker runs one tool call.
type ToolInvoker func(ctx context.Context, call entity.ToolCall) (entity.ToolResult, error)

// ToolMiddleware wraps a ToolInvoker.
type ToolMiddleware func(next ToolInvoker) ToolInvoker

// Chain wraps final with the middleware. The first middleware is outermost.
func Chain(final ToolInvoker, mws ...ToolMiddleware) ToolInvoker {
	for i := len(mws) - 1; i >= 0; i-- {
		final = mws[i](final)
	}
	return final
}

// RecoverToolErrors turns a failing tool call into a result the model can
// read and react to. Errors, panics and results the tool itself flags as
// errors all become a tool message built from toolErrorFormat. Context
// cancellation is passed through untouched.
func RecoverToolErrors(logger *slog.Logger) ToolMiddleware {
	return func(next ToolInvoker) ToolInvoker {
		return func(ctx context.Context, call entity.ToolCall) (res entity.ToolResult, err error) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("tool panic recovered",
						"tool", call.Name,
						"tool_call_id", call.ID,
						"panic", fmt.Sprintf("%v", r),
						"stack", string(debug.Stack()),
					)
					res, err = toolErrorResult(call, fmt.Sprintf("%v", r)), nil
				}
			}()

			res, err = next(ctx, call)
			if err != nil {
				if ctx.Err() != nil {
					return res, err
				}
				logger.Warn("tool call failed", "tool", call.Name, "tool_call_id", call.ID, "error", err)
				return toolErrorResult(call, err.Error()), nil
			}
			if res.IsError {
				logger.Warn("tool reported an error", "tool", call.Name, "tool_call_id", call.ID, "content", res.Content)
				res.Content = fmt.Sprintf(toolErrorFormat, res.Content)
			}
			return res, nil
		}
	}
}

func toolErrorResult(call entity.ToolCall, detail string) entity.ToolResult {
	return entity.ToolResult{
		ToolCallID: call.ID,
		Content:    fmt.Sprintf(toolErrorFormat, detail),
		IsError:    true,
	}
}
