package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seetohjy/hdb-insights/internal/adapter/llm"
	"github.com/seetohjy/hdb-insights/internal/domain"
	"github.com/seetohjy/hdb-insights/internal/metrics"
	"github.com/seetohjy/hdb-insights/internal/tools"
)

// EmitFunc delivers one stream event to the caller. A non-nil error means
// the caller is gone and the session must stop emitting.
type EmitFunc func(domain.StreamEvent) error

const questionPrefix = "Use the tools provided to answer the user's question. "

// Session outcomes, for metrics.
const (
	outcomeCompleted     = "completed"
	outcomeUpstreamError = "upstream_error"
	outcomeCapExceeded   = "cap_exceeded"
	outcomeCancelled     = "cancelled"
)

// RunSession processes one user question to completion. It owns the
// conversation history for its lifetime and guarantees the emitted
// sequence start, (assistant_message | tool_call tool_response)*,
// (end | error) — with the terminal event omitted only when the caller
// disconnects first.
func (s *Service) RunSession(ctx context.Context, question string, emit EmitFunc) {
	sessionID := "sess_" + uuid.New().String()[:8]
	log := s.log.With(zap.String("session_id", sessionID))
	log.Info("session started", zap.String("question", question))

	outcome := outcomeCancelled
	turns := 0
	defer func() {
		metrics.SessionsTotal.WithLabelValues(outcome).Inc()
		metrics.SessionTurns.Observe(float64(turns))
		log.Info("session finished", zap.String("outcome", outcome), zap.Int("turns", turns))
	}()

	// send stops the session on caller disconnect; once the context is
	// cancelled no further events may go out.
	send := func(ev domain.StreamEvent) bool {
		if ctx.Err() != nil {
			return false
		}
		if err := emit(ev); err != nil {
			log.Warn("stream write failed, stopping session", zap.Error(err))
			return false
		}
		return true
	}

	if !send(domain.StartEvent()) {
		return
	}

	history := []domain.Message{domain.NewUserText(questionPrefix + question)}
	defs := s.toolset.Definitions()

	for turns < s.config.MaxTurns {
		turns++

		resp, err := s.createMessage(ctx, history, defs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			retryable := llm.IsRetryable(err)
			log.Error("reasoning call failed", zap.Error(err), zap.Bool("retryable", retryable))
			send(domain.ErrorEvent(err.Error(), retryable))
			outcome = outcomeUpstreamError
			return
		}

		history = append(history, domain.Message{Role: domain.RoleAssistant, Content: resp.Content})

		var toolUses []domain.ContentBlock
		for _, block := range resp.Content {
			switch block.Type {
			case domain.BlockTypeText:
				if block.Text == "" {
					continue
				}
				if !send(domain.AssistantMessageEvent(block.Text)) {
					return
				}
			case domain.BlockTypeToolUse:
				toolUses = append(toolUses, block)
			}
		}

		if len(toolUses) == 0 {
			send(domain.EndEvent())
			outcome = outcomeCompleted
			return
		}

		// Dispatch in request order. Results are appended in the same
		// order, so the event stream stays deterministic.
		results := make([]domain.ContentBlock, 0, len(toolUses))
		for _, call := range toolUses {
			if !send(domain.ToolCallEvent(call.Name, call.Input)) {
				return
			}
			payload, failure := s.toolset.Dispatch(ctx, call.Name, call.Input)
			if failure != nil {
				log.Warn("tool failed",
					zap.String("tool", call.Name),
					zap.String("kind", string(failure.Kind)),
					zap.String("detail", failure.Detail))
				payload = tools.FailurePayload(failure)
			}
			// A disconnect during tool execution discards the result.
			if !send(domain.ToolResponseEvent(call.Name, payload)) {
				return
			}
			results = append(results, domain.ContentBlock{
				Type:      domain.BlockTypeToolResult,
				ToolUseID: call.ID,
				Content:   string(payload),
			})
		}
		history = append(history, domain.NewToolResults(results))
	}

	log.Error("turn cap reached without a final answer", zap.Int("max_turns", s.config.MaxTurns))
	send(domain.ErrorEvent("max turns exceeded", false))
	outcome = outcomeCapExceeded
}

func (s *Service) createMessage(ctx context.Context, history []domain.Message, defs []llm.ToolDefinition) (*llm.MessageResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.LLMTimeout)
	defer cancel()

	temperature := 0.1
	start := time.Now()
	resp, err := s.client.CreateMessage(ctx, &llm.MessageRequest{
		Model:       s.config.ReasoningModel,
		MaxTokens:   s.config.MaxTokens,
		Temperature: &temperature,
		Messages:    history,
		Tools:       defs,
	})

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMRequestDuration.WithLabelValues(s.config.ReasoningModel, status).Observe(time.Since(start).Seconds())
	return resp, err
}
