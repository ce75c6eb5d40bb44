// Package ollama provides a model wrapper for a local Ollama server. It
// adapts finbrief's normalized Request/Response structures into the Ollama
// chat API (including streaming + tool calling), letting agents run against
// local models without any hosted credential.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"finbrief/core"
	"finbrief/internal/util"
	"finbrief/model"
)

// DefaultModel is the completion model used when none is configured.
const DefaultModel = "llama3.2"

// Options configures the Ollama model adapter.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// Host is the Ollama server base URL, e.g. "http://localhost:11434".
	// When empty the OLLAMA_HOST environment variable (or the client
	// default) applies. Only consulted by NewModel.
	Host string
}

// Model wraps the Ollama chat API behind the generic model.Model interface.
type Model struct {
	client  *api.Client
	opts    Options
	initErr error
}

// NewModel creates a new Ollama model. An invalid host is reported on the
// error channel of the first Generate call rather than panicking here.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var (
		client  *api.Client
		initErr error
	)
	if opts.Host == "" {
		client, initErr = api.ClientFromEnvironment()
	} else {
		base, err := url.Parse(opts.Host)
		if err != nil {
			initErr = fmt.Errorf("parse ollama host %q: %w", opts.Host, err)
		} else {
			client = api.NewClient(base, http.DefaultClient)
		}
	}

	return &Model{client: client, opts: opts, initErr: initErr}
}

// NewModelFromClient creates a new Ollama model from an existing client. The
// Host option is ignored; the client is used as provided.
func NewModelFromClient(client *api.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       DefaultModel,
		Temperature: 0.7,
		MaxTokens:   4096,
	}
}

// Generate implements unified streaming / non-streaming generation against
// the Ollama chat endpoint.
func (m *Model) Generate(ctx context.Context, req *model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		if m.initErr != nil {
			errCh <- m.initErr
			return
		}

		stream := req.Stream
		chatReq := &api.ChatRequest{
			Model:    m.opts.Model,
			Messages: buildMessages(req),
			Stream:   &stream,
			Options: map[string]any{
				"temperature": m.opts.Temperature,
				"num_predict": m.opts.MaxTokens,
			},
		}
		if len(req.Tools) > 0 {
			chatReq.Tools = buildTools(req.Tools)
		}

		if stream {
			m.handleStreaming(ctx, chatReq, out, errCh)
			return
		}
		m.handleNonStreaming(ctx, chatReq, out, errCh)
	}()

	return out, errCh
}

// buildMessages converts normalized contents into Ollama chat messages.
// Request instructions become the leading system message; each function
// response is sent as a separate message with role "tool".
func buildMessages(req *model.Request) []api.Message {
	var messages []api.Message
	if req.Instructions != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.Instructions})
	}
	for _, c := range req.Contents {
		switch c.Role {
		case "system":
			messages = append(messages, api.Message{Role: "system", Content: c.Text()})
		case "assistant":
			msg := api.Message{Role: "assistant", Content: c.Text()}
			if calls := c.FunctionCalls(); len(calls) > 0 {
				msg.ToolCalls = make([]api.ToolCall, len(calls))
				for i, fc := range calls {
					args := api.ToolCallFunctionArguments{}
					if fc.Arguments != "" {
						_ = json.Unmarshal([]byte(fc.Arguments), &args)
					}
					msg.ToolCalls[i] = api.ToolCall{
						ID: fc.ID,
						Function: api.ToolCallFunction{
							Name:      fc.Name,
							Arguments: args,
						},
					}
				}
			}
			messages = append(messages, msg)
		case "tool":
			for _, p := range c.Parts {
				fr, ok := p.(core.FunctionResponsePart)
				if !ok {
					continue
				}
				messages = append(messages, api.Message{
					Role:       "tool",
					Content:    serializeToolResponse(fr.FunctionResponse),
					ToolCallID: fr.FunctionResponse.ID,
				})
			}
		default:
			if text := c.Text(); text != "" {
				messages = append(messages, api.Message{Role: "user", Content: text})
			}
		}
	}
	return messages
}

// serializeToolResponse renders a function response as the text payload sent
// back to the model. Failed invocations surface their error message so the
// model can degrade gracefully instead of stalling on missing data.
func serializeToolResponse(fr core.FunctionResponse) string {
	if fr.Error != "" {
		data, err := json.Marshal(map[string]string{"error": fr.Error})
		if err != nil {
			return fmt.Sprintf(`{"error":%q}`, fr.Error)
		}
		return string(data)
	}
	if s, ok := fr.Response.(string); ok {
		return s
	}
	data, err := json.Marshal(fr.Response)
	if err != nil {
		return fmt.Sprintf("%v", fr.Response)
	}
	return string(data)
}

// buildTools converts tool definitions to Ollama tool format.
func buildTools(defs []model.ToolDefinition) api.Tools {
	tools := make(api.Tools, len(defs))
	for i, td := range defs {
		params := td.Function.Parameters

		schemaType := "object"
		if t, ok := params["type"].(string); ok && t != "" {
			schemaType = t
		}

		properties := make(map[string]api.ToolProperty)
		if props, ok := params["properties"].(map[string]any); ok {
			for name, raw := range props {
				properties[name] = buildProperty(raw)
			}
		}

		tools[i] = api.Tool{
			Type: "function",
			Function: api.ToolFunction{
				Name:        td.Function.Name,
				Description: td.Function.Description,
				Parameters: api.ToolFunctionParameters{
					Type:       schemaType,
					Properties: properties,
					Required:   util.RequiredFields(params),
				},
			},
		}
	}
	return tools
}

// buildProperty converts a single JSON schema property to Ollama format.
func buildProperty(raw any) api.ToolProperty {
	propMap, ok := raw.(map[string]any)
	if !ok {
		return api.ToolProperty{Type: api.PropertyType{"string"}}
	}
	prop := api.ToolProperty{}
	if t, ok := propMap["type"].(string); ok && t != "" {
		prop.Type = api.PropertyType{t}
	}
	if d, ok := propMap["description"].(string); ok {
		prop.Description = d
	}
	if e, ok := propMap["enum"].([]any); ok {
		prop.Enum = e
	}
	return prop
}

// handleStreaming forwards partial chunks as they arrive and a final
// response when the server reports completion.
func (m *Model) handleStreaming(
	ctx context.Context,
	chatReq *api.ChatRequest,
	out chan<- model.Response,
	errCh chan<- error,
) {
	var textBuilder strings.Builder
	var toolCalls []api.ToolCall

	err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		if resp.Message.Content != "" {
			textBuilder.WriteString(resp.Message.Content)
			out <- model.Response{
				Partial: true,
				Content: core.Content{
					Role:  "assistant",
					Parts: []core.Part{core.TextPart{Text: resp.Message.Content}},
				},
			}
		}
		if len(resp.Message.ToolCalls) > 0 {
			toolCalls = append(toolCalls, resp.Message.ToolCalls...)
		}
		if resp.Done {
			out <- m.finalResponse(textBuilder.String(), toolCalls, &resp)
		}
		return nil
	})
	if err != nil {
		errCh <- fmt.Errorf("ollama api error: %w", err)
	}
}

// handleNonStreaming captures the single complete response.
func (m *Model) handleNonStreaming(
	ctx context.Context,
	chatReq *api.ChatRequest,
	out chan<- model.Response,
	errCh chan<- error,
) {
	var final api.ChatResponse
	err := m.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		errCh <- fmt.Errorf("ollama api error: %w", err)
		return
	}
	out <- m.finalResponse(final.Message.Content, final.Message.ToolCalls, &final)
}

// finalResponse assembles the terminal model.Response from accumulated text
// and tool calls. Missing tool call ids are filled positionally.
func (m *Model) finalResponse(text string, toolCalls []api.ToolCall, resp *api.ChatResponse) model.Response {
	parts := make([]core.Part, 0, len(toolCalls)+1)
	if text != "" {
		parts = append(parts, core.TextPart{Text: text})
	}
	for i, tc := range toolCalls {
		id := tc.ID
		if id == "" {
			id = fmt.Sprintf("call_%d", i)
		}
		args := ""
		if tc.Function.Arguments != nil {
			if data, err := json.Marshal(tc.Function.Arguments); err == nil {
				args = string(data)
			}
		}
		parts = append(parts, core.FunctionCallPart{FunctionCall: core.FunctionCall{
			ID:        id,
			Name:      tc.Function.Name,
			Arguments: args,
		}})
	}

	finishReason := resp.DoneReason
	if finishReason == "" {
		finishReason = "stop"
	}

	return model.Response{
		Partial:      false,
		Content:      core.Content{Role: "assistant", Parts: parts},
		FinishReason: finishReason,
		Usage: &model.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "ollama",
		SupportsTools: true,
	}
}
