package warren

import (
	"context"
	"fmt"
	"os"

	"github.com/user/hutch/pkg/chat"
)

// Environment variables consulted by NewFromEnv.
const (
	EnvBaseURL = "WARREN_BASE_URL"
	EnvAPIKey  = "WARREN_API_KEY"
	EnvAgentID = "WARREN_AGENT_ID"
)

// Provider exposes one Warren agent as a chat.Model. Prompts are flattened
// into the platform's message-creation payload, and the events each turn
// produces are aggregated back into UI messages.
type Provider struct {
	client  *Client
	agentID string
	kinds   []EventKind
	extra   map[string]any
}

// ProviderOption configures a Provider.
type ProviderOption func(*Provider)

// WithClient sets the platform client.
func WithClient(client *Client) ProviderOption {
	return func(p *Provider) { p.client = client }
}

// WithAgent selects the agent all calls are addressed to.
func WithAgent(agentID string) ProviderOption {
	return func(p *Provider) { p.agentID = agentID }
}

// WithEventKinds restricts which event kinds appear in replies and history.
func WithEventKinds(kinds ...EventKind) ProviderOption {
	return func(p *Provider) { p.kinds = kinds }
}

// WithCreateField passes an extra field through into every message-creation
// request body.
func WithCreateField(key string, value any) ProviderOption {
	return func(p *Provider) {
		if p.extra == nil {
			p.extra = make(map[string]any)
		}
		p.extra[key] = value
	}
}

// New creates a Provider. Without options it talks to DefaultBaseURL with
// no agent selected.
func New(opts ...ProviderOption) *Provider {
	p := &Provider{client: NewClient()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromEnv creates a Provider configured from WARREN_BASE_URL,
// WARREN_API_KEY and WARREN_AGENT_ID.
func NewFromEnv(opts ...ProviderOption) *Provider {
	clientOpts := []ClientOption{}
	if base := os.Getenv(EnvBaseURL); base != "" {
		clientOpts = append(clientOpts, WithBaseURL(base))
	}
	if key := os.Getenv(EnvAPIKey); key != "" {
		clientOpts = append(clientOpts, WithAPIKey(key))
	}
	merged := append([]ProviderOption{
		WithClient(NewClient(clientOpts...)),
		WithAgent(os.Getenv(EnvAgentID)),
	}, opts...)
	return New(merged...)
}

// AgentID returns the agent this provider is addressed to.
func (p *Provider) AgentID() string { return p.agentID }

func (p *Provider) aggregateOpts() []AggregateOption {
	if len(p.kinds) == 0 {
		return nil
	}
	return []AggregateOption{WithKinds(p.kinds...)}
}

// Generate flattens the prompt, submits it to the agent, and aggregates the
// resulting events into UI messages.
func (p *Provider) Generate(ctx context.Context, prompt []chat.PromptMessage) (*chat.Reply, error) {
	creates, err := FlattenPrompt(prompt)
	if err != nil {
		return nil, fmt.Errorf("flattening prompt: %w", err)
	}

	resp, err := p.client.CreateMessages(ctx, p.agentID, CreateRequest{Messages: creates, Extra: p.extra})
	if err != nil {
		return nil, fmt.Errorf("creating messages: %w", err)
	}

	messages, err := AggregateEvents(resp.Messages, p.aggregateOpts()...)
	if err != nil {
		return nil, fmt.Errorf("aggregating events: %w", err)
	}

	return &chat.Reply{
		Messages: messages,
		Usage: chat.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
			TotalTokens:  resp.Usage.TotalTokens,
		},
	}, nil
}

// Stream sends the prompt and returns a channel of incremental deltas.
// In v1, this is a simple wrapper over Generate that sends the complete
// reply as a single delta, then closes the channel.
func (p *Provider) Stream(ctx context.Context, prompt []chat.PromptMessage) (<-chan chat.Delta, error) {
	reply, err := p.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	ch := make(chan chat.Delta, 1)
	ch <- chat.Delta{
		Messages: reply.Messages,
		Usage:    &reply.Usage,
	}
	close(ch)

	return ch, nil
}

// History fetches up to limit events of the agent's conversation history
// and aggregates them into UI messages.
func (p *Provider) History(ctx context.Context, limit int) ([]chat.UIMessage, error) {
	events, err := p.client.ListMessages(ctx, p.agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	messages, err := AggregateEvents(events, p.aggregateOpts()...)
	if err != nil {
		return nil, fmt.Errorf("aggregating events: %w", err)
	}
	return messages, nil
}

// Tools returns placeholder definitions for the tools attached to the
// agent. Tools execute on the server; these stubs exist so callers can
// render tool parts without local schemas.
func (p *Provider) Tools(ctx context.Context) ([]chat.Tool, error) {
	agent, err := p.client.GetAgent(ctx, p.agentID)
	if err != nil {
		return nil, fmt.Errorf("fetching agent: %w", err)
	}
	tools := make([]chat.Tool, 0, len(agent.Tools))
	for _, name := range agent.Tools {
		tools = append(tools, PlaceholderTool(name))
	}
	return tools, nil
}
