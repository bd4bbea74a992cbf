package options

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEventsDisabled is returned when subscribing to a parser created without
// WithEvents.
var ErrEventsDisabled = errors.New("events are not enabled for this parser")

// ParseEventType defines the events emitted while parsing.
type ParseEventType string

const (
	OptionsParsed   ParseEventType = "options:parsed"
	OptionsRejected ParseEventType = "options:rejected"
)

// ParseEvent is emitted once per parse. Rejected events carry the issues that
// were raised.
type ParseEvent struct {
	ID        string         `json:"id"`
	Type      ParseEventType `json:"type"`
	Timestamp int64          `json:"timestamp"`        // Unix milliseconds
	Duration  int64          `json:"duration"`         // Microseconds spent parsing
	Input     map[string]any `json:"input,omitempty"`  // The raw parameters
	Output    *Result        `json:"output,omitempty"` // The parse result
	Issues    []Issue        `json:"issues,omitempty"` // Set on rejected events
	Context   map[string]any `json:"context,omitempty"`
}

// EventCallbackFunction handles a parse event.
type EventCallbackFunction func(ctx context.Context, event ParseEvent) error

// RegisterSubscriptionOptions describes a subscription to parse events.
type RegisterSubscriptionOptions struct {
	Event       ParseEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Callback    EventCallbackFunction
}

// SubscriptionInfo describes an active subscription.
type SubscriptionInfo struct {
	ID          string         `json:"id"`
	Event       ParseEventType `json:"event"`
	Label       *string        `json:"label,omitempty"`
	Description *string        `json:"description,omitempty"`
	Unsubscribe func()         `json:"-"`
}

// RegisterSubscription registers a callback for a parse event. It returns a
// unique ID that can be used to unregister the subscription later.
func (p *Parser) RegisterSubscription(options RegisterSubscriptionOptions) (string, error) {
	if p.bus == nil {
		return "", ErrEventsDisabled
	}

	p.subMu.Lock()
	defer p.subMu.Unlock()

	unsubscribe := p.bus.Subscribe(string(options.Event), options.Callback)
	id := uuid.New().String()
	p.subscriptions[id] = &SubscriptionInfo{
		ID:          id,
		Event:       options.Event,
		Label:       options.Label,
		Description: options.Description,
		Unsubscribe: unsubscribe,
	}
	p.logger.Debug("Subscription registered", zap.String("id", id), zap.String("event", string(options.Event)))
	return id, nil
}

// UnregisterSubscription removes a subscription by its ID.
func (p *Parser) UnregisterSubscription(id string) {
	p.subMu.Lock()
	defer p.subMu.Unlock()

	if info, ok := p.subscriptions[id]; ok {
		info.Unsubscribe()
		delete(p.subscriptions, id)
	}
}

// Subscriptions returns all currently active subscriptions.
func (p *Parser) Subscriptions() []SubscriptionInfo {
	p.subMu.RLock()
	defer p.subMu.RUnlock()

	subs := make([]SubscriptionInfo, 0, len(p.subscriptions))
	for _, sub := range p.subscriptions {
		subs = append(subs, *sub)
	}
	return subs
}

func (p *Parser) emit(params map[string]any, result Result, started time.Time) {
	if p.bus == nil {
		return
	}

	event := ParseEvent{
		ID:        uuid.New().String(),
		Type:      OptionsParsed,
		Timestamp: started.UnixMilli(),
		Duration:  time.Since(started).Microseconds(),
		Input:     params,
		Output:    &result,
	}
	if result.HasErrors() {
		event.Type = OptionsRejected
		event.Issues = result.Errors
	}
	p.bus.Emit(string(event.Type), event)
}
