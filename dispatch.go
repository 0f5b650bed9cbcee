package graphstream

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// RunState tracks where a stream invocation is in its lifecycle.
type RunState int

const (
	RunStateIdle      RunState = iota // Before any event is dispatched.
	RunStateStarted                   // Metadata received.
	RunStateStreaming                 // Chat/tool/chain events flowing.
	RunStateCompleted                 // End received.
)

// String returns a human-readable state name
func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateStarted:
		return "started"
	case RunStateStreaming:
		return "streaming"
	case RunStateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Callbacks are the notifications a Processor raises while consuming a
// stream. All fields are optional; a nil callback is simply not invoked.
// Callbacks run synchronously on the consuming goroutine, in stream
// order, and never interleave with each other.
type Callbacks struct {
	// OnRunStart fires on the start-of-run metadata event
	OnRunStart func(runID string)

	// OnToken fires once per surfaced token of incremental model output
	OnToken func(token string)

	// OnStatus fires on each status line change; each emission replaces
	// the previous status
	OnStatus func(status StreamStatus)

	// OnToolCall fires with the tool invocation record built at tool end
	OnToolCall func(call StreamToolCall)

	// OnRecommendations fires per recommendation payload at generate
	// completion; product and menu may both fire from the same event
	OnRecommendations func(kind RecommendationKind, recs Recommendations)

	// OnComplete fires on the end event
	OnComplete func()
}

// Handler processes one decoded event.
type Handler func(ev *StreamEvent)

// Processor consumes a decoded event stream in order and routes each
// event to the handler registered for its tag. Tags without a handler
// are an explicit no-op, counted and observable via Skipped.
//
// The built-in handlers for the recognized tag set are registered at
// construction; Unregister and Register allow replacing them.
type Processor struct {
	callbacks Callbacks
	logger    *zap.Logger

	mu       sync.RWMutex
	handlers map[EventTag]Handler
	state    RunState
	skipped  int
}

// ProcessorOption is a function for configuring the Processor
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the logger used for ignored-event reporting
func WithProcessorLogger(logger *zap.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a processor raising the given callbacks.
func NewProcessor(callbacks Callbacks, opts ...ProcessorOption) *Processor {
	p := &Processor{
		callbacks: callbacks,
		logger:    zap.NewNop(),
		handlers:  make(map[EventTag]Handler),
		state:     RunStateIdle,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.registerBuiltInHandlers()
	return p
}

// registerBuiltInHandlers registers the handlers for the recognized tags
func (p *Processor) registerBuiltInHandlers() {
	_ = p.Register(EventMetadata, p.handleStart)
	_ = p.Register(EventEnd, p.handleEnd)
	_ = p.Register(EventToolStart, p.handleToolStart)
	_ = p.Register(EventToolEnd, p.handleToolEnd)
	_ = p.Register(EventChainStart, p.handleChainStart)
	_ = p.Register(EventChainEnd, p.handleChainEnd)
	_ = p.Register(EventChatModelStream, p.handleChatModelStream)
}

// Register adds a handler for an event tag.
func (p *Processor) Register(tag EventTag, h Handler) error {
	if tag == "" {
		return fmt.Errorf("graphstream: event tag is required")
	}
	if h == nil {
		return fmt.Errorf("graphstream: handler is required for tag %s", tag)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.handlers[tag]; exists {
		return fmt.Errorf("graphstream: handler for %s is already registered", tag)
	}

	p.handlers[tag] = h
	return nil
}

// Unregister removes the handler for an event tag.
// This is useful for testing or replacing a built-in handler.
func (p *Processor) Unregister(tag EventTag) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.handlers[tag]; !exists {
		return fmt.Errorf("graphstream: no handler registered for %s", tag)
	}

	delete(p.handlers, tag)
	return nil
}

// Process consumes the event channel to completion, dispatching each
// event in arrival order. It returns when the channel closes, or with
// ctx.Err() if the context is cancelled first.
func (p *Processor) Process(ctx context.Context, events <-chan StreamEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.Dispatch(&ev)
		}
	}
}

// Dispatch routes a single event. Exactly one handler fires per event;
// an unregistered tag is counted and dropped.
func (p *Processor) Dispatch(ev *StreamEvent) {
	p.mu.Lock()
	handler, known := p.handlers[ev.Event]
	if known {
		p.advance(ev.Event)
	} else {
		p.skipped++
	}
	p.mu.Unlock()

	if !known {
		p.logger.Debug("ignoring unhandled event", zap.String("event", ev.Event.String()))
		return
	}
	handler(ev)
}

// advance moves the run state machine. Called with p.mu held.
// Idle → Started on metadata, → Streaming on any chat/tool/chain event,
// → Completed on end. Completed is terminal.
func (p *Processor) advance(tag EventTag) {
	if p.state == RunStateCompleted {
		return
	}
	switch tag {
	case EventMetadata:
		if p.state == RunStateIdle {
			p.state = RunStateStarted
		}
	case EventEnd:
		p.state = RunStateCompleted
	default:
		p.state = RunStateStreaming
	}
}

// State returns the current run state.
func (p *Processor) State() RunState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Skipped returns how many events with unregistered tags were dropped.
func (p *Processor) Skipped() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.skipped
}

// Handle metadata events.
func (p *Processor) handleStart(ev *StreamEvent) {
	if p.callbacks.OnRunStart == nil {
		return
	}
	runID := ev.RunID
	if runID == "" {
		runID = ev.Data.RunID
	}
	p.callbacks.OnRunStart(runID)
}

// Handle the end of the run.
func (p *Processor) handleEnd(*StreamEvent) {
	if p.callbacks.OnComplete != nil {
		p.callbacks.OnComplete()
	}
}

// Handle the start of a tool or retriever execution.
func (p *Processor) handleToolStart(ev *StreamEvent) {
	if p.callbacks.OnStatus == nil {
		return
	}
	p.callbacks.OnStatus(StreamStatus{
		Content: StatusLookingUp(ev.Data.InputQuery()),
		Name:    ev.Name,
	})
}

// Handle the end of a tool execution.
func (p *Processor) handleToolEnd(ev *StreamEvent) {
	if p.callbacks.OnToolCall != nil {
		p.callbacks.OnToolCall(ev.Data.ToolCall())
	}
	if p.callbacks.OnStatus != nil {
		p.callbacks.OnStatus(StreamStatus{
			Content: StatusToolDone(),
			Name:    ev.Name,
		})
	}
}

// Handle the start of chain execution.
func (p *Processor) handleChainStart(ev *StreamEvent) {
	if ev.Name != generateStepName || p.callbacks.OnStatus == nil {
		return
	}
	p.callbacks.OnStatus(StreamStatus{
		Content: StatusFinalizing(),
		Name:    ev.Name,
	})
}

// Handle the end of chain execution.
func (p *Processor) handleChainEnd(ev *StreamEvent) {
	if ev.Name != generateStepName || p.callbacks.OnRecommendations == nil {
		return
	}

	out, err := ev.Data.ChainOutput()
	if err != nil {
		p.logger.Warn("skipping malformed chain output", zap.Error(err))
		return
	}
	if out == nil {
		return
	}

	if out.ProductRecommendations != nil {
		p.callbacks.OnRecommendations(RecommendationProduct, out.ProductRecommendations)
	}
	if out.MenuRecommendations != nil {
		p.callbacks.OnRecommendations(RecommendationMenu, out.MenuRecommendations)
	}
}

// Handle chat model stream events.
func (p *Processor) handleChatModelStream(ev *StreamEvent) {
	if p.callbacks.OnToken == nil || ev.Data.Chunk == nil {
		return
	}
	if token, ok := ev.Data.Chunk.Content.Token(); ok {
		p.callbacks.OnToken(token)
	}
}

// generateStepName is the chain step whose lifecycle drives the
// finalizing status and the recommendation payloads.
const generateStepName = "generate"
