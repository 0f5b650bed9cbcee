package graphstream

import "encoding/json"

// EventTag identifies which kind of record a decoded stream line carries.
// Using a typed constant prevents typos and provides compile-time safety.
//
// The tag set is closed on the server side; tags outside this set are
// dispatched to an explicit no-op (see Processor.Skipped).
type EventTag string

// Known event tags emitted by the graph execution server.
const (
	// EventMetadata is the start-of-run notification.
	EventMetadata EventTag = "metadata"

	// EventEnd signals run completion.
	EventEnd EventTag = "end"

	// EventToolStart marks the start of a tool or retriever execution.
	EventToolStart EventTag = "on_tool_start"

	// EventToolEnd marks the end of a tool execution.
	EventToolEnd EventTag = "on_tool_end"

	// EventChainStart marks the start of a named chain step.
	EventChainStart EventTag = "on_chain_start"

	// EventChainEnd marks the end of a named chain step.
	// The "generate" step carries recommendation payloads in its output.
	EventChainEnd EventTag = "on_chain_end"

	// EventChatModelStream carries one unit of incremental model output.
	EventChatModelStream EventTag = "on_chat_model_stream"
)

// String returns the string representation of the event tag
func (t EventTag) String() string {
	return string(t)
}

// IsKnown returns true if the tag is part of the recognized tag set
func (t EventTag) IsKnown() bool {
	switch t {
	case EventMetadata, EventEnd,
		EventToolStart, EventToolEnd,
		EventChainStart, EventChainEnd,
		EventChatModelStream:
		return true
	default:
		return false
	}
}

// StreamEvent is one decoded record of the server's newline-delimited JSON
// stream. Events are immutable once decoded; one instance exists per line
// and lives only for the duration of a single dispatch call.
type StreamEvent struct {
	// Event selects which handler fires for this record
	Event EventTag `json:"event"`

	// Name is the graph node that produced the event (e.g. "generate")
	Name string `json:"name,omitempty"`

	// RunID identifies the run this event belongs to
	RunID string `json:"run_id,omitempty"`

	// Data carries the tag-specific payload
	Data EventData `json:"data,omitempty"`
}

// EventData is the payload envelope shared by all event tags.
// Input and Output are kept raw because their shape depends on the tag;
// typed views are exposed through the accessor methods below.
type EventData struct {
	// RunID duplicates the envelope run id on some server versions
	RunID string `json:"run_id,omitempty"`

	// Input is the raw input payload (tool args, chain input, ...)
	Input json.RawMessage `json:"input,omitempty"`

	// Output is the raw output payload (tool result, chain output, ...)
	Output json.RawMessage `json:"output,omitempty"`

	// Chunk carries incremental model output for on_chat_model_stream
	Chunk *Chunk `json:"chunk,omitempty"`
}

// Chunk is one unit of incremental model output. Distinct from a network
// chunk: a single read from the wire may carry many of these, and one of
// these may span several reads.
type Chunk struct {
	ID string `json:"id,omitempty"`

	// Content is the incremental output in provider-dependent shape,
	// normalized into a tagged variant at decode time (see ChunkContent).
	Content ChunkContent `json:"content,omitempty"`

	AdditionalKwargs map[string]any `json:"additional_kwargs,omitempty"`
}

// InputQuery extracts the "query" field from the input payload.
// Returns the empty string when input is absent or shaped differently.
func (d EventData) InputQuery() string {
	if len(d.Input) == 0 {
		return ""
	}
	var in struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(d.Input, &in); err != nil {
		return ""
	}
	return in.Query
}

// ToolCall builds a StreamToolCall record from a tool-end payload.
// Identity fields come from the output; the raw input becomes the args
// and the raw output the result.
func (d EventData) ToolCall() StreamToolCall {
	var out struct {
		ToolCallID string `json:"tool_call_id"`
		Name       string `json:"name"`
	}
	if len(d.Output) > 0 {
		// Shape mismatches leave the identity fields empty, matching
		// a server that omitted them.
		_ = json.Unmarshal(d.Output, &out)
	}
	return StreamToolCall{
		ID:     out.ToolCallID,
		Name:   out.Name,
		Args:   d.Input,
		Result: d.Output,
	}
}

// ChainOutput decodes the output payload of a chain-end event.
// Returns nil when no output is present.
func (d EventData) ChainOutput() (*ChainOutput, error) {
	if len(d.Output) == 0 || string(d.Output) == "null" {
		return nil, nil
	}
	var out ChainOutput
	if err := json.Unmarshal(d.Output, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
