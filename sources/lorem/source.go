// Package lorem is a mock event source that generates a plausible run of
// graph stream events from lorem ipsum text. Used for UI development and
// testing without a running graph server.
package lorem

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"
	"github.com/google/uuid"

	graphstream "github.com/haowjy/graphstream-go"
)

// Source generates one synthetic run per StreamEvents call:
// metadata → tool start/end → generate start → token stream →
// generate end (with product and menu recommendations) → end.
type Source struct {
	generator *loremgen.Lorem
	delay     time.Duration
	words     int
}

// SourceOption is a function for configuring the Source
type SourceOption func(*Source)

// WithDelay sets the pause between streamed tokens (default 50ms)
func WithDelay(delay time.Duration) SourceOption {
	return func(s *Source) {
		s.delay = delay
	}
}

// WithWordCount sets how many tokens the run streams (default 40)
func WithWordCount(words int) SourceOption {
	return func(s *Source) {
		if words > 0 {
			s.words = words
		}
	}
}

// NewSource creates a new lorem ipsum event source.
func NewSource(opts ...SourceOption) *Source {
	s := &Source{
		generator: loremgen.New(),
		delay:     50 * time.Millisecond,
		words:     40,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ graphstream.Streamer = (*Source)(nil)

// StreamEvents emits a synthetic run for the submitted turn.
// The channel is closed after the end event or when ctx is cancelled.
func (s *Source) StreamEvents(ctx context.Context, req *graphstream.StreamRequest) (<-chan graphstream.StreamEvent, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("lorem: submission carries no messages")
	}

	query := lastHumanContent(req.Messages)
	runID := uuid.NewString()

	events := make(chan graphstream.StreamEvent, 10)

	go func() {
		defer close(events)

		send := func(ev graphstream.StreamEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case events <- ev:
				return true
			}
		}

		if !send(graphstream.StreamEvent{Event: graphstream.EventMetadata, RunID: runID}) {
			return
		}

		// Tool lookup phase.
		toolInput := rawJSON(map[string]any{"query": query})
		if !send(graphstream.StreamEvent{
			Event: graphstream.EventToolStart,
			Name:  "catalog_retriever",
			RunID: runID,
			Data:  graphstream.EventData{Input: toolInput},
		}) {
			return
		}
		if !send(graphstream.StreamEvent{
			Event: graphstream.EventToolEnd,
			Name:  "catalog_retriever",
			RunID: runID,
			Data: graphstream.EventData{
				Input: toolInput,
				Output: rawJSON(map[string]any{
					"tool_call_id": "call_" + uuid.NewString(),
					"name":         "catalog_retriever",
					"documents":    s.generator.Sentence(5, 10),
				}),
			},
		}) {
			return
		}

		// Generate phase.
		if !send(graphstream.StreamEvent{
			Event: graphstream.EventChainStart,
			Name:  "generate",
			RunID: runID,
		}) {
			return
		}

		for i, word := range strings.Fields(s.generateWords(s.words)) {
			content := graphstream.ChunkContent{
				Shape: graphstream.ContentShapePlain,
				Text:  word + " ",
			}
			// Every fourth chunk arrives in the parted provider shape so
			// consumers exercise both wire forms.
			if i%4 == 3 {
				content = graphstream.ChunkContent{
					Shape: graphstream.ContentShapeParts,
					Parts: []graphstream.ContentPart{{Type: "text", Text: word + " "}},
				}
			}

			if !send(graphstream.StreamEvent{
				Event: graphstream.EventChatModelStream,
				RunID: runID,
				Data:  graphstream.EventData{Chunk: &graphstream.Chunk{Content: content}},
			}) {
				return
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(s.delay):
			}
		}

		if !send(graphstream.StreamEvent{
			Event: graphstream.EventChainEnd,
			Name:  "generate",
			RunID: runID,
			Data: graphstream.EventData{
				Output: rawJSON(graphstream.ChainOutput{
					ProductRecommendations: s.productRecommendations(query),
					MenuRecommendations:    s.menuRecommendations(query),
				}),
			},
		}) {
			return
		}

		send(graphstream.StreamEvent{Event: graphstream.EventEnd, RunID: runID})
	}()

	return events, nil
}

// productRecommendations builds a mock product payload for the query.
func (s *Source) productRecommendations(query string) *graphstream.ProductRecommendations {
	recs := make([]graphstream.Product, 0, 3)
	for i := 0; i < 3; i++ {
		recs = append(recs, graphstream.Product{
			Item:       s.item(),
			SKU:        fmt.Sprintf("SKU-%04d", i+1),
			ImageURL:   "https://example.com/images/" + s.generator.Word(3, 8) + ".png",
			ProductURL: "https://example.com/products/" + s.generator.Word(3, 8),
			CartURL:    "https://example.com/cart/add/" + s.generator.Word(3, 8),
		})
	}
	return &graphstream.ProductRecommendations{Recommendations: recs, Query: query}
}

// menuRecommendations builds a mock menu payload for the query.
func (s *Source) menuRecommendations(query string) *graphstream.MenuRecommendations {
	recs := make([]graphstream.MenuItem, 0, 3)
	for i := 0; i < 3; i++ {
		recs = append(recs, graphstream.MenuItem{
			Item: s.item(),
			Icon: "🍽️",
		})
	}
	return &graphstream.MenuRecommendations{Recommendations: recs, Query: query}
}

// item builds one mock recommended record.
func (s *Source) item() graphstream.Item {
	return graphstream.Item{
		Name:        s.generator.Word(4, 10),
		Price:       "$12.50",
		Description: s.generator.Sentence(5, 12),
		Reason:      s.generator.Sentence(4, 8),
		Category:    s.generator.Word(4, 8),
		Tags:        []string{s.generator.Word(3, 7), s.generator.Word(3, 7)},
	}
}

// generateWords generates lorem ipsum text with approximately targetWords words.
func (s *Source) generateWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := s.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// lastHumanContent returns the content of the most recent human turn.
func lastHumanContent(messages []graphstream.StreamMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Type == graphstream.MessageHuman {
			return messages[i].Content
		}
	}
	return ""
}

// rawJSON marshals a known-good payload shape.
func rawJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		// Shapes here are library-owned; a failure is a programming error.
		panic(fmt.Sprintf("lorem: marshal payload: %v", err))
	}
	return b
}
