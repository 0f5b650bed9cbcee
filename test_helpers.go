package graphstream

import "encoding/json"

// Test helper functions shared across test files

func raw(s string) json.RawMessage {
	return json.RawMessage(s)
}

func plainChunkEvent(text string) StreamEvent {
	return StreamEvent{
		Event: EventChatModelStream,
		Data: EventData{
			Chunk: &Chunk{Content: ChunkContent{Shape: ContentShapePlain, Text: text}},
		},
	}
}

func partsChunkEvent(parts ...ContentPart) StreamEvent {
	return StreamEvent{
		Event: EventChatModelStream,
		Data: EventData{
			Chunk: &Chunk{Content: ChunkContent{Shape: ContentShapeParts, Parts: parts}},
		},
	}
}
