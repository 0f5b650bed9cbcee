package graphstream

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/status/messages.yaml
var statusMessagesYAML []byte

// Status Catalog Philosophy:
//
// The human-readable status lines surfaced during a run ("Looking up: …",
// "Products found", …) are UI copy, not protocol. They ship embedded so
// the library works out of the box, and library users can override them:
//  1. Calling LoadStatusMessagesFromFile() with custom YAML
//  2. Calling SetStatusMessage() programmatically
//
// Keys are stable; only the text is meant to vary (wording, localization).

// StatusKey identifies one catalog entry.
type StatusKey string

// Known status message keys
const (
	// StatusKeyToolLookup formats the tool-start status; takes the query
	StatusKeyToolLookup StatusKey = "tool_lookup"

	// StatusKeyToolDone is the fixed tool-completion status
	StatusKeyToolDone StatusKey = "tool_done"

	// StatusKeyFinalizing is the fixed generate-start status
	StatusKeyFinalizing StatusKey = "chain_finalizing"
)

// statusCatalog is the YAML document shape of the catalog.
type statusCatalog struct {
	Version     string               `yaml:"version"`
	LastUpdated string               `yaml:"last_updated"`
	Messages    map[StatusKey]string `yaml:"messages"`
}

// StatusRegistry manages the status message catalog
type StatusRegistry struct {
	messages map[StatusKey]string
	mu       sync.RWMutex
}

var (
	globalStatusRegistry     *StatusRegistry
	globalStatusRegistryOnce sync.Once
)

// GetStatusRegistry returns the global status registry (singleton)
func GetStatusRegistry() *StatusRegistry {
	globalStatusRegistryOnce.Do(func() {
		globalStatusRegistry = &StatusRegistry{
			messages: make(map[StatusKey]string),
		}
		if err := globalStatusRegistry.loadEmbedded(); err != nil {
			// Log error but don't panic - lookups fall back to the key
			fmt.Printf("Warning: failed to load embedded status messages: %v\n", err)
		}
	})
	return globalStatusRegistry
}

// loadEmbedded loads the embedded catalog YAML
func (r *StatusRegistry) loadEmbedded() error {
	var catalog statusCatalog
	if err := yaml.Unmarshal(statusMessagesYAML, &catalog); err != nil {
		return fmt.Errorf("failed to unmarshal status messages: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, text := range catalog.Messages {
		r.messages[key] = text
	}
	return nil
}

// Message returns the catalog text for a key.
// Unknown keys fall back to the key itself so a missing entry stays visible.
func (r *StatusRegistry) Message(key StatusKey) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	text, ok := r.messages[key]
	if !ok {
		return string(key)
	}
	return text
}

// SetMessage overrides the text for a key.
func (r *StatusRegistry) SetMessage(key StatusKey, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[key] = text
}

// LoadFromFile loads catalog entries from a YAML file, overriding any
// embedded entries with the same keys. The file format matches the
// embedded YAML structure.
func (r *StatusRegistry) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read status messages file: %w", err)
	}

	var catalog statusCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return fmt.Errorf("failed to unmarshal status messages: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for key, text := range catalog.Messages {
		r.messages[key] = text
	}
	return nil
}

// LoadStatusMessagesFromFile is a convenience function that calls the global registry's LoadFromFile.
func LoadStatusMessagesFromFile(path string) error {
	return GetStatusRegistry().LoadFromFile(path)
}

// SetStatusMessage is a convenience function that calls the global registry's SetMessage.
func SetStatusMessage(key StatusKey, text string) {
	GetStatusRegistry().SetMessage(key, text)
}

// StatusLookingUp formats the tool-start status line for a query.
func StatusLookingUp(query string) string {
	return fmt.Sprintf(GetStatusRegistry().Message(StatusKeyToolLookup), query)
}

// StatusToolDone returns the fixed tool-completion status line.
func StatusToolDone() string {
	return GetStatusRegistry().Message(StatusKeyToolDone)
}

// StatusFinalizing returns the fixed generate-start status line.
func StatusFinalizing() string {
	return GetStatusRegistry().Message(StatusKeyFinalizing)
}
