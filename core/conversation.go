package core

import "sync"

// Conversation is the append-only message log of a single query's lifetime.
// It is the only structure mutated after agent construction and exists solely
// between request submission and the final response; nothing is persisted.
//
// Appends may come from the model turn goroutine and from parallel tool
// executions, so access is mutex-guarded.
type Conversation struct {
	mu       sync.RWMutex
	contents []Content
}

// NewConversation creates an empty conversation log.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds a content entry to the end of the log.
func (c *Conversation) Append(content Content) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.contents = append(c.contents, content)
}

// Contents returns a copy of the logged contents in append order.
func (c *Conversation) Contents() []Content {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Content, len(c.contents))
	copy(out, c.contents)

	return out
}

// Len returns the number of logged contents.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.contents)
}

// LastAssistantText returns the text of the most recent assistant content, or
// the empty string when none exists. Used for best-effort degradation when a
// run is cut off before a clean final response.
func (c *Conversation) LastAssistantText() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := len(c.contents) - 1; i >= 0; i-- {
		if c.contents[i].Role != "assistant" {
			continue
		}
		if text := c.contents[i].Text(); text != "" {
			return text
		}
	}

	return ""
}
