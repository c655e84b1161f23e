package protocol

import "sync"

// MessageCounter assigns envelope IDs for one session. IDs start at 1
// and strictly increase; the counter is owned by a single controller
// instance and never shared process-wide. It is safe for concurrent
// use.
type MessageCounter struct {
	next int
	mu   sync.Mutex
}

// NewMessageCounter creates a counter whose first ID is 1.
func NewMessageCounter() *MessageCounter {
	return &MessageCounter{next: 1}
}

// Next returns the next envelope ID and advances the counter.
func (c *MessageCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	return id
}

// Current returns the ID the next call to Next will produce.
func (c *MessageCounter) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next
}
