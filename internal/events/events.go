// Package events fans out pipeline notifications to SSE subscribers.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

const (
	TypeJobCreated   = "job_created"
	TypeRunStarted   = "run_started"
	TypeRunCompleted = "run_completed"
	TypePing         = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Encode renders an event as the JSON payload of one SSE message.
func Encode(reqID, typ string, data any) string {
	e := Event{Type: typ, Version: 1, At: time.Now().UTC(), RequestID: reqID}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			e.Data = b
		}
	}
	b, _ := json.Marshal(e)
	return string(b)
}

// Hub is a non-blocking broadcaster. Slow subscribers miss messages rather
// than stall the pipeline.
type Hub struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
	buf  int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan string]struct{}), buf: 16}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, h.buf)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
	h.mu.Unlock()
}

func (h *Hub) Publish(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// Emit encodes and publishes in one step.
func (h *Hub) Emit(typ string, data any) {
	if h == nil {
		return
	}
	h.Publish(Encode("", typ, data))
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
