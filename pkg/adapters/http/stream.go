package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/domain"
)

// streamBuffer is the number of diffs a slow subscriber may lag behind
// before new ones are dropped.
const streamBuffer = 16

// StreamManager fans session diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for sessionID. The returned func
// unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, streamBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			subs := sm.subscribers[sessionID]
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		})
	}
}

// Subscribers returns how many streams watch sessionID.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends msg to every subscriber of sessionID without blocking.
func (sm *StreamManager) Broadcast(sessionID, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("sse client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Publish encodes diff as JSON and broadcasts it. Its signature matches
// reportflow.ChangeFunc.
func (sm *StreamManager) Publish(_ context.Context, diff *domain.SessionDiff) {
	data, err := json.Marshal(diff)
	if err != nil {
		sm.logger.Error("failed to encode session diff", "session_id", diff.SessionID, "err", err)
		return
	}
	sm.Broadcast(diff.SessionID, string(data))
}

// matchesWatch reports whether diff touches any of the watched fields.
// An empty list matches everything.
func matchesWatch(diff domain.SessionDiff, watch []string) bool {
	if len(watch) == 0 {
		return true
	}
	for _, field := range watch {
		switch field {
		case "step":
			if diff.Step != nil {
				return true
			}
		case "category":
			if diff.CategoryValue != nil {
				return true
			}
		case "subcategory":
			if diff.SubcategoryValue != nil {
				return true
			}
		case "status":
			if diff.Status != nil {
				return true
			}
		case "closed":
			if diff.Closed != nil {
				return true
			}
		}
	}
	return false
}
