package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"travel-friend/api/logger"
	"travel-friend/api/models"
)

// ClientStream is one user's live notification channel.
type ClientStream struct {
	Messages chan string
	Done     chan struct{}
}

var (
	connections = make(map[string]*ClientStream)
	mu          sync.RWMutex
)

// Register opens a stream for the user, replacing any previous one.
func Register(userID string) *ClientStream {
	stream := &ClientStream{
		Messages: make(chan string, 100),
		Done:     make(chan struct{}),
	}
	mu.Lock()
	connections[userID] = stream
	mu.Unlock()
	return stream
}

// Unregister drops the user's stream if it is still the registered one.
func Unregister(userID string, stream *ClientStream) {
	mu.Lock()
	if connections[userID] == stream {
		delete(connections, userID)
	}
	mu.Unlock()
}

// Push delivers a notification to the user's live stream, if any. Delivery is
// best-effort: a missing or saturated stream is logged and skipped.
func Push(userID string, n models.Notification) {
	mu.RLock()
	stream, ok := connections[userID]
	mu.RUnlock()
	if !ok {
		return
	}

	payload, err := json.Marshal(n)
	if err != nil {
		logger.Get().Error("failed to marshal notification for stream",
			zap.String("user_id", userID),
			zap.Error(err))
		return
	}

	select {
	case stream.Messages <- string(payload):
		logger.Get().Debug("notification pushed to stream",
			zap.String("user_id", userID),
			zap.String("type", string(n.Type)))
	default:
		logger.Get().Warn("notification stream full, dropping message",
			zap.String("user_id", userID))
	}
}
