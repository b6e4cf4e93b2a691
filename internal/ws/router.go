package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

var errUnknownFrameType = errors.New("unknown frame type")

// internal (untyped) handler signature.
type rawHandler func(ctx context.Context, c *ConnContext, data json.RawMessage) error

// Router keeps a map[frameType]handler, à-la gin.Engine. Handlers produce
// their effects via broadcasts; a non-nil error becomes an "error" event
// replied to the sender only.
type Router struct {
	mu       sync.RWMutex
	handlers map[string]rawHandler
}

func NewRouter() *Router { return &Router{handlers: make(map[string]rawHandler)} }

// Register binds a frame type to a strongly-typed handler.
func Register[Req any](
	r *Router,
	frameType string,
	h func(ctx context.Context, c *ConnContext, req Req) error,
) {
	if frameType == "" {
		panic("ws router: empty frame type")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[frameType] = func(ctx context.Context, c *ConnContext, data json.RawMessage) error {
		var req Req
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				return errors.New("invalid frame data")
			}
		}
		return h(ctx, c, req)
	}
}

// dispatch is called by the server's reader loop.
func (r *Router) dispatch(ctx context.Context, c *ConnContext, env Envelope) error {
	r.mu.RLock()
	h, ok := r.handlers[env.Type]
	r.mu.RUnlock()
	if !ok {
		return errUnknownFrameType
	}
	return h(ctx, c, env.Data)
}
