package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

type room struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func newRoom() *room { return &room{conns: map[*clientConn]struct{}{}} }

func (r *room) add(c *clientConn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

// remove drops the connection from the member set without closing it; the
// same connection may be re-entering another room. Reports the remaining size.
func (r *room) remove(c *clientConn) int {
	r.mu.Lock()
	delete(r.conns, c)
	n := len(r.conns)
	r.mu.Unlock()
	return n
}

func (r *room) size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// broadcastTargets snapshots the current members minus exclude, so the
// write loop runs without holding the lock and never sees a torn member set.
func (r *room) broadcastTargets(exclude *clientConn) []*clientConn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		if c == exclude {
			continue
		}
		conns = append(conns, c)
	}
	return conns
}

// broadcast delivers msg to every member except exclude. Delivery is
// best-effort per recipient: a failed write never stalls or aborts the rest.
// Returns the connections whose writes failed so the hub can evict them.
func (r *room) broadcast(msg []byte, exclude *clientConn) []*clientConn {
	conns := r.broadcastTargets(exclude)

	var failed []*clientConn
	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			failed = append(failed, c)
		}
	}
	return failed
}
