package ws

import "sync"

// Hub is the room table: it owns the roomID -> member-set relation.
// A room with zero members is deleted immediately; empty rooms never persist.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*room)}
}

func (h *Hub) Join(roomID string, c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomID]
	if !ok {
		r = newRoom()
		h.rooms[roomID] = r
	}
	// insert while still holding the table lock: a concurrent Leave of the
	// last other member must not observe the room empty and delete it while
	// the joiner lands in a detached member set
	r.add(c)
}

// Leave removes the connection and deletes the room when it empties.
// Leaving a room you are not in is a no-op.
func (h *Hub) Leave(roomID string, c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomID]
	if !ok {
		return
	}
	if r.remove(c) == 0 {
		delete(h.rooms, roomID)
	}
}

// Members returns a snapshot of the room's connections; empty when the room
// does not exist.
func (h *Hub) Members(roomID string) []*clientConn {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return r.broadcastTargets(nil)
}

// Broadcast delivers msg to every member of roomID except exclude.
// Connections whose writes fail are evicted from the room and closed;
// their failure never reaches the caller.
func (h *Hub) Broadcast(roomID string, msg []byte, exclude *clientConn) {
	h.mu.RLock()
	r, ok := h.rooms[roomID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	for _, c := range r.broadcast(msg, exclude) {
		h.Leave(roomID, c)
		_ = c.rawConn.Close()
	}
}

// RoomCount reports how many rooms currently have members.
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// HasRoom reports whether roomID is present in the table at all.
func (h *Hub) HasRoom(roomID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[roomID]
	return ok
}
