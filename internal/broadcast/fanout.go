package broadcast

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/ludo-backend/pkg/types"
)

// Fanout delivers room events to subscriber outboxes. A subscriber whose
// outbox is full is dropped and its outbox closed.
type Fanout struct {
	mu     sync.Mutex
	rooms  map[string]map[string]chan types.Event
	buffer int
	log    *zap.Logger
}

func NewFanout(buffer int, logger *zap.Logger) *Fanout {
	if buffer <= 0 {
		buffer = 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fanout{
		rooms:  make(map[string]map[string]chan types.Event),
		buffer: buffer,
		log:    logger,
	}
}

// Subscribe registers a client in a room and returns its outbox. Subscribing
// the same client twice returns the existing outbox.
func (f *Fanout) Subscribe(roomID, clientID string) <-chan types.Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	members := f.rooms[roomID]
	if members == nil {
		members = make(map[string]chan types.Event)
		f.rooms[roomID] = members
	}
	if ch, ok := members[clientID]; ok {
		return ch
	}
	ch := make(chan types.Event, f.buffer)
	members[clientID] = ch
	return ch
}

func (f *Fanout) Unsubscribe(roomID, clientID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.remove(roomID, clientID)
}

// Publish never blocks.
func (f *Fanout) Publish(roomID string, evt types.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, ch := range f.rooms[roomID] {
		select {
		case ch <- evt:
			//ok
		default:
			// Client is slow/full - drop them.
			f.log.Warn("dropping slow subscriber", zap.String("room_id", roomID), zap.String("client_id", id))
			f.remove(roomID, id)
		}
	}
}

func (f *Fanout) Members(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rooms[roomID])
}

// Close closes every outbox.
func (f *Fanout) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for roomID, members := range f.rooms {
		for id := range members {
			f.remove(roomID, id)
		}
	}
}

func (f *Fanout) remove(roomID, clientID string) {
	members := f.rooms[roomID]
	ch, ok := members[clientID]
	if !ok {
		return
	}
	close(ch) // Tell client no more events
	delete(members, clientID)
	if len(members) == 0 {
		delete(f.rooms, roomID)
	}
}
