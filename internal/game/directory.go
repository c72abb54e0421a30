package game

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Directory tracks every room by code. The directory lock only guards the
// map; each room serializes its own mutations.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	reset ResetPolicy
}

// RoomInfo is the listing shape served to lobby discovery.
type RoomInfo struct {
	Code       string `json:"room"`
	Players    int    `json:"players"`
	InProgress bool   `json:"roomInProgress"`
}

// NewDirectory seeds the fixed default rooms and applies the given gate
// reset policy to every room it creates.
func NewDirectory(codes []string, reset ResetPolicy) *Directory {
	d := &Directory{rooms: make(map[string]*Room), reset: reset}
	for _, code := range codes {
		if code = strings.TrimSpace(code); code != "" {
			d.rooms[code] = newRoom(code, reset)
		}
	}
	return d
}

func (d *Directory) Get(code string) (*Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Create adds a room under the given code, generating one when the code is
// blank.
func (d *Directory) Create(code string) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if code == "" {
		code = uuid.NewString()[:8]
		for d.rooms[code] != nil {
			code = uuid.NewString()[:8]
		}
	} else if d.rooms[code] != nil {
		return nil, ErrRoomExists
	}
	room := newRoom(code, d.reset)
	d.rooms[code] = room
	return room, nil
}

// SetGates replaces the in-progress gate state wholesale: every room's
// gate becomes the submitted value, and rooms absent from the map are
// reopened.
func (d *Directory) SetGates(gates map[string]bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for code, room := range d.rooms {
		room.setGate(gates[code])
	}
}

// Gates snapshots the per-room gate map for broadcast.
func (d *Directory) Gates() map[string]bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make(map[string]bool, len(d.rooms))
	for code, room := range d.rooms {
		out[code] = room.InProgress()
	}
	return out
}

// List returns a lobby-discovery listing of all rooms.
func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]RoomInfo, 0, len(d.rooms))
	for _, room := range d.rooms {
		snap := room.Snapshot()
		out = append(out, RoomInfo{Code: room.Code, Players: len(snap.Users), InProgress: snap.InProgress})
	}
	return out
}
