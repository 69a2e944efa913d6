package game

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// RoomStore is the registry of live rooms, keyed by their 6-digit id.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room

	// Clock is handed to new rooms; tests swap in a mock.
	Clock quartz.Clock

	rng *rand.Rand
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*Room),
		Clock: quartz.NewReal(),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateRoom registers a new room under a fresh 6-digit id. The room starts
// its goroutine immediately; the caller wires Emit/OnSettle before players
// join.
func (s *RoomStore) CreateRoom(name, owner string, rules Rules) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.nextID()
	if err != nil {
		return nil, err
	}
	seed := s.rng.Int63()
	r := NewRoom(id, name, owner, rules, s.Clock, rand.New(rand.NewSource(seed)))
	r.OnEmpty = func(roomID string) {
		// Runs on the room goroutine, so tear down from a fresh one.
		go s.Destroy(roomID)
	}
	s.rooms[id] = r
	return r, nil
}

// nextID draws random 6-digit ids until one is free. Caller holds the lock.
func (s *RoomStore) nextID() (string, error) {
	for i := 0; i < 100; i++ {
		id := fmt.Sprintf("%06d", 100000+s.rng.Intn(900000))
		if _, taken := s.rooms[id]; !taken {
			return id, nil
		}
	}
	return "", errors.New("room id space exhausted")
}

func (s *RoomStore) Get(id string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Remove drops the room from the registry without closing it.
func (s *RoomStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
}

// Destroy closes the room and drops it from the registry.
func (s *RoomStore) Destroy(id string) error {
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	s.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}
	r.Close()
	return nil
}

// CloseAll tears down every live room. Used on process shutdown so seated
// players see a room_closed event before the listener goes away.
func (s *RoomStore) CloseAll() {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.rooms = make(map[string]*Room)
	s.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}

// List returns public summaries of all rooms, ordered by id.
func (s *RoomStore) List() []RoomInfo {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	infos := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		infos = append(infos, r.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// FindByAccount returns the room the account is seated in, or nil.
func (s *RoomStore) FindByAccount(account string) *Room {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	for _, r := range rooms {
		for _, seat := range r.Info().Seats {
			if seat.Account == account {
				return r
			}
		}
	}
	return nil
}
