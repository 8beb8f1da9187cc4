// Package input collects player intent from the render thread and hands it
// to the simulation. Writers latch trigger edges; the ability system reads
// and consumes them once per tick.
package input

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

type State struct {
	mu      sync.Mutex
	pressed map[int]bool
	held    map[int]bool
	move    mgl64.Vec3
}

func NewState() *State {
	return &State{
		pressed: make(map[int]bool),
		held:    make(map[int]bool),
	}
}

// Press latches a trigger edge for the slot.
func (s *State) Press(slot int) {
	s.mu.Lock()
	s.pressed[slot] = true
	s.held[slot] = true
	s.mu.Unlock()
}

// Release clears the held state for the slot.
func (s *State) Release(slot int) {
	s.mu.Lock()
	s.held[slot] = false
	s.mu.Unlock()
}

// SetMove sets the requested movement direction.
func (s *State) SetMove(dir mgl64.Vec3) {
	s.mu.Lock()
	s.move = dir
	s.mu.Unlock()
}

// SlotPressed consumes the latched edge for the slot.
func (s *State) SlotPressed(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pressed[slot] {
		s.pressed[slot] = false
		return true
	}
	return false
}

func (s *State) SlotHeld(slot int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[slot]
}

func (s *State) MoveDir() mgl64.Vec3 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.move
}
