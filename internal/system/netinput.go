package system

import (
	"time"

	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/net/message"
)

// FrameSource exposes received wire frames. Satisfied by net.Client.
type FrameSource interface {
	In() <-chan []byte
}

// NetInputSystem drains inbound frames at the top of each tick and feeds
// them through the message registry. The per-tick cap keeps one burst from
// monopolizing a frame; leftovers wait for the next tick.
type NetInputSystem struct {
	source     FrameSource
	registry   *message.Registry
	maxPerTick int
}

func NewNetInputSystem(source FrameSource, registry *message.Registry, maxPerTick int) *NetInputSystem {
	if maxPerTick <= 0 {
		maxPerTick = 64
	}
	return &NetInputSystem{source: source, registry: registry, maxPerTick: maxPerTick}
}

func (s *NetInputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *NetInputSystem) Update(time.Duration) {
	if s.source == nil {
		return
	}
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case raw := <-s.source.In():
			s.registry.Dispatch(raw)
		default:
			return
		}
	}
}
