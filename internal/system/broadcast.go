package system

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberveil/client/internal/component"
	"github.com/emberveil/client/internal/config"
	"github.com/emberveil/client/internal/core/ecs"
	coresys "github.com/emberveil/client/internal/core/system"
	"github.com/emberveil/client/internal/net/message"
)

// FrameSink accepts encoded outbound frames. Satisfied by net.Client.
type FrameSink interface {
	Send(data []byte) bool
}

// BroadcastSystem publishes the local player's state. Position and animation
// updates are coalesced to their send rates; ability and attack events go
// out immediately, once per trigger.
type BroadcastSystem struct {
	tables *component.Tables
	clock  *coresys.Clock
	sink   FrameSink
	cfg    config.NetworkConfig
	log    *zap.Logger

	player   ecs.EntityID
	serverID int64

	lastMoveSent time.Time
	lastSentPos  mgl64.Vec3
	lastSentRot  mgl64.Quat

	anim         string
	animSpeed    float64
	sentAnim     string
	lastAnimSent time.Time
}

func NewBroadcastSystem(tables *component.Tables, clock *coresys.Clock, sink FrameSink,
	cfg config.NetworkConfig, log *zap.Logger) *BroadcastSystem {
	return &BroadcastSystem{tables: tables, clock: clock, sink: sink, cfg: cfg, log: log}
}

func (s *BroadcastSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

// BindLocal sets the entity and server identity whose state is published.
func (s *BroadcastSystem) BindLocal(player ecs.EntityID, serverID int64) {
	s.player = player
	s.serverID = serverID
}

// SetAnimation records the current animation clip; the delta goes out on the
// next animation send window.
func (s *BroadcastSystem) SetAnimation(clip string, speed float64) {
	s.anim = clip
	s.animSpeed = speed
}

// SendHitReport publishes a locally rolled hit claim against a
// server-identified target. The server adjudicates and answers with the
// authoritative damage verdict.
func (s *BroadcastSystem) SendHitReport(targetServerID int64, amount int, critical bool, damageType string) {
	if s.sink == nil {
		return
	}
	data, err := message.Encode(message.KindDamage, message.Damage{
		Source:     s.serverID,
		Target:     targetServerID,
		Amount:     amount,
		DamageType: damageType,
		Critical:   critical,
	})
	if err != nil {
		s.log.Error("encode hit report", zap.Error(err))
		return
	}
	s.sink.Send(data)
}

// SendAbilityEvent publishes an ability trigger immediately.
func (s *BroadcastSystem) SendAbilityEvent(slot int, name string, pos, dir mgl64.Vec3) {
	if s.sink == nil {
		return
	}
	data, err := message.Encode(message.KindAbilityUsed, message.AbilityUsed{
		ID:   s.serverID,
		Slot: slot,
		Name: name,
		Pos:  message.FromVec3(pos),
		Dir:  message.FromVec3(dir),
	})
	if err != nil {
		s.log.Error("encode ability event", zap.Error(err))
		return
	}
	s.sink.Send(data)
}

func (s *BroadcastSystem) Update(time.Duration) {
	if s.sink == nil || s.player.IsZero() {
		return
	}
	now := s.clock.Now()
	s.sendMove(now)
	s.sendAnim(now)
}

func (s *BroadcastSystem) sendMove(now time.Time) {
	if now.Sub(s.lastMoveSent) < s.cfg.MoveSendRate {
		return
	}
	tr, ok := s.tables.Transforms.Get(s.player)
	if !ok {
		return
	}
	moved := tr.Pos.Sub(s.lastSentPos).Len() > 1e-4
	turned := !tr.Rot.ApproxEqual(s.lastSentRot)
	if !moved && !turned && !s.lastMoveSent.IsZero() {
		return
	}
	data, err := message.Encode(message.KindPosition, message.Position{
		ID:  s.serverID,
		Pos: message.FromVec3(tr.Pos),
		Rot: message.FromQuat(tr.Rot),
		At:  now.UnixMilli(),
	})
	if err != nil {
		s.log.Error("encode position", zap.Error(err))
		return
	}
	if s.sink.Send(data) {
		s.lastMoveSent = now
		s.lastSentPos = tr.Pos
		s.lastSentRot = tr.Rot
	}
}

func (s *BroadcastSystem) sendAnim(now time.Time) {
	if s.anim == s.sentAnim {
		return
	}
	if now.Sub(s.lastAnimSent) < s.cfg.AnimSendRate {
		return
	}
	data, err := message.Encode(message.KindAnimation, message.Animation{
		ID:    s.serverID,
		Clip:  s.anim,
		Speed: s.animSpeed,
	})
	if err != nil {
		s.log.Error("encode animation", zap.Error(err))
		return
	}
	if s.sink.Send(data) {
		s.sentAnim = s.anim
		s.lastAnimSent = now
	}
}
