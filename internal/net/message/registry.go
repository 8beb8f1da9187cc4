package message

import (
	"go.uber.org/zap"
)

// Handler consumes one decoded envelope. Returning an error drops the
// message with a log line; it never tears down the connection.
type Handler func(env *Envelope) error

// Registry dispatches envelopes to the handler registered for their kind.
type Registry struct {
	handlers map[string]Handler
	log      *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register binds a handler to a kind. Registering a kind twice is a wiring
// bug and panics at startup.
func (r *Registry) Register(kind string, h Handler) {
	if _, dup := r.handlers[kind]; dup {
		panic("message: duplicate handler for kind " + kind)
	}
	r.handlers[kind] = h
}

// Dispatch routes raw wire bytes to the matching handler. Malformed frames
// and unknown kinds are dropped with a warning.
func (r *Registry) Dispatch(raw []byte) {
	env, err := Decode(raw)
	if err != nil {
		r.log.Warn("dropping malformed frame", zap.Error(err))
		return
	}
	h, ok := r.handlers[env.Kind]
	if !ok {
		r.log.Warn("dropping message with no handler", zap.String("kind", env.Kind))
		return
	}
	if err := h(env); err != nil {
		r.log.Warn("message handler failed",
			zap.String("kind", env.Kind), zap.Error(err))
	}
}
