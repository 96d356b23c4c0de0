// Package relay forwards opaque messages between a bound pair. The
// relay is fire-and-forget: no acknowledgment, no error back to the
// sender, delivery only if the peer connection still exists.
package relay

import (
	"encoding/json"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/glasskit/broker/internal/logging"
	"github.com/glasskit/broker/internal/monitoring"
	"github.com/glasskit/broker/internal/registry"
	"github.com/glasskit/broker/internal/shared/id"
	"github.com/glasskit/broker/internal/types"
)

// Relay directions, used as metric labels
const (
	directionToSimulator   = "to_simulator"
	directionToApplication = "to_application"
)

// Router resolves the sender's bound peer and forwards. Content is
// never inspected beyond the re-framing needed for text transport.
type Router struct {
	registry *registry.Registry
	log      *logging.Logger
	metrics  *monitoring.Metrics
}

// NewRouter creates a relay router over the connection registry
func NewRouter(reg *registry.Registry, log *logging.Logger, metrics *monitoring.Metrics) *Router {
	return &Router{
		registry: reg,
		log:      log,
		metrics:  metrics,
	}
}

// FromApplication forwards a message from a bound application to its
// simulator as an sdk:message event. A raw value that is itself a JSON
// string is forwarded as the bare string contents; anything else is
// forwarded as its JSON text.
func (r *Router) FromApplication(fromID id.ConnID, raw json.RawMessage) {
	from, ok := r.registry.Get(fromID)
	if !ok || from.Role != types.RoleApplication || !from.Bound() {
		r.drop(fromID)
		return
	}

	peer, ok := r.registry.Get(from.PeerID)
	if !ok {
		r.drop(fromID)
		return
	}

	if err := peer.Emit(types.EventSDKMessage, unquote(raw)); err != nil {
		r.log.Debug("relay delivery failed",
			zap.String("to", peer.ID.String()),
			zap.Error(err))
		return
	}
	r.metrics.Relayed(directionToSimulator)
}

// FromSimulator forwards a message from the bound simulator to its
// application as a message event, always string-encoded JSON.
func (r *Router) FromSimulator(fromID id.ConnID, raw json.RawMessage) {
	from, ok := r.registry.Get(fromID)
	if !ok || from.Role != types.RoleSimulator || !from.Bound() {
		r.drop(fromID)
		return
	}

	peer, ok := r.registry.Get(from.PeerID)
	if !ok {
		r.drop(fromID)
		return
	}

	if err := peer.Emit(types.EventMessage, string(raw)); err != nil {
		r.log.Debug("relay delivery failed",
			zap.String("to", peer.ID.String()),
			zap.Error(err))
		return
	}
	r.metrics.Relayed(directionToApplication)
}

func (r *Router) drop(fromID id.ConnID) {
	r.metrics.Dropped()
	r.log.Debug("relay dropped", zap.String("from", fromID.String()))
}

// unquote returns the contents of a JSON string value, or the raw JSON
// text for any other value
func unquote(raw json.RawMessage) string {
	var s string
	if err := sonic.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
