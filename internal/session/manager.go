// Package session implements the pairing and binding protocol: one
// rotating pairing code, one selected hardware model, and at most one
// simulator-application binding at a time.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glasskit/broker/internal/catalog"
	"github.com/glasskit/broker/internal/logging"
	"github.com/glasskit/broker/internal/monitoring"
	"github.com/glasskit/broker/internal/pairing"
	"github.com/glasskit/broker/internal/registry"
	"github.com/glasskit/broker/internal/shared/id"
	"github.com/glasskit/broker/internal/types"
)

// Binding is the single active relay channel. ID correlates its whole
// lifecycle in logs, from pairing to the clear that ends it.
type Binding struct {
	ID            string
	SimulatorID   id.ConnID
	ApplicationID id.ConnID
}

// Manager owns the process-lifetime session state. It is not
// goroutine-safe: the transport dispatcher serializes every call, so
// each operation is atomic with respect to the others.
type Manager struct {
	registry *registry.Registry
	catalog  *catalog.Catalog
	gen      pairing.Generator
	log      *logging.Logger
	metrics  *monitoring.Metrics

	pairingCode   string
	selectedModel string
	binding       *Binding
}

// NewManager creates the session with a fresh pairing code and the
// default model selected
func NewManager(reg *registry.Registry, cat *catalog.Catalog, gen pairing.Generator, log *logging.Logger, metrics *monitoring.Metrics) *Manager {
	m := &Manager{
		registry:      reg,
		catalog:       cat,
		gen:           gen,
		log:           log,
		metrics:       metrics,
		pairingCode:   gen.Generate(),
		selectedModel: catalog.DefaultModel,
	}
	m.log.Info("session initialized",
		zap.String("pairing_code", m.pairingCode),
		zap.String("model", m.selectedModel))
	return m
}

// PairingCode returns the currently accepted code
func (m *Manager) PairingCode() string {
	return m.pairingCode
}

// SelectedModel returns the current hardware model id
func (m *Manager) SelectedModel() string {
	return m.selectedModel
}

// Binding returns the active binding, if any
func (m *Manager) Binding() (Binding, bool) {
	if m.binding == nil {
		return Binding{}, false
	}
	return *m.binding, true
}

// Connect registers a new transport connection with no role
func (m *Manager) Connect(connID id.ConnID, sender registry.Sender) *registry.Connection {
	conn := m.registry.Add(connID, sender)
	m.metrics.ConnectionOpened()
	m.log.Info("client connected", zap.String("conn_id", connID.String()))
	return conn
}

// RegisterSimulator promotes connID to the simulator role, displacing
// any previous simulator (last registrant wins), and replies with the
// live pairing code so a reconnecting simulator immediately sees it.
func (m *Manager) RegisterSimulator(connID id.ConnID) error {
	promoted, displaced, ok := m.registry.PromoteSimulator(connID)
	if !ok {
		return fmt.Errorf("register simulator: unknown connection %s", connID)
	}

	if displaced != nil {
		if m.binding != nil && m.binding.SimulatorID == displaced.ID {
			m.log.Info("binding cleared", zap.String("binding_id", m.binding.ID))
			m.binding = nil
			m.metrics.BindingCleared()
		}
		m.log.Info("simulator displaced",
			zap.String("old_conn_id", displaced.ID.String()),
			zap.String("new_conn_id", connID.String()))
	}

	m.emit(promoted, types.EventSimulatorRegistered, types.PairingCodePayload{PairingCode: m.pairingCode})
	m.log.Info("simulator registered", zap.String("conn_id", connID.String()))
	return nil
}

// ChangeModel updates the selected hardware model. Only the simulator
// may change it; anything else is ignored. Unknown model ids are stored
// as-is and resolved against the catalog at pairing time.
func (m *Manager) ChangeModel(connID id.ConnID, modelID string) {
	conn, ok := m.registry.Get(connID)
	if !ok || conn.Role != types.RoleSimulator {
		m.log.Debug("model change ignored",
			zap.String("conn_id", connID.String()),
			zap.String("model", modelID))
		return
	}

	m.selectedModel = modelID
	m.log.Info("model changed",
		zap.String("model", modelID),
		zap.String("name", m.catalog.DisplayName(modelID)))
}

// AttemptPairing validates the submitted code and, on success, binds
// the connection to the current simulator, replies to both sides, and
// rotates the pairing code. The used code becomes permanently invalid.
func (m *Manager) AttemptPairing(connID id.ConnID, code string, info types.AppInfo) error {
	if code != m.pairingCode {
		m.metrics.PairingRejected("invalid_code")
		m.log.Warn("pairing rejected: invalid code",
			zap.String("conn_id", connID.String()),
			zap.String("package", info.PackageName))
		return types.ErrInvalidPairingCode
	}

	sim, ok := m.registry.Simulator()
	if !ok {
		m.metrics.PairingRejected("no_simulator")
		m.log.Warn("pairing rejected: no simulator",
			zap.String("conn_id", connID.String()),
			zap.String("package", info.PackageName))
		return types.ErrNoSimulator
	}

	if !m.registry.Bind(sim.ID, connID, info) {
		return fmt.Errorf("pairing: unknown connection %s", connID)
	}
	replaced := m.binding
	m.binding = &Binding{
		ID:            uuid.New().String(),
		SimulatorID:   sim.ID,
		ApplicationID: connID,
	}
	if replaced != nil {
		m.log.Info("binding replaced",
			zap.String("old_binding_id", replaced.ID),
			zap.String("binding_id", m.binding.ID))
	}

	entry := m.catalog.Resolve(m.selectedModel)
	app, _ := m.registry.Get(connID)

	m.emit(app, types.EventConnected, types.ConnectedPayload{
		SessionID:    connID.String(),
		Model:        m.selectedModel,
		Capabilities: entry.Capabilities.ForSDK(),
	})
	m.emit(sim, types.EventSDKConnected, types.SDKConnectedPayload{
		AppInfo: info,
		SDKID:   connID.String(),
	})

	m.pairingCode = m.gen.Generate()
	m.emit(sim, types.EventPairingUpdated, types.PairingCodePayload{PairingCode: m.pairingCode})

	m.metrics.PairingSucceeded()
	m.log.Info("sdk connected",
		zap.String("binding_id", m.binding.ID),
		zap.String("conn_id", connID.String()),
		zap.String("package", info.PackageName),
		zap.String("model", entry.DisplayName))
	return nil
}

// Disconnect removes a connection and unwinds any binding it was part
// of. A bound application's simulator is told; an orphaned application
// is not, it simply stops receiving relayed traffic.
func (m *Manager) Disconnect(connID id.ConnID) {
	conn := m.registry.Remove(connID)
	if conn == nil {
		return
	}
	m.metrics.ConnectionClosed()

	switch {
	case conn.Role == types.RoleApplication && conn.Bound():
		if sim, ok := m.registry.Get(conn.PeerID); ok {
			m.emit(sim, types.EventSDKDisconnected, nil)
			m.registry.Unlink(sim.ID)
		}
		if m.binding != nil && m.binding.ApplicationID == conn.ID {
			m.log.Info("binding cleared", zap.String("binding_id", m.binding.ID))
			m.binding = nil
			m.metrics.BindingCleared()
		}
		m.log.Info("sdk disconnected",
			zap.String("conn_id", connID.String()),
			zap.String("package", packageName(conn.AppInfo)))

	case conn.Role == types.RoleSimulator:
		if m.binding != nil && m.binding.SimulatorID == conn.ID {
			m.log.Info("binding cleared", zap.String("binding_id", m.binding.ID))
			m.binding = nil
			m.metrics.BindingCleared()
		}
		m.log.Info("simulator disconnected", zap.String("conn_id", connID.String()))

	default:
		m.log.Info("client disconnected", zap.String("conn_id", connID.String()))
	}
}

// emit sends to one connection, logging delivery failures. Replies are
// point-to-point and best-effort.
func (m *Manager) emit(conn *registry.Connection, event string, data any) {
	if err := conn.Emit(event, data); err != nil {
		m.log.Warn("emit failed",
			zap.String("conn_id", conn.ID.String()),
			zap.String("event", event),
			zap.Error(err))
	}
}

func packageName(info *types.AppInfo) string {
	if info == nil {
		return ""
	}
	return info.PackageName
}
