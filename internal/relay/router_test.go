package relay

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glasskit/broker/internal/logging"
	"github.com/glasskit/broker/internal/registry"
	"github.com/glasskit/broker/internal/types"
)

type recorder struct {
	events []string
	data   []any
	err    error
}

func (r *recorder) Emit(event string, data any) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	r.data = append(r.data, data)
	return nil
}

func boundPair(t *testing.T) (*registry.Registry, *recorder, *recorder) {
	t.Helper()
	reg := registry.New()
	sim, app := &recorder{}, &recorder{}
	reg.Add("conn_sim", sim)
	reg.Add("conn_app", app)

	_, _, ok := reg.PromoteSimulator("conn_sim")
	require.True(t, ok)
	require.True(t, reg.Bind("conn_sim", "conn_app", types.AppInfo{PackageName: "com.x"}))
	return reg, sim, app
}

func TestFromApplicationForwardsJSON(t *testing.T) {
	reg, sim, _ := boundPair(t)
	r := NewRouter(reg, logging.NewNop(), nil)

	r.FromApplication("conn_app", json.RawMessage(`{"id":"1","payload":{"text":"hi"}}`))

	require.Equal(t, []string{types.EventSDKMessage}, sim.events)
	assert.Equal(t, `{"id":"1","payload":{"text":"hi"}}`, sim.data[0])
}

func TestFromApplicationUnwrapsStringValues(t *testing.T) {
	reg, sim, _ := boundPair(t)
	r := NewRouter(reg, logging.NewNop(), nil)

	// A value that is already a JSON string is forwarded as the bare
	// string contents
	r.FromApplication("conn_app", json.RawMessage(`"already a string"`))

	require.Len(t, sim.data, 1)
	assert.Equal(t, "already a string", sim.data[0])
}

func TestFromSimulatorAlwaysStringEncodes(t *testing.T) {
	reg, _, app := boundPair(t)
	r := NewRouter(reg, logging.NewNop(), nil)

	r.FromSimulator("conn_sim", json.RawMessage(`{"cmd":"show"}`))
	r.FromSimulator("conn_sim", json.RawMessage(`"plain"`))

	require.Equal(t, []string{types.EventMessage, types.EventMessage}, app.events)
	assert.Equal(t, `{"cmd":"show"}`, app.data[0])
	assert.Equal(t, `"plain"`, app.data[1])
}

func TestUnboundSenderIsDropped(t *testing.T) {
	reg := registry.New()
	idle := &recorder{}
	reg.Add("conn_idle", idle)
	r := NewRouter(reg, logging.NewNop(), nil)

	r.FromApplication("conn_idle", json.RawMessage(`{}`))
	r.FromSimulator("conn_idle", json.RawMessage(`{}`))

	assert.Empty(t, idle.events)
}

func TestUnknownSenderIsDropped(t *testing.T) {
	reg := registry.New()
	r := NewRouter(reg, logging.NewNop(), nil)

	// Must not panic
	r.FromApplication("conn_ghost", json.RawMessage(`{}`))
	r.FromSimulator("conn_ghost", json.RawMessage(`{}`))
}

func TestWrongDirectionIsDropped(t *testing.T) {
	reg, sim, app := boundPair(t)
	r := NewRouter(reg, logging.NewNop(), nil)

	// The simulator cannot use the application path and vice versa
	r.FromApplication("conn_sim", json.RawMessage(`{}`))
	r.FromSimulator("conn_app", json.RawMessage(`{}`))

	assert.Empty(t, sim.events)
	assert.Empty(t, app.events)
}

func TestMissingPeerIsDropped(t *testing.T) {
	reg, _, _ := boundPair(t)
	r := NewRouter(reg, logging.NewNop(), nil)

	reg.Remove("conn_sim")

	// Stale back-reference resolves to nothing: silent drop
	r.FromApplication("conn_app", json.RawMessage(`{"id":"1"}`))
}

func TestDeliveryFailureNotSurfacedToSender(t *testing.T) {
	reg, sim, app := boundPair(t)
	sim.err = errors.New("write: broken pipe")
	r := NewRouter(reg, logging.NewNop(), nil)

	// Fire-and-forget: the sender sees nothing
	r.FromApplication("conn_app", json.RawMessage(`{"id":"1"}`))
	assert.Empty(t, app.events)
}
