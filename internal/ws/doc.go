// Package ws provides the WebSocket transport for the pairing broker.
//
// Each client holds one persistent connection carrying named events as
// JSON frames: {"event": string, "data": any}. The handler upgrades
// the HTTP request, registers the connection, and runs a read loop
// that dispatches frames into the session manager and relay router.
// A single dispatch mutex serializes every handler body, so session
// and registry state never observe a partial mutation.
//
// Events (Client → Broker):
//   - simulator:register: claim the simulator role
//   - simulator:model-changed: select the hardware model
//   - sdk:connect: pair with code and app info
//   - message: relay toward the simulator
//   - simulator:message: relay toward the application
//
// Events (Broker → Client):
//   - simulator:registered, pairing:updated: live pairing code
//   - connected, error: pairing outcome
//   - sdk:connected, sdk:disconnected: binding lifecycle
//   - sdk:message, message: relayed traffic
package ws
