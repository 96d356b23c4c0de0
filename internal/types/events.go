package types

// Named events carried over the websocket, one frame per message.
// Client to broker.
const (
	EventSimulatorRegister     = "simulator:register"
	EventSimulatorModelChanged = "simulator:model-changed"
	EventSDKConnect            = "sdk:connect"
	EventMessage               = "message"
	EventSimulatorMessage      = "simulator:message"
)

// Broker to client. EventMessage is reused for relayed traffic toward
// the application.
const (
	EventSimulatorRegistered = "simulator:registered"
	EventPairingUpdated      = "pairing:updated"
	EventSDKConnected        = "sdk:connected"
	EventSDKDisconnected     = "sdk:disconnected"
	EventSDKMessage          = "sdk:message"
	EventConnected           = "connected"
	EventError               = "error"
)

// PairingCodePayload carries the live code to the simulator, both on
// registration and after each rotation
type PairingCodePayload struct {
	PairingCode string `json:"pairingCode"`
}

// ModelChangedPayload is the simulator's model selection
type ModelChangedPayload struct {
	Model string `json:"model"`
}

// ConnectRequest is the sdk:connect envelope
type ConnectRequest struct {
	Payload ConnectParams `json:"payload"`
}

// ConnectParams carries the submitted code and app identity
type ConnectParams struct {
	Code    string  `json:"code"`
	AppInfo AppInfo `json:"appInfo"`
}

// ConnectedPayload is the success reply to a pairing application
type ConnectedPayload struct {
	SessionID    string          `json:"sessionId"`
	Model        string          `json:"model"`
	Capabilities SDKCapabilities `json:"capabilities"`
}

// SDKConnectedPayload tells the simulator which application just bound
type SDKConnectedPayload struct {
	AppInfo AppInfo `json:"appInfo"`
	SDKID   string  `json:"sdkId"`
}

// ErrorPayload is the point-to-point failure reply
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
