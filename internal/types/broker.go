package types

import "errors"

// Role classifies a live connection
type Role int

const (
	// RoleUnbound is the initial role of every connection
	RoleUnbound Role = iota
	// RoleSimulator marks the single device-simulator connection
	RoleSimulator
	// RoleApplication marks an SDK client that paired successfully
	RoleApplication
)

// String returns the role name for logs
func (r Role) String() string {
	switch r {
	case RoleSimulator:
		return "simulator"
	case RoleApplication:
		return "application"
	default:
		return "unbound"
	}
}

// AppInfo identifies the SDK application submitted at pairing time
type AppInfo struct {
	PackageName string `json:"packageName"`
	Name        string `json:"name"`
	Version     string `json:"version"`
}

// Capabilities is the full hardware feature set of a glasses model
type Capabilities struct {
	TextDisplay  bool `json:"textDisplay" yaml:"textDisplay"`
	ImageDisplay bool `json:"imageDisplay" yaml:"imageDisplay"`
	Camera       bool `json:"camera" yaml:"camera"`
	Microphone   bool `json:"microphone" yaml:"microphone"`
	Speaker      bool `json:"speaker" yaml:"speaker"`
}

// SDKCapabilities is the display-relevant subset reported to an
// application on successful pairing
type SDKCapabilities struct {
	Camera  bool `json:"camera"`
	Display bool `json:"display"`
}

// ForSDK reduces the full set to what the SDK is told: camera
// passthrough, display collapsed to "any display at all"
func (c Capabilities) ForSDK() SDKCapabilities {
	return SDKCapabilities{
		Camera:  c.Camera,
		Display: c.TextDisplay || c.ImageDisplay,
	}
}

// Pairing failures surfaced to the submitting connection
var (
	ErrInvalidPairingCode = errors.New("invalid pairing code")
	ErrNoSimulator        = errors.New("simulator not connected")
)

// Wire error codes for the error event
const (
	CodeInvalidPairingCode = "INVALID_PAIRING_CODE"
	CodeNoSimulator        = "NO_SIMULATOR"
)

// ErrorCode maps a pairing failure to its wire code, empty for
// anything else
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidPairingCode):
		return CodeInvalidPairingCode
	case errors.Is(err, ErrNoSimulator):
		return CodeNoSimulator
	default:
		return ""
	}
}
