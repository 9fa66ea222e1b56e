package softphone

import (
	"context"
	"strings"
)

// Device is the telephony endpoint a session drives. Implementations wrap a
// provider SDK (or a simulator) and deliver callbacks through the session's
// On* methods.
//
// Action methods (Register, DisconnectAll, and the IncomingCall methods) are
// invoked while the session holds its lock and must not synchronously emit
// session events.
type Device interface {
	// Register brings the device online with a signed access token so it
	// can receive calls addressed to the token's identity.
	Register(ctx context.Context, token string) error

	// DisconnectAll tears down any active connections on the device.
	DisconnectAll()
}

// IncomingCall is a single inbound call attempt delivered by a Device.
type IncomingCall interface {
	From() string
	Accept() error
	Reject() error
}

// MediaGrant is a held microphone permission. It is released on every path
// out of the starting state.
type MediaGrant interface {
	Stop()
}

// MediaSource acquires a microphone permission grant before registration.
// Acquiring up front surfaces permission problems at start time instead of
// on the first answered call.
type MediaSource interface {
	Acquire(ctx context.Context) (MediaGrant, error)
}

// isUnsupportedMedia reports whether err is the media-acquisition error
// raised on runtimes without microphone enumeration. Those runtimes still
// complete calls through the provider SDK's own audio path, so the error is
// expected and must not drive the session into the error state.
func isUnsupportedMedia(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "not support") {
		return false
	}
	return strings.Contains(msg, "getusermedia") ||
		strings.Contains(msg, "enumeratedevices") ||
		strings.Contains(msg, "media")
}
