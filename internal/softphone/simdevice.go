package softphone

import (
	"context"
	"errors"
	"sync"
)

// SimDevice is an in-process stand-in for a provider voice SDK. It never
// touches the network; calls are injected with EmitIncoming and torn down
// with EmitCancel / EmitDisconnect / EmitError. The console softphone and the
// session tests run on it.
type SimDevice struct {
	mu         sync.Mutex
	session    *Session
	registered bool
	token      string
	active     *SimCall

	// RegisterErr, when set, makes Register fail with it.
	RegisterErr error
}

func NewSimDevice() *SimDevice {
	return &SimDevice{}
}

// Bind attaches the session that receives this device's callbacks.
func (d *SimDevice) Bind(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.session = s
}

func (d *SimDevice) Register(ctx context.Context, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.RegisterErr != nil {
		return d.RegisterErr
	}
	if token == "" {
		return errors.New("simdevice: empty token")
	}
	d.registered = true
	d.token = token
	return nil
}

func (d *SimDevice) DisconnectAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != nil {
		d.active.setEnded()
		d.active = nil
	}
}

// Registered reports whether Register has succeeded.
func (d *SimDevice) Registered() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registered
}

// EmitIncoming injects an inbound call attempt from the given number and
// returns the call handle so the test or console can inspect it.
func (d *SimDevice) EmitIncoming(from string) *SimCall {
	call := &SimCall{from: from}
	d.mu.Lock()
	d.active = call
	s := d.session
	d.mu.Unlock()
	if s != nil {
		s.OnIncoming(call)
	}
	return call
}

// EmitCancel simulates the caller hanging up before answer.
func (d *SimDevice) EmitCancel() {
	d.mu.Lock()
	if d.active != nil {
		d.active.setEnded()
		d.active = nil
	}
	s := d.session
	d.mu.Unlock()
	if s != nil {
		s.OnCancel()
	}
}

// EmitDisconnect simulates the active call ending.
func (d *SimDevice) EmitDisconnect() {
	d.mu.Lock()
	if d.active != nil {
		d.active.setEnded()
		d.active = nil
	}
	s := d.session
	d.mu.Unlock()
	if s != nil {
		s.OnDisconnect()
	}
}

// EmitError delivers a device-level error callback.
func (d *SimDevice) EmitError(err error) {
	d.mu.Lock()
	s := d.session
	d.mu.Unlock()
	if s != nil {
		s.OnDeviceError(err)
	}
}

// SimCall is a single simulated inbound call.
type SimCall struct {
	mu       sync.Mutex
	from     string
	accepted bool
	rejected bool
	ended    bool
}

func (c *SimCall) From() string { return c.from }

func (c *SimCall) Accept() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return errors.New("simcall: call already ended")
	}
	c.accepted = true
	return nil
}

func (c *SimCall) Reject() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ended {
		return errors.New("simcall: call already ended")
	}
	c.rejected = true
	c.ended = true
	return nil
}

func (c *SimCall) setEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ended = true
}

// Accepted reports whether the session answered this call.
func (c *SimCall) Accepted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accepted
}

// Rejected reports whether the session declined this call.
func (c *SimCall) Rejected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rejected
}

// SimMedia hands out no-op microphone grants and records how many are held.
type SimMedia struct {
	mu       sync.Mutex
	open     int
	acquires int

	// AcquireErr, when set, makes Acquire fail with it.
	AcquireErr error
}

func NewSimMedia() *SimMedia {
	return &SimMedia{}
}

func (m *SimMedia) Acquire(ctx context.Context) (MediaGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AcquireErr != nil {
		return nil, m.AcquireErr
	}
	m.acquires++
	m.open++
	return &simGrant{media: m}, nil
}

// OpenGrants returns the number of grants acquired and not yet stopped.
func (m *SimMedia) OpenGrants() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

type simGrant struct {
	media *SimMedia
	once  sync.Once
}

func (g *simGrant) Stop() {
	g.once.Do(func() {
		g.media.mu.Lock()
		g.media.open--
		g.media.mu.Unlock()
	})
}
