package softphone

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"swooche-router/internal/presence"
	"swooche-router/internal/voicetoken"
)

// Platform names the softphone front end a session runs on. It changes the
// start sequence (mobile configures audio routing before requesting a token)
// and is attached to every log line.
type Platform string

const (
	PlatformWeb     Platform = "web"
	PlatformDesktop Platform = "desktop"
	PlatformMobile  Platform = "mobile"
	PlatformConsole Platform = "console"
)

// TokenSource fetches a registration token for this client.
type TokenSource interface {
	Fetch(ctx context.Context) (voicetoken.VoiceToken, error)
}

// PresenceReporter pushes the agent's availability to the routing side.
// Reports are advisory; a failed report must never disturb the session, so
// implementations deliver asynchronously and only log failures.
type PresenceReporter interface {
	Report(ctx context.Context, identity string, status presence.Status)
}

// ErrSessionActive is returned by Start when the session is already past
// idle. Restarting is only allowed from idle or error.
var ErrSessionActive = errors.New("softphone: session already started")

// Config assembles a session's capabilities.
type Config struct {
	Platform Platform
	Device   Device
	Media    MediaSource
	Tokens   TokenSource
	Presence PresenceReporter
	Logger   *slog.Logger

	// ConfigureAudio, when set, runs after the microphone grant and before
	// the token fetch. The mobile front end uses it to route call audio
	// through the voice channel.
	ConfigureAudio func(ctx context.Context) error

	// TickInterval is the call-duration tick. Defaults to one second.
	TickInterval time.Duration
}

// Session is the client voice session state machine. All front ends share
// this one implementation; what varies per platform is injected through
// Config.
//
// The zero session is not usable; construct with NewSession.
type Session struct {
	cfg Config
	log *slog.Logger

	mu           sync.Mutex
	state        State
	started      bool
	identity     string
	errMsg       string
	call         IncomingCall
	counterparty string
	grant        MediaGrant
	duration     int

	timerStop chan struct{}
	timerOnce *sync.Once
}

func NewSession(cfg Config) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:   cfg,
		log:   log.With("component", "softphone", "platform", string(cfg.Platform)),
		state: StateIdle,
	}
}

// State returns the current machine state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Started reports whether the session considers itself successfully started.
// It is rolled back when startup fails or a device error fires, so the UI
// flag and the error surface cannot disagree.
func (s *Session) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Err returns the retained error message, empty when none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Identity returns the identity bound to the registration token.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Counterparty returns the remote number of the pending or active call.
func (s *Session) Counterparty() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counterparty
}

// DurationSeconds returns the elapsed seconds of the connected call. It is
// zero outside a connected call: every disconnect path resets it.
func (s *Session) DurationSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Start brings the session online: acquire a microphone grant, configure
// platform audio when applicable, fetch a token, register the device. Any
// failure lands the session in the error state with started rolled back and
// the grant released, and the failure is returned to the caller.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateError {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.state = StateStarting
	s.started = true
	s.errMsg = ""
	s.mu.Unlock()

	grant, err := s.cfg.Media.Acquire(ctx)
	if err != nil {
		if isUnsupportedMedia(err) {
			// Expected on runtimes without mic enumeration; the provider
			// SDK carries its own audio path, so startup continues.
			s.log.Info("media acquisition unsupported on this runtime", "error", err)
		} else {
			return s.failStart(err)
		}
	} else {
		s.mu.Lock()
		s.grant = grant
		s.mu.Unlock()
	}

	if s.cfg.ConfigureAudio != nil {
		if err := s.cfg.ConfigureAudio(ctx); err != nil {
			return s.failStart(err)
		}
	}

	tok, err := s.cfg.Tokens.Fetch(ctx)
	if err != nil {
		return s.failStart(err)
	}
	s.mu.Lock()
	s.identity = tok.Identity
	s.mu.Unlock()

	if err := s.cfg.Device.Register(ctx, tok.Token); err != nil {
		return s.failStart(err)
	}

	s.dispatch(event{kind: eventRegistered})
	s.log.Info("softphone registered", "identity", tok.Identity)
	return nil
}

func (s *Session) failStart(err error) error {
	s.log.Error("softphone start failed", "error", err)
	s.dispatch(event{kind: eventStartFailed, err: err})
	return err
}

// Accept answers the ringing call.
func (s *Session) Accept() {
	s.dispatch(event{kind: eventAccept})
}

// Reject declines the ringing call. The session returns to ready without a
// presence report: the agent never left availability.
func (s *Session) Reject() {
	s.dispatch(event{kind: eventReject})
}

// EndCall hangs up the connected call from this side.
func (s *Session) EndCall() {
	s.dispatch(event{kind: eventEndCall})
}

// Stop takes the session offline and reports the agent as offline. Safe to
// call in any state.
func (s *Session) Stop() {
	s.dispatch(event{kind: eventStop})
}

// OnIncoming is the device callback for an inbound call attempt. While a
// call is already ringing or connected it is dropped.
func (s *Session) OnIncoming(call IncomingCall) {
	s.dispatch(event{kind: eventIncoming, call: call})
}

// OnCancel is the device callback for the caller abandoning before answer.
func (s *Session) OnCancel() {
	s.dispatch(event{kind: eventCancel})
}

// OnDisconnect is the device callback for the active call ending.
func (s *Session) OnDisconnect() {
	s.dispatch(event{kind: eventDisconnect})
}

// OnDeviceError is the device callback for SDK-level errors. Unsupported
// media acquisition errors are logged and suppressed; everything else drives
// the machine into the error state.
func (s *Session) OnDeviceError(err error) {
	if err == nil {
		return
	}
	if isUnsupportedMedia(err) {
		s.log.Info("suppressed media acquisition error", "error", err)
		return
	}
	s.dispatch(event{kind: eventDeviceError, err: err})
}

type event struct {
	kind EventKind
	call IncomingCall
	err  error
}

func (s *Session) dispatch(ev event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tr, ok := transitions[s.state][ev.kind]
	if !ok {
		s.log.Debug("event dropped in current state",
			"event", string(ev.kind), "state", string(s.state))
		return
	}

	prev := s.state
	s.state = tr.next
	for _, ef := range tr.effects {
		s.applyLocked(ef, ev)
	}
	s.log.Info("session transition",
		"from", string(prev), "to", string(tr.next), "event", string(ev.kind))
}

// applyLocked runs one effect with the session lock held. Effects touching
// the device must not synchronously re-enter the session; see Device.
func (s *Session) applyLocked(ef effect, ev event) {
	switch ef {
	case effectRecordCall:
		s.call = ev.call
		s.counterparty = ev.call.From()
	case effectClearCall:
		s.call = nil
		s.counterparty = ""
	case effectAcceptCall:
		if s.call != nil {
			if err := s.call.Accept(); err != nil {
				s.log.Error("accepting call", "error", err)
			}
		}
	case effectRejectCall:
		if s.call != nil {
			if err := s.call.Reject(); err != nil {
				s.log.Error("rejecting call", "error", err)
			}
		}
	case effectDisconnectAll:
		if s.cfg.Device != nil {
			s.cfg.Device.DisconnectAll()
		}
	case effectStartTimer:
		s.startTimerLocked()
	case effectStopTimer:
		s.stopTimerLocked()
	case effectResetDuration:
		s.duration = 0
	case effectReleaseMic:
		if s.grant != nil {
			s.grant.Stop()
			s.grant = nil
		}
	case effectRecordError:
		if ev.err != nil {
			s.errMsg = ev.err.Error()
		}
	case effectRollbackStarted:
		s.started = false
	case effectReportReady:
		s.reportLocked(presence.StatusReady)
	case effectReportInCall:
		s.reportLocked(presence.StatusInCall)
	case effectReportError:
		s.reportLocked(presence.StatusError)
	case effectReportOffline:
		s.reportLocked(presence.StatusOffline)
	}
}

func (s *Session) reportLocked(status presence.Status) {
	if s.cfg.Presence == nil || s.identity == "" {
		return
	}
	s.cfg.Presence.Report(context.Background(), s.identity, status)
}

func (s *Session) startTimerLocked() {
	s.duration = 0
	stop := make(chan struct{})
	s.timerStop = stop
	s.timerOnce = &sync.Once{}

	go func() {
		ticker := time.NewTicker(s.cfg.TickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.state == StateConnected {
					s.duration++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// stopTimerLocked stops the duration ticker exactly once even when several
// teardown paths race (remote disconnect, local hangup, device error).
func (s *Session) stopTimerLocked() {
	if s.timerOnce == nil {
		return
	}
	stop := s.timerStop
	s.timerOnce.Do(func() { close(stop) })
}
