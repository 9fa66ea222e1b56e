package softphone

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"swooche-router/internal/presence"
	"swooche-router/internal/voicetoken"
)

type staticTokens struct {
	tok voicetoken.VoiceToken
	err error

	mu      sync.Mutex
	fetched int
	journal *[]string
}

func (s *staticTokens) Fetch(ctx context.Context) (voicetoken.VoiceToken, error) {
	s.mu.Lock()
	s.fetched++
	if s.journal != nil {
		*s.journal = append(*s.journal, "token")
	}
	s.mu.Unlock()
	if s.err != nil {
		return voicetoken.VoiceToken{}, s.err
	}
	return s.tok, nil
}

type recordingReporter struct {
	mu      sync.Mutex
	reports []presence.Status
}

func (r *recordingReporter) Report(ctx context.Context, identity string, status presence.Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, status)
}

func (r *recordingReporter) all() []presence.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]presence.Status, len(r.reports))
	copy(out, r.reports)
	return out
}

func newTestSession(t *testing.T) (*Session, *SimDevice, *SimMedia, *recordingReporter) {
	t.Helper()
	dev := NewSimDevice()
	media := NewSimMedia()
	rep := &recordingReporter{}
	s := NewSession(Config{
		Platform:     PlatformConsole,
		Device:       dev,
		Media:        media,
		Tokens:       &staticTokens{tok: voicetoken.VoiceToken{Token: "tok-1", Identity: "Shakeel"}},
		Presence:     rep,
		TickInterval: 5 * time.Millisecond,
	})
	dev.Bind(s)
	return s, dev, media, rep
}

func TestStartRegistersAndReportsReady(t *testing.T) {
	s, dev, media, rep := newTestSession(t)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("state = %q, want %q", got, StateReady)
	}
	if !s.Started() {
		t.Fatal("Started() = false after successful start")
	}
	if !dev.Registered() {
		t.Fatal("device not registered")
	}
	if got := s.Identity(); got != "Shakeel" {
		t.Fatalf("identity = %q, want Shakeel", got)
	}
	if n := media.OpenGrants(); n != 0 {
		t.Fatalf("open mic grants after start = %d, want 0", n)
	}
	if got := rep.all(); len(got) != 1 || got[0] != presence.StatusReady {
		t.Fatalf("reports = %v, want [ready]", got)
	}
}

func TestAnswerAndRemoteDisconnectRoundTrip(t *testing.T) {
	s, dev, _, rep := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	call := dev.EmitIncoming("+61400111222")
	if got := s.State(); got != StateRinging {
		t.Fatalf("state = %q, want %q", got, StateRinging)
	}
	if got := s.Counterparty(); got != "+61400111222" {
		t.Fatalf("counterparty = %q", got)
	}

	s.Accept()
	if got := s.State(); got != StateConnected {
		t.Fatalf("state = %q, want %q", got, StateConnected)
	}
	if !call.Accepted() {
		t.Fatal("call not accepted on device")
	}

	time.Sleep(30 * time.Millisecond)
	if s.DurationSeconds() == 0 {
		t.Fatal("duration did not advance while connected")
	}

	dev.EmitDisconnect()
	if got := s.State(); got != StateReady {
		t.Fatalf("state = %q, want %q", got, StateReady)
	}
	if d := s.DurationSeconds(); d != 0 {
		t.Fatalf("duration after disconnect = %d, want 0", d)
	}
	if got := s.Counterparty(); got != "" {
		t.Fatalf("counterparty after disconnect = %q, want empty", got)
	}

	want := []presence.Status{presence.StatusReady, presence.StatusInCall, presence.StatusReady}
	got := rep.all()
	if len(got) != len(want) {
		t.Fatalf("reports = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("reports[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestCallerCancelsBeforeAnswer(t *testing.T) {
	s, dev, _, rep := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dev.EmitIncoming("+61400111222")
	dev.EmitCancel()

	if got := s.State(); got != StateReady {
		t.Fatalf("state = %q, want %q", got, StateReady)
	}
	if d := s.DurationSeconds(); d != 0 {
		t.Fatalf("duration = %d, want 0", d)
	}
	// The agent never left availability, so the only report is the one
	// from startup.
	if got := rep.all(); len(got) != 1 || got[0] != presence.StatusReady {
		t.Fatalf("reports = %v, want [ready]", got)
	}
}

func TestRejectReturnsReadyWithoutReport(t *testing.T) {
	s, dev, _, rep := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	call := dev.EmitIncoming("+61400111222")
	s.Reject()

	if got := s.State(); got != StateReady {
		t.Fatalf("state = %q, want %q", got, StateReady)
	}
	if !call.Rejected() {
		t.Fatal("call not rejected on device")
	}
	if got := rep.all(); len(got) != 1 {
		t.Fatalf("reports = %v, want only the startup report", got)
	}
}

func TestDeviceErrorAfterStart(t *testing.T) {
	s, dev, _, rep := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dev.EmitError(errors.New("registration dropped"))

	if got := s.State(); got != StateError {
		t.Fatalf("state = %q, want %q", got, StateError)
	}
	if s.Started() {
		t.Fatal("Started() = true after device error")
	}
	if got := s.Err(); got != "registration dropped" {
		t.Fatalf("Err() = %q", got)
	}
	got := rep.all()
	if len(got) == 0 || got[len(got)-1] != presence.StatusError {
		t.Fatalf("reports = %v, want error status last", got)
	}
}

func TestStartFailureRollsBack(t *testing.T) {
	dev := NewSimDevice()
	media := NewSimMedia()
	rep := &recordingReporter{}
	fetchErr := errors.New("router unreachable")
	s := NewSession(Config{
		Platform: PlatformConsole,
		Device:   dev,
		Media:    media,
		Tokens:   &staticTokens{err: fetchErr},
		Presence: rep,
	})
	dev.Bind(s)

	if err := s.Start(context.Background()); !errors.Is(err, fetchErr) {
		t.Fatalf("Start err = %v, want %v", err, fetchErr)
	}
	if got := s.State(); got != StateError {
		t.Fatalf("state = %q, want %q", got, StateError)
	}
	if s.Started() {
		t.Fatal("Started() = true after failed start")
	}
	if n := media.OpenGrants(); n != 0 {
		t.Fatalf("open mic grants = %d, want 0", n)
	}
	if got := rep.all(); len(got) != 0 {
		t.Fatalf("reports = %v, want none", got)
	}
}

func TestRestartFromErrorState(t *testing.T) {
	s, dev, _, _ := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	dev.EmitError(errors.New("boom"))
	if got := s.State(); got != StateError {
		t.Fatalf("state = %q, want %q", got, StateError)
	}

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("state after restart = %q, want %q", got, StateReady)
	}
	if got := s.Err(); got != "" {
		t.Fatalf("Err() after restart = %q, want empty", got)
	}
}

func TestStartWhileActiveRefused(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start err = %v, want ErrSessionActive", err)
	}
}

func TestUnsupportedMediaErrorsSuppressed(t *testing.T) {
	dev := NewSimDevice()
	media := NewSimMedia()
	media.AcquireErr = errors.New("getUserMedia is not supported by this browser")
	s := NewSession(Config{
		Platform: PlatformConsole,
		Device:   dev,
		Media:    media,
		Tokens:   &staticTokens{tok: voicetoken.VoiceToken{Token: "tok-1", Identity: "Shakeel"}},
	})
	dev.Bind(s)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start with unsupported media: %v", err)
	}
	if got := s.State(); got != StateReady {
		t.Fatalf("state = %q, want %q", got, StateReady)
	}

	dev.EmitError(errors.New("enumerateDevices is not supported"))
	if got := s.State(); got != StateReady {
		t.Fatalf("state after suppressed error = %q, want %q", got, StateReady)
	}
}

func TestSecondIncomingWhileRingingDropped(t *testing.T) {
	s, dev, _, _ := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dev.EmitIncoming("+61400111222")
	dev.EmitIncoming("+61400999888")

	if got := s.State(); got != StateRinging {
		t.Fatalf("state = %q, want %q", got, StateRinging)
	}
	if got := s.Counterparty(); got != "+61400111222" {
		t.Fatalf("counterparty = %q, want first caller kept", got)
	}
}

func TestTimerStopSurvivesErrorAfterHangup(t *testing.T) {
	s, dev, _, _ := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	dev.EmitIncoming("+61400111222")
	s.Accept()
	s.EndCall()

	// The error path also carries a stop-timer effect; stopping an already
	// stopped timer must not panic.
	dev.EmitError(errors.New("boom"))

	if got := s.State(); got != StateError {
		t.Fatalf("state = %q, want %q", got, StateError)
	}
	if d := s.DurationSeconds(); d != 0 {
		t.Fatalf("duration = %d, want 0", d)
	}
}

func TestMobileConfiguresAudioBeforeTokenFetch(t *testing.T) {
	var order []string
	dev := NewSimDevice()
	media := NewSimMedia()
	tokens := &staticTokens{
		tok:     voicetoken.VoiceToken{Token: "tok-1", Identity: "Shakeel"},
		journal: &order,
	}
	s := NewSession(Config{
		Platform: PlatformMobile,
		Device:   dev,
		Media:    media,
		Tokens:   tokens,
		ConfigureAudio: func(ctx context.Context) error {
			order = append(order, "audio")
			return nil
		},
	})
	dev.Bind(s)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(order) != 2 || order[0] != "audio" || order[1] != "token" {
		t.Fatalf("start order = %v, want [audio token]", order)
	}
}

func TestStopReportsOffline(t *testing.T) {
	s, _, _, rep := newTestSession(t)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.Stop()
	if got := s.State(); got != StateIdle {
		t.Fatalf("state = %q, want %q", got, StateIdle)
	}
	got := rep.all()
	if len(got) == 0 || got[len(got)-1] != presence.StatusOffline {
		t.Fatalf("reports = %v, want offline last", got)
	}
}
