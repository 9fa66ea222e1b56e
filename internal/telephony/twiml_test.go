package telephony

import (
	"strings"
	"testing"
)

func TestRenderConnect_DialsClientIdentity(t *testing.T) {
	xml, err := RenderConnect(ConnectInstructions{
		Notice:         "This call may be recorded.",
		PauseSeconds:   1,
		ClientIdentity: "Shakeel",
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, want := range []string{"<Say>This call may be recorded.</Say>", `<Pause length="1">`, "<Dial>", "<Client>Shakeel</Client>"} {
		if !strings.Contains(xml, want) {
			t.Fatalf("expected %q in twiml:\n%s", want, xml)
		}
	}
	// Notice must precede the dial.
	if strings.Index(xml, "<Say>") > strings.Index(xml, "<Dial>") {
		t.Fatalf("expected say before dial:\n%s", xml)
	}
}

func TestRenderConnect_OmitsOptionalVerbs(t *testing.T) {
	xml, err := RenderConnect(ConnectInstructions{ClientIdentity: "Shakeel"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if strings.Contains(xml, "<Say>") || strings.Contains(xml, "<Pause") {
		t.Fatalf("expected bare dial:\n%s", xml)
	}
}

func TestRenderConnect_RequiresIdentity(t *testing.T) {
	if _, err := RenderConnect(ConnectInstructions{Notice: "hi"}); err == nil {
		t.Fatalf("expected error for missing identity")
	}
}
