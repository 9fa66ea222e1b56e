package routing

import (
	"context"
	"testing"
	"time"
)

func TestResolve_DefaultIdentityRegardlessOfNumber(t *testing.T) {
	tbl := NewTable("Shakeel")
	ctx := context.Background()

	for _, num := range []string{"+15551234567", "+61400000000", ""} {
		d, err := tbl.Resolve(ctx, num)
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if d.Identity != "Shakeel" || d.Source != SourceDefault {
			t.Fatalf("expected default Shakeel, got %+v", d)
		}
	}
}

func TestResolve_RouteEntryWins(t *testing.T) {
	tbl := NewTable("Shakeel")
	tbl.SetRoute("+15557654321", "Priya")

	d, err := tbl.Resolve(context.Background(), "+15557654321")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if d.Identity != "Priya" || d.Source != SourceRoute {
		t.Fatalf("expected routed Priya, got %+v", d)
	}
}

func TestResolve_RequiresDefaultIdentity(t *testing.T) {
	tbl := NewTable("")
	if _, err := tbl.Resolve(context.Background(), "+15551234567"); err != ErrNoDefaultIdentity {
		t.Fatalf("expected ErrNoDefaultIdentity, got %v", err)
	}
}

func TestResolve_OverrideBeatsRouteUntilExpiry(t *testing.T) {
	tbl := NewTable("Shakeel")
	tbl.SetRoute("+15557654321", "Priya")

	now := time.Now()
	tbl.now = func() time.Time { return now }
	tbl.Overrides().Put(Override{Number: "+15557654321", Identity: "Marcus", ExpiresAt: now.Add(time.Hour)})

	d, _ := tbl.Resolve(context.Background(), "+15557654321")
	if d.Identity != "Marcus" || d.Source != SourceOverride {
		t.Fatalf("expected override Marcus, got %+v", d)
	}

	tbl.now = func() time.Time { return now.Add(2 * time.Hour) }
	d, _ = tbl.Resolve(context.Background(), "+15557654321")
	if d.Identity != "Priya" || d.Source != SourceRoute {
		t.Fatalf("expected route after expiry, got %+v", d)
	}
}

func TestKnownIdentity(t *testing.T) {
	tbl := NewTable("Shakeel")
	tbl.SetRoute("+15557654321", "Priya")

	if !tbl.KnownIdentity("Shakeel") || !tbl.KnownIdentity("Priya") {
		t.Fatalf("expected configured identities to be known")
	}
	if tbl.KnownIdentity("Mallory") {
		t.Fatalf("expected unknown identity to be rejected")
	}
}
