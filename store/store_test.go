package store

import (
	"testing"

	"court-booking-tui/model"
)

const testServer = "http://localhost:5000/api"

func setTestConfigDir(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_CONFIG_HOME", root)
	t.Setenv("XDG_CACHE_HOME", root)
}

func TestSetCourtHidden_RoundTrip(t *testing.T) {
	setTestConfigDir(t)

	hidden, err := LoadHiddenCourts(testServer)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("expected no hidden courts, got %+v", hidden)
	}

	if err := SetCourtHidden(testServer, 1, true); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if err := SetCourtHidden(testServer, 2, true); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	hidden, err = LoadHiddenCourts(testServer)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !hidden[1] || !hidden[2] {
		t.Fatalf("expected courts to be hidden, got %+v", hidden)
	}

	if err := SetCourtHidden(testServer, 1, false); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	hidden, err = LoadHiddenCourts(testServer)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if hidden[1] {
		t.Fatalf("expected court 1 visible, got %+v", hidden)
	}
	if !hidden[2] {
		t.Fatalf("expected court 2 hidden, got %+v", hidden)
	}

	other, err := LoadHiddenCourts("https://other.example.com/api")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected hidden courts to be scoped per server, got %+v", other)
	}
}

func TestSetCourtHidden_InvalidInput(t *testing.T) {
	setTestConfigDir(t)

	if err := SetCourtHidden("", 1, true); err == nil {
		t.Fatal("expected error for empty api url")
	}
	if err := SetCourtHidden(testServer, 0, true); err == nil {
		t.Fatal("expected error for empty court id")
	}
}

func TestRememberPlayer_NewestFirstWithoutDuplicates(t *testing.T) {
	setTestConfigDir(t)

	for _, name := range []string{"Ana", "Beto", "ana "} {
		if err := RememberPlayer(name); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}

	players, err := LoadRecentPlayers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(players) != 2 || players[0] != "ana" || players[1] != "Beto" {
		t.Fatalf("unexpected history: %+v", players)
	}

	if err := RememberPlayer("   "); err == nil {
		t.Fatal("expected error for blank name")
	}
}

func TestRememberPlayer_KeepsBoundedHistory(t *testing.T) {
	setTestConfigDir(t)

	for i := 0; i < maxRecentPlayer+3; i++ {
		if err := RememberPlayer(string(rune('A' + i))); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	players, err := LoadRecentPlayers()
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(players) != maxRecentPlayer {
		t.Fatalf("expected %d players, got %d", maxRecentPlayer, len(players))
	}
}

func TestCourtCache_RoundTrip(t *testing.T) {
	setTestConfigDir(t)

	cached, fresh, err := LoadCourtCache(testServer)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if fresh || len(cached) != 0 {
		t.Fatalf("expected empty stale cache, got %+v fresh=%v", cached, fresh)
	}

	courts := []model.Court{{ID: 1, Name: "Court A", Type: "clay", Location: "North"}}
	if err := SaveCourtCache(testServer, courts); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	cached, fresh, err = LoadCourtCache(testServer)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !fresh || len(cached) != 1 || cached[0].Name != "Court A" {
		t.Fatalf("unexpected cache: %+v fresh=%v", cached, fresh)
	}
}

func TestServerKey(t *testing.T) {
	if got := serverKey("HTTP://Localhost:5000/api/"); got != "localhost_5000_api" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := serverKey(""); got != "default" {
		t.Fatalf("unexpected key: %q", got)
	}
}
