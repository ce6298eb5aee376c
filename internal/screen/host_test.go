package screen

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/navigation"
	"pkt.systems/ronin/internal/session"
)

func testLogger() pslog.Logger {
	return pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, DisableTimestamp: true, NoColor: true})
}

func testTable(t *testing.T) navigation.Table {
	t.Helper()
	table, err := navigation.NewTable(
		navigation.Definition{Route: navigation.RouteLogin, Kind: navigation.ScenePage, Scene: "auth"},
		navigation.Definition{Route: navigation.RouteRegister, Kind: navigation.ScenePage, Scene: "auth"},
		navigation.Definition{Route: navigation.RouteLobby, Kind: navigation.ScenePage, Scene: "main", Flags: navigation.RequiresAuth},
		navigation.Definition{Route: navigation.RouteProfile, Kind: navigation.Window, Asset: "ui/profile", Flags: navigation.RequiresAuth},
		navigation.Definition{Route: navigation.RouteSettings, Kind: navigation.Popup, Asset: "ui/settings", Flags: navigation.Additive},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func TestHostDrivesRouter(t *testing.T) {
	var out bytes.Buffer
	table := testTable(t)
	host := NewHost(&out, table, testLogger())
	sessions := session.NewStore(nil, testLogger())
	router, err := navigation.NewRouter(navigation.Options{
		Table:    table,
		Sessions: sessions,
		Scenes:   host,
		Overlays: host,
		Logger:   testLogger(),
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	t.Cleanup(router.Close)
	host.Bind(router.RegisterContainer)
	ctx := context.Background()

	router.NavigateTo(ctx, navigation.RouteLogin)
	if diff := cmp.Diff([]string{"login"}, host.Visible()); diff != "" {
		t.Fatalf("visible after login route (-want +got):\n%s", diff)
	}

	sessions.SetSession("access", "refresh")
	router.Wait()
	if got := router.Current(); got != navigation.RouteLobby {
		t.Fatalf("Current = %s, want %s", got, navigation.RouteLobby)
	}
	if host.ActiveScene() != "main" {
		t.Fatalf("ActiveScene = %q, want main", host.ActiveScene())
	}

	router.NavigateTo(ctx, navigation.RouteProfile)
	router.NavigateTo(ctx, navigation.RouteSettings)
	if diff := cmp.Diff([]string{"ui/profile", "ui/settings"}, host.Visible()); diff != "" {
		t.Fatalf("visible overlays (-want +got):\n%s", diff)
	}
	router.GoBack(ctx)
	if diff := cmp.Diff([]string{"ui/profile"}, host.Visible()); diff != "" {
		t.Fatalf("visible after back (-want +got):\n%s", diff)
	}
	if host.Instances() != 2 {
		t.Fatalf("Instances = %d, want 2", host.Instances())
	}

	rendered := out.String()
	for _, want := range []string{"scene auth", "scene main", "window: ui/profile", "popup: ui/settings", "closed ui/settings"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("output missing %q:\n%s", want, rendered)
		}
	}
}

func TestLoadUnknownScene(t *testing.T) {
	host := NewHost(io.Discard, testTable(t), testLogger())
	if err := host.LoadScene(context.Background(), "arena"); err == nil {
		t.Fatalf("expected error for unknown scene")
	}
	if host.ActiveScene() != "" {
		t.Fatalf("ActiveScene = %q, want empty", host.ActiveScene())
	}
}
