package navigation

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/session"
)

type fakePanel struct {
	mu     sync.Mutex
	active bool
	shows  int
	hides  int
}

func (p *fakePanel) Show(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = true
	p.shows++
	return nil
}

func (p *fakePanel) Hide(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.active = false
	p.hides++
	return nil
}

func (p *fakePanel) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *fakePanel) counts() (shows, hides int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shows, p.hides
}

type fakeContainer struct {
	panels map[Route]*fakePanel

	mu      sync.Mutex
	hideAll int
	// block, when set, holds the next HideAll until closed.
	block   chan struct{}
	entered chan struct{}
}

func (c *fakeContainer) Panel(route Route) (Panel, bool) {
	p, ok := c.panels[route]
	if !ok {
		return nil, false
	}
	return p, true
}

func (c *fakeContainer) HideAll() {
	c.mu.Lock()
	c.hideAll++
	block, entered := c.block, c.entered
	c.block, c.entered = nil, nil
	c.mu.Unlock()
	if entered != nil {
		close(entered)
	}
	if block != nil {
		<-block
	}
	for _, p := range c.panels {
		_ = p.Hide(context.Background())
	}
}

type fakeScenes struct {
	router     *Router
	containers map[string]*fakeContainer
	async      bool
	// block, when set, holds LoadScene until closed or canceled.
	block   chan struct{}
	entered chan struct{}

	mu     sync.Mutex
	active string
	loads  []string
}

func (s *fakeScenes) ActiveScene() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *fakeScenes) LoadScene(ctx context.Context, scene string) error {
	if s.entered != nil {
		close(s.entered)
		s.entered = nil
	}
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c, ok := s.containers[scene]
	if !ok {
		return errors.New("no such scene")
	}
	s.mu.Lock()
	s.active = scene
	s.loads = append(s.loads, scene)
	s.mu.Unlock()
	if s.async {
		go s.router.RegisterContainer(c)
	} else {
		s.router.RegisterContainer(c)
	}
	return nil
}

func (s *fakeScenes) loadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.loads)
}

type fakeOverlays struct {
	mu     sync.Mutex
	calls  map[string]int
	layers map[string]Layer
	panels map[string]*fakePanel
}

func (o *fakeOverlays) Instantiate(_ context.Context, asset string, layer Layer) (Panel, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls[asset]++
	o.layers[asset] = layer
	p := &fakePanel{}
	o.panels[asset] = p
	return p, nil
}

func (o *fakeOverlays) count(asset string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls[asset]
}

func (o *fakeOverlays) panel(asset string) *fakePanel {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.panels[asset]
}

type routerHarness struct {
	router   *Router
	sessions *session.Store
	scenes   *fakeScenes
	overlays *fakeOverlays
	auth     *fakeContainer
	main     *fakeContainer
}

func testTable(t *testing.T) Table {
	t.Helper()
	table, err := NewTable(
		Definition{Route: RouteLogin, Kind: ScenePage, Scene: "auth"},
		Definition{Route: RouteRegister, Kind: ScenePage, Scene: "auth"},
		Definition{Route: RouteLobby, Kind: ScenePage, Scene: "main", Flags: RequiresAuth | ClearHistory},
		Definition{Route: RouteProfile, Kind: Window, Asset: "profile", Flags: RequiresAuth},
		Definition{Route: RouteShop, Kind: Window, Asset: "shop", Flags: RequiresAuth},
		Definition{Route: RouteInventory, Kind: Window, Asset: "inventory", Flags: RequiresAuth | Additive},
		Definition{Route: RouteSettings, Kind: Popup, Asset: "settings", Flags: Additive},
		Definition{Route: RouteConfirm, Kind: Popup, Asset: "confirm", Flags: Additive | Transient},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return table
}

func newRouterHarness(t *testing.T, loggedIn bool) *routerHarness {
	t.Helper()
	logger := pslog.NewWithOptions(io.Discard, pslog.Options{Mode: pslog.ModeStructured, DisableTimestamp: true, NoColor: true})
	sessions := session.NewStore(nil, logger)
	if loggedIn {
		sessions.SetSession("access", "refresh")
	}
	h := &routerHarness{
		sessions: sessions,
		auth: &fakeContainer{panels: map[Route]*fakePanel{
			RouteLogin: {},
		}},
		main: &fakeContainer{panels: map[Route]*fakePanel{
			RouteLobby: {},
		}},
		overlays: &fakeOverlays{
			calls:  map[string]int{},
			layers: map[string]Layer{},
			panels: map[string]*fakePanel{},
		},
	}
	h.scenes = &fakeScenes{containers: map[string]*fakeContainer{"auth": h.auth, "main": h.main}}
	router, err := NewRouter(Options{
		Table:    testTable(t),
		Sessions: sessions,
		Scenes:   h.scenes,
		Overlays: h.overlays,
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	h.scenes.router = router
	h.router = router
	t.Cleanup(router.Close)
	return h
}

func TestNavigateRequiresAuthRedirectsToLogin(t *testing.T) {
	h := newRouterHarness(t, false)
	ctx := context.Background()

	h.router.NavigateTo(ctx, RouteProfile)
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
	if got, ok := h.router.Pending(); !ok || got != RouteProfile {
		t.Fatalf("Pending = %s,%v, want %s,true", got, ok, RouteProfile)
	}
	if h.overlays.count("profile") != 0 {
		t.Fatalf("profile instantiated before login")
	}

	h.sessions.SetSession("access", "refresh")
	h.router.Wait()
	if got := h.router.Current(); got != RouteProfile {
		t.Fatalf("Current after login = %s, want %s", got, RouteProfile)
	}
	if _, ok := h.router.Pending(); ok {
		t.Fatalf("pending route not cleared after login")
	}
}

func TestLoginOnLoginRouteGoesToLanding(t *testing.T) {
	h := newRouterHarness(t, false)
	h.router.NavigateTo(context.Background(), RouteLogin)

	h.sessions.SetSession("access", "refresh")
	h.router.Wait()
	if got := h.router.Current(); got != RouteLobby {
		t.Fatalf("Current = %s, want %s", got, RouteLobby)
	}
	if _, ok := h.router.Pending(); ok {
		t.Fatalf("pending route set")
	}
	if shows, _ := h.main.panels[RouteLobby].counts(); shows != 1 {
		t.Fatalf("lobby shows = %d, want 1", shows)
	}
}

func TestLogoutOnProtectedRouteRedirectsToLogin(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()
	h.router.NavigateTo(ctx, RouteLobby)
	h.router.NavigateTo(ctx, RouteProfile)

	h.sessions.ClearSession()
	h.router.Wait()
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
	if _, ok := h.router.Pending(); ok {
		t.Fatalf("pending route set after logout")
	}
	if h.overlays.panel("profile").Active() {
		t.Fatalf("profile overlay still visible after logout")
	}
}

func TestLogoutClearsPendingRoute(t *testing.T) {
	h := newRouterHarness(t, false)
	h.router.NavigateTo(context.Background(), RouteShop)
	if _, ok := h.router.Pending(); !ok {
		t.Fatalf("pending route not recorded")
	}
	h.sessions.ClearSession()
	h.router.Wait()
	if _, ok := h.router.Pending(); ok {
		t.Fatalf("pending route survived logout")
	}
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
}

func TestHistoryPolicy(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()

	steps := []struct {
		route Route
		want  []Route
	}{
		{RouteLobby, []Route{}},
		{RouteProfile, []Route{RouteLobby}},
		{RouteProfile, []Route{RouteLobby, RouteProfile}},
		{RouteProfile, []Route{RouteLobby, RouteProfile}},
		{RouteConfirm, []Route{RouteLobby, RouteProfile}},
		{RouteShop, []Route{RouteLobby, RouteProfile}},
		{RouteProfile, []Route{RouteLobby, RouteProfile, RouteShop}},
		{RouteLobby, []Route{RouteProfile}},
	}
	for i, step := range steps {
		h.router.NavigateTo(ctx, step.route)
		if got := h.router.Current(); got != step.route {
			t.Fatalf("step %d: Current = %s, want %s", i, got, step.route)
		}
		if diff := cmp.Diff(step.want, h.router.History()); diff != "" {
			t.Fatalf("step %d (%s): history mismatch (-want +got):\n%s", i, step.route, diff)
		}
	}
}

func TestGoBackOnEmptyHistoryIsNoop(t *testing.T) {
	h := newRouterHarness(t, true)
	h.router.NavigateTo(context.Background(), RouteLobby)
	loads := h.scenes.loadCount()

	h.router.GoBack(context.Background())
	if got := h.router.Current(); got != RouteLobby {
		t.Fatalf("Current = %s, want %s", got, RouteLobby)
	}
	if h.scenes.loadCount() != loads {
		t.Fatalf("GoBack on empty history loaded a scene")
	}
}

func TestGoBackReplaysWithoutPushing(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()
	h.router.NavigateTo(ctx, RouteLobby)
	h.router.NavigateTo(ctx, RouteProfile)
	h.router.NavigateTo(ctx, RouteShop)

	h.router.GoBack(ctx)
	if got := h.router.Current(); got != RouteProfile {
		t.Fatalf("Current = %s, want %s", got, RouteProfile)
	}
	if diff := cmp.Diff([]Route{RouteLobby}, h.router.History()); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
	if h.overlays.panel("shop").Active() {
		t.Fatalf("shop still visible after going back")
	}
	if h.overlays.count("profile") != 1 {
		t.Fatalf("profile instantiated %d times, want 1", h.overlays.count("profile"))
	}
}

func TestGoBackOnAdditiveRouteOnlyHides(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()
	h.router.NavigateTo(ctx, RouteLobby)
	h.router.NavigateTo(ctx, RouteInventory)

	lobby := h.main.panels[RouteLobby]
	if !lobby.Active() {
		t.Fatalf("additive route closed the lobby")
	}
	inventory := h.overlays.panel("inventory")
	if !inventory.Active() {
		t.Fatalf("inventory not shown")
	}
	lobbyShows, _ := lobby.counts()
	hideAll := h.main.hideAll
	loads := h.scenes.loadCount()

	h.router.GoBack(ctx)
	if got := h.router.Current(); got != RouteLobby {
		t.Fatalf("Current = %s, want %s", got, RouteLobby)
	}
	if inventory.Active() {
		t.Fatalf("inventory still visible")
	}
	if shows, _ := lobby.counts(); shows != lobbyShows {
		t.Fatalf("lobby shown again: %d, want %d", shows, lobbyShows)
	}
	if h.main.hideAll != hideAll || h.scenes.loadCount() != loads {
		t.Fatalf("GoBack on additive route ran a full transition")
	}
	if got := len(h.router.History()); got != 0 {
		t.Fatalf("history length = %d, want 0", got)
	}
}

func TestOverlayHandleIsReused(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()

	h.router.NavigateTo(ctx, RouteProfile)
	first := h.overlays.panel("profile")
	h.router.NavigateTo(ctx, RouteShop)
	h.router.NavigateTo(ctx, RouteProfile)

	if got := h.overlays.count("profile"); got != 1 {
		t.Fatalf("profile instantiated %d times, want 1", got)
	}
	if h.overlays.panel("profile") != first {
		t.Fatalf("profile handle replaced")
	}
	if shows, hides := first.counts(); shows != 2 || hides != 1 {
		t.Fatalf("profile shows/hides = %d/%d, want 2/1", shows, hides)
	}
}

func TestOverlayLayerFollowsKind(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()
	h.router.NavigateTo(ctx, RouteProfile)
	h.router.NavigateTo(ctx, RouteSettings)

	h.overlays.mu.Lock()
	defer h.overlays.mu.Unlock()
	want := map[string]Layer{"profile": LayerWindow, "settings": LayerPopup}
	if diff := cmp.Diff(want, h.overlays.layers); diff != "" {
		t.Fatalf("layers mismatch (-want +got):\n%s", diff)
	}
}

func TestSceneNavigationWaitsForAsyncRegistration(t *testing.T) {
	h := newRouterHarness(t, true)
	h.scenes.async = true

	h.router.NavigateTo(context.Background(), RouteLobby)
	if got := h.router.Current(); got != RouteLobby {
		t.Fatalf("Current = %s, want %s", got, RouteLobby)
	}
	if !h.main.panels[RouteLobby].Active() {
		t.Fatalf("lobby panel not shown")
	}
}

func TestNewNavigationCancelsRunningTransition(t *testing.T) {
	h := newRouterHarness(t, true)
	h.scenes.block = make(chan struct{})
	entered := make(chan struct{})
	h.scenes.entered = entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.router.NavigateTo(context.Background(), RouteLobby)
	}()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("scene load never started")
	}

	h.router.NavigateTo(context.Background(), RouteProfile)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("superseded navigation did not stop")
	}
	if got := h.router.Current(); got != RouteProfile {
		t.Fatalf("Current = %s, want %s", got, RouteProfile)
	}
	if h.main.panels[RouteLobby].Active() {
		t.Fatalf("canceled transition showed its panel")
	}
}

func TestSupersededTransitionLeavesSceneUntouched(t *testing.T) {
	h := newRouterHarness(t, true)
	h.auth.panels[RouteRegister] = &fakePanel{}
	ctx := context.Background()
	h.router.NavigateTo(ctx, RouteLogin)

	block := make(chan struct{})
	entered := make(chan struct{})
	h.auth.mu.Lock()
	h.auth.block, h.auth.entered = block, entered
	h.auth.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.router.NavigateTo(ctx, RouteLobby)
	}()
	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("lobby transition never reached HideAll")
	}

	h.router.NavigateTo(ctx, RouteRegister)
	if got := h.router.Current(); got != RouteRegister {
		t.Fatalf("Current = %s, want %s", got, RouteRegister)
	}
	close(block)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("superseded navigation did not stop")
	}

	if got := h.router.Current(); got != RouteRegister {
		t.Fatalf("Current after stale transition = %s, want %s", got, RouteRegister)
	}
	if n := h.scenes.loadCount(); n != 1 {
		t.Fatalf("scene loads = %d, want 1", n)
	}
	if h.main.panels[RouteLobby].Active() {
		t.Fatalf("stale transition showed the lobby")
	}

	h.router.NavigateTo(ctx, RouteLogin)
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
	if !h.auth.panels[RouteLogin].Active() || h.auth.panels[RouteRegister].Active() {
		t.Fatalf("login not shown over register")
	}
}

func TestCanceledContextLeavesRouteUnchanged(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h.router.NavigateTo(ctx, RouteProfile)
	if got := h.router.Current(); got != RouteStartup {
		t.Fatalf("Current = %s, want %s", got, RouteStartup)
	}
}

func TestNavigationFailuresAreSwallowed(t *testing.T) {
	h := newRouterHarness(t, true)
	ctx := context.Background()

	h.router.NavigateTo(ctx, Route(99))
	if got := h.router.Current(); got != RouteStartup {
		t.Fatalf("undefined route: Current = %s, want %s", got, RouteStartup)
	}
	// Register lives in the auth scene but has no panel there.
	h.router.NavigateTo(ctx, RouteRegister)
	if got := h.router.Current(); got != RouteStartup {
		t.Fatalf("missing panel: Current = %s, want %s", got, RouteStartup)
	}
	h.router.NavigateTo(ctx, RouteLogin)
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
}

func TestCloseStopsSessionReactions(t *testing.T) {
	h := newRouterHarness(t, false)
	h.router.NavigateTo(context.Background(), RouteLogin)
	h.router.Close()

	h.sessions.SetSession("access", "refresh")
	h.router.Wait()
	if got := h.router.Current(); got != RouteLogin {
		t.Fatalf("Current = %s, want %s", got, RouteLogin)
	}
}

func TestParseHelpers(t *testing.T) {
	for _, r := range Routes() {
		got, err := ParseRoute(r.String())
		if err != nil || got != r {
			t.Fatalf("ParseRoute(%q) = %s, %v", r.String(), got, err)
		}
	}
	flags, err := ParseFlags([]string{"requires_auth", " Additive "})
	if err != nil {
		t.Fatalf("ParseFlags: %v", err)
	}
	if flags != RequiresAuth|Additive {
		t.Fatalf("flags = %s, want requires_auth|additive", flags)
	}
	if _, err := ParseFlags([]string{"sticky"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
	if _, err := NewTable(Definition{Route: RouteShop, Kind: Window}); err == nil {
		t.Fatalf("expected error for window without asset")
	}
}
