// Package navigation moves the user between routes. The Router keeps a
// back-navigable history, redirects to login when a route needs an
// authenticated session, and cancels a running transition when a new one
// starts.
package navigation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/session"
)

var (
	errNoContainer = errors.New("no scene container registered")
	errNoPanel     = errors.New("panel not found")
)

// Options configures a Router.
type Options struct {
	Table    Table
	Sessions *session.Store
	Scenes   SceneLoader
	Overlays OverlayLoader
	// Landing is where a plain login lands. Defaults to RouteLobby.
	Landing Route
	Logger  pslog.Logger
}

// transition is the cancellation scope of one navigation.
type transition struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Router is the navigation state machine.
type Router struct {
	table    Table
	sessions *session.Store
	scenes   SceneLoader
	loader   OverlayLoader
	landing  Route
	logger   pslog.Logger

	base        context.Context
	stop        context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup

	mu         sync.Mutex
	closed     bool
	current    Route
	history    []Route
	pending    Route
	hasPending bool
	overlays   map[Route]Panel
	container  Container
	ready      chan struct{}
	active     *transition
}

// NewRouter returns a router positioned on RouteStartup and subscribed to
// session changes.
func NewRouter(opts Options) (*Router, error) {
	if len(opts.Table) == 0 {
		return nil, fmt.Errorf("route table is empty")
	}
	if opts.Sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Scenes == nil {
		return nil, fmt.Errorf("scene loader is required")
	}
	if opts.Overlays == nil {
		return nil, fmt.Errorf("overlay loader is required")
	}
	landing := opts.Landing
	if landing == RouteStartup {
		landing = RouteLobby
	}
	if _, ok := opts.Table[landing]; !ok {
		return nil, fmt.Errorf("landing route %s is not defined", landing)
	}
	logger := opts.Logger
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	base, stop := context.WithCancel(context.Background())
	r := &Router{
		table:    opts.Table,
		sessions: opts.Sessions,
		scenes:   opts.Scenes,
		loader:   opts.Overlays,
		landing:  landing,
		logger:   logger.With("component", "navigation"),
		base:     base,
		stop:     stop,
		current:  RouteStartup,
		overlays: make(map[Route]Panel),
	}
	r.unsubscribe = opts.Sessions.Subscribe(r.sessionChanged)
	return r, nil
}

// Current returns the route of the last completed transition.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Pending returns the route remembered while redirecting to login.
func (r *Router) Pending() (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending, r.hasPending
}

// History returns a copy of the history, oldest first.
func (r *Router) History() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, len(r.history))
	copy(out, r.history)
	return out
}

// RegisterContainer is called by a scene once its panels exist.
func (r *Router) RegisterContainer(c Container) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.container = c
	if r.ready != nil {
		close(r.ready)
		r.ready = nil
	}
}

// NavigateTo moves to route. Failures are logged, never returned.
func (r *Router) NavigateTo(ctx context.Context, route Route) {
	r.navigate(ctx, route, false)
}

// GoBack returns to the previous route in history.
func (r *Router) GoBack(ctx context.Context) {
	r.mu.Lock()
	if len(r.history) == 0 {
		r.mu.Unlock()
		r.logger.Debug("no history to go back to")
		return
	}
	if def, ok := r.table[r.current]; ok && def.Flags.Has(Additive) {
		panel := r.panelLocked(r.current)
		closing := r.current
		r.current = r.popLocked()
		r.mu.Unlock()
		if panel != nil {
			if err := panel.Hide(ctx); err != nil && ctx.Err() == nil {
				r.logger.Error("hide additive route failed", "route", closing, "err", err)
			}
		}
		return
	}
	target := r.popLocked()
	r.mu.Unlock()
	r.navigate(ctx, target, true)
}

// Wait blocks until navigations started by session changes have finished.
func (r *Router) Wait() {
	r.wg.Wait()
}

// Close unsubscribes from the session store, cancels the running
// transition and waits for background navigations.
func (r *Router) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	if r.active != nil {
		r.active.cancel()
	}
	r.mu.Unlock()
	r.unsubscribe()
	r.stop()
	r.wg.Wait()
}

func (r *Router) navigate(ctx context.Context, route Route, back bool) {
	def, ok := r.table[route]
	if !ok {
		r.logger.Error("route not defined", "route", route)
		return
	}
	loggedIn := r.sessions.IsLoggedIn()

	r.mu.Lock()
	if def.Flags.Has(ClearHistory) {
		r.history = r.history[:0]
	}
	if def.Flags.Has(RequiresAuth) && !loggedIn && route != RouteLogin {
		r.pending, r.hasPending = route, true
		r.mu.Unlock()
		r.logger.Debug("route requires login, redirecting", "route", route)
		r.navigate(ctx, RouteLogin, false)
		return
	}
	if !back && !def.Flags.Has(Transient) {
		r.pushLocked(r.current)
	}
	if r.active != nil {
		r.active.cancel()
	}
	scopeCtx, cancel := context.WithCancel(ctx)
	tr := &transition{ctx: scopeCtx, cancel: cancel}
	r.active = tr
	r.mu.Unlock()
	defer r.release(tr)

	err := r.run(tr, def)
	if err == nil {
		r.mu.Lock()
		if r.liveLocked(tr) == nil {
			r.current = route
			r.mu.Unlock()
			r.logger.Debug("navigated", "route", route)
			return
		}
		r.mu.Unlock()
		err = context.Canceled
	}
	if tr.ctx.Err() != nil || errors.Is(err, context.Canceled) {
		r.logger.Debug("navigation canceled", "route", route)
		return
	}
	r.logger.Error("navigation failed", "route", route, "err", err)
}

func (r *Router) release(tr *transition) {
	r.mu.Lock()
	if r.active == tr {
		r.active = nil
	}
	r.mu.Unlock()
	tr.cancel()
}

func (r *Router) run(tr *transition, def Definition) error {
	if !def.Flags.Has(Additive) {
		if err := r.closeCurrent(tr); err != nil {
			return err
		}
	}
	if def.Kind == ScenePage {
		return r.showScenePage(tr, def)
	}
	return r.showOverlay(tr, def)
}

// liveLocked reports whether tr is still the running transition. Stale
// transitions must not touch router state. Callers hold r.mu.
func (r *Router) liveLocked(tr *transition) error {
	if r.active != tr {
		return context.Canceled
	}
	return tr.ctx.Err()
}

func (r *Router) live(tr *transition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(tr)
}

// closeCurrent hides every active overlay and the scene's panels.
func (r *Router) closeCurrent(tr *transition) error {
	ctx := tr.ctx
	r.mu.Lock()
	overlays := make([]Panel, 0, len(r.overlays))
	for _, p := range r.overlays {
		overlays = append(overlays, p)
	}
	container := r.container
	r.mu.Unlock()

	for _, p := range overlays {
		if !p.Active() {
			continue
		}
		if err := p.Hide(ctx); err != nil {
			return fmt.Errorf("hide overlay: %w", err)
		}
	}
	if err := r.live(tr); err != nil {
		return err
	}
	if container != nil {
		container.HideAll()
	}
	return r.live(tr)
}

func (r *Router) showScenePage(tr *transition, def Definition) error {
	ctx := tr.ctx
	if r.scenes.ActiveScene() != def.Scene {
		// The previous container stays registered until the new scene
		// replaces it, so a newer transition in the old scene still works.
		ready := make(chan struct{})
		r.mu.Lock()
		if err := r.liveLocked(tr); err != nil {
			r.mu.Unlock()
			return err
		}
		r.ready = ready
		r.mu.Unlock()

		if err := r.scenes.LoadScene(ctx, def.Scene); err != nil {
			return fmt.Errorf("load scene %s: %w", def.Scene, err)
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	r.mu.Lock()
	if err := r.liveLocked(tr); err != nil {
		r.mu.Unlock()
		return err
	}
	container := r.container
	r.mu.Unlock()
	if container == nil {
		return fmt.Errorf("%w for scene %s", errNoContainer, def.Scene)
	}
	panel, ok := container.Panel(def.Route)
	if !ok || panel == nil {
		return fmt.Errorf("%w: route %s in scene %s", errNoPanel, def.Route, def.Scene)
	}
	return panel.Show(ctx)
}

func (r *Router) showOverlay(tr *transition, def Definition) error {
	ctx := tr.ctx
	r.mu.Lock()
	panel, ok := r.overlays[def.Route]
	r.mu.Unlock()

	if !ok {
		created, err := r.loader.Instantiate(ctx, def.Asset, def.Layer())
		if err != nil {
			return fmt.Errorf("instantiate %s: %w", def.Asset, err)
		}
		if created == nil {
			return fmt.Errorf("%w: asset %s", errNoPanel, def.Asset)
		}
		r.mu.Lock()
		if cached, ok := r.overlays[def.Route]; ok {
			panel = cached
		} else {
			r.overlays[def.Route] = created
			panel = created
		}
		r.mu.Unlock()
	}
	if err := r.live(tr); err != nil {
		return err
	}
	return panel.Show(ctx)
}

func (r *Router) sessionChanged(s session.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if s.IsAuthenticated() {
		switch {
		case r.hasPending:
			target := r.pending
			r.pending, r.hasPending = 0, false
			r.logger.Debug("resuming pending route", "route", target)
			r.spawnLocked(target)
		case r.current == RouteLogin:
			r.spawnLocked(r.landing)
		}
		return
	}
	r.hasPending = false
	r.pending = 0
	if def, ok := r.table[r.current]; ok && def.Flags.Has(RequiresAuth) {
		r.spawnLocked(RouteLogin)
	}
}

func (r *Router) spawnLocked(route Route) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.navigate(r.base, route, false)
	}()
}

func (r *Router) pushLocked(route Route) {
	def, ok := r.table[route]
	if !ok || def.Flags.Has(Transient) {
		return
	}
	if n := len(r.history); n > 0 && r.history[n-1] == route {
		return
	}
	r.history = append(r.history, route)
}

func (r *Router) popLocked() Route {
	n := len(r.history)
	top := r.history[n-1]
	r.history = r.history[:n-1]
	return top
}

func (r *Router) panelLocked(route Route) Panel {
	if p, ok := r.overlays[route]; ok {
		return p
	}
	if r.container != nil {
		if p, ok := r.container.Panel(route); ok {
			return p
		}
	}
	return nil
}
