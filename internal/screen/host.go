// Package screen is a terminal stand-in for the scene and overlay layers.
// Scenes are groups of page panels taken from the route table; overlays are
// created on demand per asset. Every show or hide is rendered as a line.
package screen

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"pkt.systems/pslog"
	"pkt.systems/ronin/internal/navigation"
)

var (
	sceneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	pageStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#565f89")).
			PaddingLeft(1)

	windowStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#bb9af7")).
			Padding(0, 1)

	hiddenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89")).
			Faint(true)
)

// Host implements navigation.SceneLoader and navigation.OverlayLoader.
type Host struct {
	out    io.Writer
	logger pslog.Logger
	scenes map[string][]navigation.Route

	mu       sync.Mutex
	register func(navigation.Container)
	active   string
	current  *container
	overlays []*Panel
}

// NewHost derives the scenes from the page routes in table.
func NewHost(out io.Writer, table navigation.Table, logger pslog.Logger) *Host {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	scenes := make(map[string][]navigation.Route)
	for route, def := range table {
		if def.Kind == navigation.ScenePage {
			scenes[def.Scene] = append(scenes[def.Scene], route)
		}
	}
	for _, routes := range scenes {
		sort.Slice(routes, func(i, j int) bool { return routes[i] < routes[j] })
	}
	return &Host{out: out, logger: logger.With("component", "screen"), scenes: scenes}
}

// Bind sets the callback a loaded scene registers its container with,
// normally Router.RegisterContainer.
func (h *Host) Bind(register func(navigation.Container)) {
	h.mu.Lock()
	h.register = register
	h.mu.Unlock()
}

// ActiveScene returns the loaded scene name.
func (h *Host) ActiveScene() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

// LoadScene replaces the active scene and registers its container.
func (h *Host) LoadScene(ctx context.Context, scene string) error {
	routes, ok := h.scenes[scene]
	if !ok {
		return fmt.Errorf("unknown scene %q", scene)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c := &container{panels: make(map[navigation.Route]*Panel, len(routes))}
	for _, route := range routes {
		c.panels[route] = &Panel{host: h, name: route.String(), style: pageStyle}
	}

	h.mu.Lock()
	h.active = scene
	h.current = c
	register := h.register
	h.mu.Unlock()

	h.printf("%s\n", sceneStyle.Render("scene "+scene))
	h.logger.Debug("scene loaded", "scene", scene, "panels", len(routes))
	if register != nil {
		register(c)
	}
	return nil
}

// Instantiate creates an overlay panel for asset.
func (h *Host) Instantiate(ctx context.Context, asset string, layer navigation.Layer) (navigation.Panel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if asset == "" {
		return nil, fmt.Errorf("empty asset reference")
	}
	style := windowStyle
	if layer == navigation.LayerPopup {
		style = popupStyle
	}
	p := &Panel{host: h, name: asset, layer: layer, style: style}
	h.mu.Lock()
	h.overlays = append(h.overlays, p)
	h.mu.Unlock()
	h.logger.Debug("overlay instantiated", "asset", asset, "layer", string(layer))
	return p, nil
}

// Visible lists the names of the panels currently shown, pages first.
func (h *Host) Visible() []string {
	h.mu.Lock()
	c := h.current
	overlays := append([]*Panel(nil), h.overlays...)
	h.mu.Unlock()

	var out []string
	if c != nil {
		for _, route := range sortedRoutes(c.panels) {
			if c.panels[route].Active() {
				out = append(out, c.panels[route].name)
			}
		}
	}
	for _, p := range overlays {
		if p.Active() {
			out = append(out, p.name)
		}
	}
	return out
}

// Instances returns how many overlays were created.
func (h *Host) Instances() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.overlays)
}

func (h *Host) printf(format string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, format, args...)
}

type container struct {
	panels map[navigation.Route]*Panel
}

func (c *container) Panel(route navigation.Route) (navigation.Panel, bool) {
	p, ok := c.panels[route]
	if !ok {
		return nil, false
	}
	return p, true
}

func (c *container) HideAll() {
	for _, p := range c.panels {
		p.setActive(false)
	}
}

func sortedRoutes(panels map[navigation.Route]*Panel) []navigation.Route {
	routes := make([]navigation.Route, 0, len(panels))
	for route := range panels {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i] < routes[j] })
	return routes
}

// Panel is a page or overlay rendered to the host's writer.
type Panel struct {
	host  *Host
	name  string
	layer navigation.Layer
	style lipgloss.Style

	mu     sync.Mutex
	active bool
}

// Show renders the panel.
func (p *Panel) Show(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.setActive(true)
	label := p.name
	if p.layer != "" {
		label = string(p.layer) + ": " + p.name
	}
	p.host.printf("%s\n", p.style.Render(label))
	return nil
}

// Hide marks the panel hidden.
func (p *Panel) Hide(ctx context.Context) error {
	if !p.setActive(false) {
		return nil
	}
	p.host.printf("%s\n", hiddenStyle.Render("closed "+p.name))
	return nil
}

// Active reports whether the panel is shown.
func (p *Panel) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// setActive returns whether the state changed.
func (p *Panel) setActive(active bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	changed := p.active != active
	p.active = active
	return changed
}
