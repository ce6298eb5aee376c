package navigation

import (
	"fmt"
	"strings"
)

// Route identifies a destination in the application.
type Route int

const (
	RouteStartup Route = iota
	RouteLogin
	RouteRegister
	RouteLobby
	RouteProfile
	RouteShop
	RouteInventory
	RouteSettings
	RouteConfirm
)

var routeNames = [...]string{
	RouteStartup:   "startup",
	RouteLogin:     "login",
	RouteRegister:  "register",
	RouteLobby:     "lobby",
	RouteProfile:   "profile",
	RouteShop:      "shop",
	RouteInventory: "inventory",
	RouteSettings:  "settings",
	RouteConfirm:   "confirm",
}

func (r Route) String() string {
	if r >= 0 && int(r) < len(routeNames) {
		return routeNames[r]
	}
	return fmt.Sprintf("route(%d)", int(r))
}

// Routes lists every known route.
func Routes() []Route {
	out := make([]Route, len(routeNames))
	for i := range routeNames {
		out[i] = Route(i)
	}
	return out
}

// ParseRoute resolves a route by name.
func ParseRoute(name string) (Route, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range routeNames {
		if n == name {
			return Route(i), nil
		}
	}
	return 0, fmt.Errorf("unknown route %q", name)
}

// Flags modify how a route participates in navigation.
type Flags uint8

const (
	// RequiresAuth routes redirect to login when logged out.
	RequiresAuth Flags = 1 << iota
	// Additive routes are shown over the current screen without closing it.
	Additive
	// Transient routes are never recorded in history.
	Transient
	// ClearHistory routes empty the history before being entered.
	ClearHistory
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{RequiresAuth, "requires_auth"},
	{Additive, "additive"},
	{Transient, "transient"},
	{ClearHistory, "clear_history"},
}

// Has reports whether all bits of flag are set.
func (f Flags) Has(flag Flags) bool {
	return f&flag == flag
}

func (f Flags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseFlags combines flag names.
func ParseFlags(names []string) (Flags, error) {
	var out Flags
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || name == "none" {
			continue
		}
		found := false
		for _, fn := range flagNames {
			if fn.name == name {
				out |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown route flag %q", raw)
		}
	}
	return out, nil
}

// Kind is how a route is materialized.
type Kind int

const (
	// ScenePage is a panel inside a scene's container.
	ScenePage Kind = iota
	// Window is a full-screen overlay instantiated from an asset.
	Window
	// Popup is a small overlay instantiated from an asset.
	Popup
)

func (k Kind) String() string {
	switch k {
	case ScenePage:
		return "scene"
	case Window:
		return "window"
	case Popup:
		return "popup"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind resolves a kind by name.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "scene", "scene_page", "page":
		return ScenePage, nil
	case "window":
		return Window, nil
	case "popup":
		return Popup, nil
	}
	return 0, fmt.Errorf("unknown route kind %q", name)
}

// Layer names where overlays are instantiated.
type Layer string

const (
	LayerWindow Layer = "window"
	LayerPopup  Layer = "popup"
)

// Definition is the static configuration of a route.
type Definition struct {
	Route Route
	Flags Flags
	Kind  Kind
	// Scene backs ScenePage routes.
	Scene string
	// Asset backs Window and Popup routes.
	Asset string
}

// Layer returns the overlay layer for the definition's kind.
func (d Definition) Layer() Layer {
	if d.Kind == Popup {
		return LayerPopup
	}
	return LayerWindow
}

// Validate checks the definition is usable.
func (d Definition) Validate() error {
	switch d.Kind {
	case ScenePage:
		if d.Scene == "" {
			return fmt.Errorf("route %s: scene is required", d.Route)
		}
	case Window, Popup:
		if d.Asset == "" {
			return fmt.Errorf("route %s: asset is required", d.Route)
		}
	default:
		return fmt.Errorf("route %s: invalid kind %d", d.Route, int(d.Kind))
	}
	return nil
}

// Table maps routes to their definitions. It is read-only once built.
type Table map[Route]Definition

// NewTable validates defs and indexes them by route.
func NewTable(defs ...Definition) (Table, error) {
	table := make(Table, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := table[def.Route]; dup {
			return nil, fmt.Errorf("route %s defined twice", def.Route)
		}
		table[def.Route] = def
	}
	return table, nil
}
