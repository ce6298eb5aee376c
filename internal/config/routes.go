package config

import (
	"fmt"
	"strings"

	"pkt.systems/ronin/internal/navigation"
)

// DefaultRoutes returns the built-in route table.
func DefaultRoutes() []RouteConfig {
	return []RouteConfig{
		{Route: "login", Kind: "scene", Scene: "auth", Flags: []string{"clear_history"}},
		{Route: "register", Kind: "scene", Scene: "auth"},
		{Route: "lobby", Kind: "scene", Scene: "main", Flags: []string{"requires_auth", "clear_history"}},
		{Route: "profile", Kind: "window", Asset: "ui/profile", Flags: []string{"requires_auth"}},
		{Route: "shop", Kind: "window", Asset: "ui/shop", Flags: []string{"requires_auth"}},
		{Route: "inventory", Kind: "window", Asset: "ui/inventory", Flags: []string{"requires_auth", "additive"}},
		{Route: "settings", Kind: "popup", Asset: "ui/settings", Flags: []string{"additive"}},
		{Route: "confirm", Kind: "popup", Asset: "ui/confirm", Flags: []string{"additive", "transient"}},
	}
}

// Definition converts a route entry into its navigation form.
func (rc RouteConfig) Definition() (navigation.Definition, error) {
	route, err := navigation.ParseRoute(rc.Route)
	if err != nil {
		return navigation.Definition{}, err
	}
	if route == navigation.RouteStartup {
		return navigation.Definition{}, fmt.Errorf("route %q cannot be configured", rc.Route)
	}
	kind, err := navigation.ParseKind(rc.Kind)
	if err != nil {
		return navigation.Definition{}, fmt.Errorf("route %s: %w", route, err)
	}
	flags, err := navigation.ParseFlags(rc.Flags)
	if err != nil {
		return navigation.Definition{}, fmt.Errorf("route %s: %w", route, err)
	}
	return navigation.Definition{
		Route: route,
		Flags: flags,
		Kind:  kind,
		Scene: strings.TrimSpace(rc.Scene),
		Asset: strings.TrimSpace(rc.Asset),
	}, nil
}

// RouteTable builds the navigation table, falling back to DefaultRoutes
// when none are configured.
func (c Config) RouteTable() (navigation.Table, error) {
	entries := c.Routes
	if len(entries) == 0 {
		entries = DefaultRoutes()
	}
	defs := make([]navigation.Definition, 0, len(entries))
	for _, entry := range entries {
		def, err := entry.Definition()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	table, err := navigation.NewTable(defs...)
	if err != nil {
		return nil, err
	}
	if _, ok := table[navigation.RouteLogin]; !ok {
		return nil, fmt.Errorf("route table must define %s", navigation.RouteLogin)
	}
	return table, nil
}

// LandingRoute resolves client.landing.
func (c Config) LandingRoute() (navigation.Route, error) {
	name := c.Client.Landing
	if strings.TrimSpace(name) == "" {
		name = DefaultLanding
	}
	route, err := navigation.ParseRoute(name)
	if err != nil {
		return 0, fmt.Errorf("client.landing: %w", err)
	}
	if route == navigation.RouteStartup || route == navigation.RouteLogin {
		return 0, fmt.Errorf("client.landing: %s is not a valid landing route", route)
	}
	return route, nil
}
