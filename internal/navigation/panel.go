package navigation

import "context"

// Panel is a screen that can be shown and hidden.
type Panel interface {
	Show(ctx context.Context) error
	Hide(ctx context.Context) error
	Active() bool
}

// Container holds the panels of a loaded scene.
type Container interface {
	Panel(route Route) (Panel, bool)
	HideAll()
}

// SceneLoader switches scenes. After LoadScene the new scene registers its
// container through Router.RegisterContainer.
type SceneLoader interface {
	ActiveScene() string
	LoadScene(ctx context.Context, scene string) error
}

// OverlayLoader instantiates window and popup assets.
type OverlayLoader interface {
	Instantiate(ctx context.Context, asset string, layer Layer) (Panel, error)
}
