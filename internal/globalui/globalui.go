// Package globalui holds the application-wide error, alert and loading
// surfaces that the gateway escalates to.
package globalui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"pkt.systems/pslog"
)

// Service is the global UI contract.
type Service interface {
	ShowNetworkError()
	ShowMaintenance()
	ShowUpdateRequired()
	ShowServerError()
	ShowAlert(title, message string)
	HideAlert()
	ShowLoading(message string)
	HideLoading()
}

// Kind identifies what the console currently shows.
type Kind string

const (
	KindNone           Kind = ""
	KindNetworkError   Kind = "network_error"
	KindMaintenance    Kind = "maintenance"
	KindUpdateRequired Kind = "update_required"
	KindServerError    Kind = "server_error"
	KindAlert          Kind = "alert"
)

var (
	colorRed    = lipgloss.Color("#f7768e")
	colorYellow = lipgloss.Color("#e0af68")
	colorBlue   = lipgloss.Color("#7aa2f7")
	colorBorder = lipgloss.Color("#565f89")

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	blockingTitleStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	alertTitleStyle = lipgloss.NewStyle().
			Foreground(colorBlue).
			Bold(true)

	loadingStyle = lipgloss.NewStyle().
			Foreground(colorBorder).
			Italic(true)
)

// Console renders global UI states to a terminal.
type Console struct {
	out    io.Writer
	logger pslog.Logger

	mu      sync.Mutex
	kind    Kind
	title   string
	message string
	loading string
	shown   map[Kind]int
}

// NewConsole returns a Console writing to out (stderr when nil).
func NewConsole(out io.Writer, logger pslog.Logger) *Console {
	if out == nil {
		out = os.Stderr
	}
	if logger == nil {
		logger = pslog.LoggerFromEnv()
	}
	return &Console{out: out, logger: logger, shown: make(map[Kind]int)}
}

func (c *Console) ShowNetworkError() {
	c.show(KindNetworkError, errorTitleStyle, "No connection", "Check your network connection and try again.")
}

func (c *Console) ShowMaintenance() {
	c.show(KindMaintenance, blockingTitleStyle, "Maintenance", "The server is under maintenance. Please come back later.")
}

func (c *Console) ShowUpdateRequired() {
	c.show(KindUpdateRequired, blockingTitleStyle, "Update required", "A newer version is required to continue.")
}

func (c *Console) ShowServerError() {
	c.show(KindServerError, errorTitleStyle, "Server error", "Something went wrong on our side. Please try again.")
}

func (c *Console) ShowAlert(title, message string) {
	if strings.TrimSpace(title) == "" {
		title = "Alert"
	}
	c.show(KindAlert, alertTitleStyle, title, message)
}

func (c *Console) HideAlert() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = KindNone
	c.title = ""
	c.message = ""
}

func (c *Console) ShowLoading(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if message == "" {
		message = "Loading..."
	}
	c.loading = message
	fmt.Fprintln(c.out, loadingStyle.Render(message))
}

func (c *Console) HideLoading() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = ""
}

// Current returns the visible state and its title and message.
func (c *Console) Current() (Kind, string, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kind, c.title, c.message
}

// Loading reports the visible loading message, if any.
func (c *Console) Loading() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading, c.loading != ""
}

// Count returns how many times kind was shown.
func (c *Console) Count(kind Kind) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shown[kind]
}

func (c *Console) show(kind Kind, titleStyle lipgloss.Style, title, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kind = kind
	c.title = title
	c.message = message
	c.shown[kind]++
	c.logger.Info("global ui", "kind", string(kind), "title", title)
	body := titleStyle.Render(title)
	if message != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, message)
	}
	fmt.Fprintln(c.out, boxStyle.Render(body))
}
