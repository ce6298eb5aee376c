package gateway

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

type renewOutcome int

const (
	renewFailed renewOutcome = iota
	renewOK
	renewExpired
	renewCanceled
)

func (o renewOutcome) String() string {
	switch o {
	case renewOK:
		return "ok"
	case renewExpired:
		return "expired"
	case renewCanceled:
		return "canceled"
	default:
		return "failed"
	}
}

const renewKey = "renew"

// renewGate admits one token renewal at a time. Concurrent callers share
// the running renewal's outcome; callers that only need to avoid sending
// a stale token wait on the running channel.
type renewGate struct {
	group singleflight.Group

	mu      sync.Mutex
	running chan struct{}
	// last remembers the outcome for the access token that was renewed.
	lastToken   string
	lastOutcome renewOutcome
	settled     bool
}

// wait blocks while a renewal is running.
func (g *renewGate) wait(ctx context.Context) error {
	g.mu.Lock()
	running := g.running
	g.mu.Unlock()
	if running == nil {
		return nil
	}
	select {
	case <-running:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// do runs fn unless a renewal is already running, in which case the caller
// joins it. fn runs detached from ctx; ctx only bounds the caller's wait.
func (g *renewGate) do(ctx context.Context, fn func() renewOutcome) renewOutcome {
	ch := g.group.DoChan(renewKey, func() (any, error) {
		done := make(chan struct{})
		g.mu.Lock()
		g.running = done
		g.mu.Unlock()
		defer func() {
			g.mu.Lock()
			g.running = nil
			g.mu.Unlock()
			close(done)
		}()
		return fn(), nil
	})
	select {
	case res := <-ch:
		outcome, _ := res.Val.(renewOutcome)
		return outcome
	case <-ctx.Done():
		return renewCanceled
	}
}

func (g *renewGate) settle(token string, outcome renewOutcome) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastToken = token
	g.lastOutcome = outcome
	g.settled = true
}

// outcomeFor returns the finished outcome for a renewal of token.
func (g *renewGate) outcomeFor(token string) (renewOutcome, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.settled || g.lastToken != token {
		return renewFailed, false
	}
	return g.lastOutcome, true
}
