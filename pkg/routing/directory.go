package routing

import (
	"context"
	"strings"
)

// AgentAddress identifies a relay target. The routing pipeline only ever
// uses this capability surface; nothing downstream of directory construction
// branches on the concrete variant.
type AgentAddress interface {
	// Label is the human-facing name replies are matched against.
	Label() string
	// Relay delivers text to the agent via its native transport.
	Relay(ctx context.Context, text string) error
	// IsAlive re-verifies the agent at this instant.
	IsAlive(ctx context.Context) bool
	// SameTarget reports whether other addresses the same agent.
	SameTarget(other AgentAddress) bool
}

// TmuxPane addresses an agent running in a terminal multiplexer pane.
type TmuxPane struct {
	ID        string // multiplexer pane id, e.g. "%12"
	PaneLabel string // "session:window.pane"

	tmux *Tmux
}

// NewTmuxPane builds a pane address bound to a Tmux client.
func NewTmuxPane(t *Tmux, id, label string) *TmuxPane {
	return &TmuxPane{ID: id, PaneLabel: label, tmux: t}
}

// Label implements AgentAddress.
func (p *TmuxPane) Label() string { return p.PaneLabel }

// Relay implements AgentAddress by typing into the pane.
func (p *TmuxPane) Relay(ctx context.Context, text string) error {
	return p.tmux.relay(ctx, p.ID, text)
}

// IsAlive implements AgentAddress by re-checking the pane's foreground
// command against the agent heuristic.
func (p *TmuxPane) IsAlive(ctx context.Context) bool {
	cmd, err := p.tmux.PaneCommand(ctx, p.ID)
	if err != nil {
		return false
	}
	return IsAgentProcess(strings.TrimSpace(cmd))
}

// SameTarget implements AgentAddress: two pane addresses are the same agent
// when their pane ids match.
func (p *TmuxPane) SameTarget(other AgentAddress) bool {
	o, ok := other.(*TmuxPane)
	return ok && o.ID == p.ID
}

// Directory discovers live agents.
type Directory interface {
	Discover(ctx context.Context) []AgentAddress
}

// TmuxDirectory discovers agents by scanning multiplexer panes.
type TmuxDirectory struct {
	Tmux *Tmux
}

// Discover implements Directory.
func (d *TmuxDirectory) Discover(ctx context.Context) []AgentAddress {
	panes := d.Tmux.LivePanes(ctx)
	out := make([]AgentAddress, 0, len(panes))
	for _, p := range panes {
		out = append(out, p)
	}
	return out
}
