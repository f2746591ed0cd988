package routing

import (
	"context"
	"log/slog"
	"strings"

	"harold/pkg/execx"
)

// paneListFormat extracts the pane id, a human label, and the foreground
// command from every pane on the server.
const paneListFormat = "#{pane_id}|#{session_name}:#{window_index}.#{pane_index}|#{pane_current_command}"

// Tmux wraps the terminal multiplexer CLI. All calls go through a Runner,
// never a shell.
type Tmux struct {
	runner execx.Runner
}

// NewTmux returns a Tmux client using the given runner.
func NewTmux(runner execx.Runner) *Tmux {
	return &Tmux{runner: runner}
}

// IsAgentProcess reports whether a pane's foreground command looks like an
// agent runtime: a dotted numeric string with at least three segments (the
// node version Claude-style agents run as, e.g. "22.11.0").
func IsAgentProcess(cmd string) bool {
	parts := strings.Split(cmd, ".")
	if len(parts) < 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, b := range []byte(p) {
			if b < '0' || b > '9' {
				return false
			}
		}
	}
	return true
}

// normalizeLabel keeps only printable ASCII characters (space included),
// dropping control and non-ASCII characters, and collapses whitespace runs.
func normalizeLabel(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == ' ' || (r > 0x20 && r < 0x7f) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// LivePanes scans every pane on the server and returns those whose
// foreground command passes the agent heuristic. Errors degrade to an empty
// directory: with no multiplexer there are no agents.
func (t *Tmux) LivePanes(ctx context.Context) []*TmuxPane {
	out, err := t.runner.Run(ctx, execx.Command("tmux", "list-panes", "-a", "-F", paneListFormat))
	if err != nil {
		slog.Warn("tmux list-panes failed", "error", err)
		return nil
	}

	var panes []*TmuxPane
	for _, line := range strings.Split(out, "\n") {
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		if !IsAgentProcess(strings.TrimSpace(parts[2])) {
			continue
		}
		panes = append(panes, &TmuxPane{
			ID:        parts[0],
			PaneLabel: normalizeLabel(parts[1]),
			tmux:      t,
		})
	}
	return panes
}

// PaneCommand returns the current foreground command of one pane.
func (t *Tmux) PaneCommand(ctx context.Context, paneID string) (string, error) {
	return t.runner.Run(ctx, execx.Command(
		"tmux", "display-message", "-t", paneID, "-p", "#{pane_current_command}"))
}

// ActiveSession returns the session name of the most recently used client.
func (t *Tmux) ActiveSession(ctx context.Context) (string, error) {
	return t.runner.Run(ctx, execx.Command("tmux", "display-message", "-p", "#{session_name}"))
}

// PaneSession returns the session name owning the given pane.
func (t *Tmux) PaneSession(ctx context.Context, paneID string) (string, error) {
	return t.runner.Run(ctx, execx.Command(
		"tmux", "display-message", "-t", paneID, "-p", "#{session_name}"))
}

// relay types text into a pane and presses Enter. The -l flag sends the
// text literally so sequences like "C-c" are not interpreted as key names.
func (t *Tmux) relay(ctx context.Context, paneID, text string) error {
	if _, err := t.runner.Run(ctx, execx.Command("tmux", "send-keys", "-t", paneID, "-l", text)); err != nil {
		return err
	}
	_, err := t.runner.Run(ctx, execx.Command("tmux", "send-keys", "-t", paneID, "Enter"))
	return err
}
