package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"harold/pkg/execx"
)

// sanitizeAppleScript drops characters that break an AppleScript string
// literal passed via osascript -e: newlines, the line-continuation character
// and all other non-printables.
func sanitizeAppleScript(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '¬' || (r < 0x20) || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapeAppleScript prepares text for interpolation into a quoted
// AppleScript literal.
func escapeAppleScript(text string) string {
	s := sanitizeAppleScript(text)
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

// IMessenger sends texts to the configured buddy through the OS messaging
// app's AppleScript bridge. With no recipient configured every send is a
// silent no-op.
type IMessenger struct {
	Recipient string
	Runner    execx.Runner
}

// Send delivers one message. All interpolated strings pass through the
// AppleScript escaper; osascript is invoked directly, never via a shell.
func (m *IMessenger) Send(ctx context.Context, text string) error {
	if m.Recipient == "" {
		slog.Debug("imessage recipient not configured, dropping message")
		return nil
	}
	script := fmt.Sprintf(
		`tell application "Messages" to send "%s" to buddy "%s"`,
		escapeAppleScript(text), escapeAppleScript(m.Recipient))
	if _, err := m.Runner.Run(ctx, execx.Command("osascript", "-e", script)); err != nil {
		return fmt.Errorf("osascript send: %w", err)
	}
	return nil
}
