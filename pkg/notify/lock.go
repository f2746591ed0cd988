package notify

import (
	"context"
	"strings"

	"harold/pkg/execx"
)

// IsScreenLocked probes the console lock state by scanning ioreg's plist
// output for the IOConsoleLocked key. Probe failures read as unlocked, which
// degrades to the at-desk path rather than texting a present user.
func IsScreenLocked(ctx context.Context, runner execx.Runner) bool {
	out, err := runner.Run(ctx, execx.Command("ioreg", "-n", "Root", "-d1", "-a"))
	if err != nil {
		return false
	}
	return consoleLocked(out)
}

// consoleLocked scans XML plist output for <key>IOConsoleLocked</key>
// followed by <true/>.
func consoleLocked(plist string) bool {
	rest := plist
	for {
		idx := strings.Index(rest, "<key>IOConsoleLocked</key>")
		if idx < 0 {
			return false
		}
		rest = rest[idx+len("<key>IOConsoleLocked</key>"):]
		value := strings.TrimSpace(rest)
		if strings.HasPrefix(value, "<true/>") {
			return true
		}
		if strings.HasPrefix(value, "<false/>") {
			return false
		}
	}
}
