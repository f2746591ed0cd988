package routing

import "strings"

// StripControl removes terminal control data from a reply body before it is
// typed into a pane: the ESC byte and any CSI/OSC/DCS/SOS/PM/APC sequence it
// introduces, plus every control byte other than '\n' and '\t'. send-keys -l
// stops key-name interpretation but raw bytes would still reach the pane.
func StripControl(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == 0x1b {
			if i+1 >= len(runes) {
				break
			}
			switch runes[i+1] {
			case '[':
				// CSI: parameter and intermediate bytes, then one final
				// byte in 0x40..0x7e.
				i++
				for i+1 < len(runes) {
					i++
					if runes[i] >= 0x40 && runes[i] <= 0x7e {
						break
					}
				}
			case ']', 'P', 'X', '^', '_':
				// OSC/DCS/SOS/PM/APC: consumed until BEL or ST (ESC \).
				i++
				for i+1 < len(runes) {
					i++
					if runes[i] == 0x07 {
						break
					}
					if runes[i] == 0x1b && i+1 < len(runes) && runes[i+1] == '\\' {
						i++
						break
					}
				}
			default:
				// Two-character escape: drop ESC and its final byte.
				i++
			}
			continue
		}
		if r < 0x20 && r != '\n' && r != '\t' || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
