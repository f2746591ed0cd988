package notify

import (
	"context"
	"strings"

	"harold/pkg/execx"
)

// fallbackSummary is spoken when the local model is unavailable or fails.
const fallbackSummary = "Work complete"

const summarySystemPrompt = "You are a notification assistant. Given a user's last request, " +
	"write ONLY a brief 3-8 word summary of what was completed. " +
	"Do not include any thinking, explanations, or extra text. " +
	"Output format: Just the summary message."

// Summarizer produces short completion summaries via a local small-model
// subprocess.
type Summarizer struct {
	Model    string
	ModelDir string
	Runner   execx.Runner
}

// ShortSummary returns a 3-8 word summary of what the turn completed,
// falling back to a fixed phrase on any failure.
func (s *Summarizer) ShortSummary(ctx context.Context, lastUserPrompt string) string {
	if s == nil || s.Model == "" || s.ModelDir == "" {
		return fallbackSummary
	}
	prompt := "User's last request: " + truncateRunes(lastUserPrompt, 500) +
		"\n\nWrite a 3-8 word summary of what was done:"

	out, err := s.Runner.Run(ctx, execx.Spec{
		Name: "uv",
		Args: []string{
			"run", "mlx_lm.generate",
			"--model", s.Model,
			"--system-prompt", summarySystemPrompt,
			"--prompt", prompt,
			"--max-tokens", "20",
		},
		Dir: s.ModelDir,
	})
	if err != nil {
		return fallbackSummary
	}
	if text := parseModelOutput(out); text != "" {
		return text
	}
	return fallbackSummary
}

// parseModelOutput extracts the generation from mlx_lm output: the block
// between ========== markers when present, otherwise the whole stdout.
func parseModelOutput(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return ""
	}
	if strings.Contains(out, "==========") {
		var (
			inContent bool
			lines     []string
		)
		for _, line := range strings.Split(out, "\n") {
			if strings.TrimSpace(line) == "==========" {
				if inContent {
					break
				}
				inContent = true
				continue
			}
			if inContent {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
		text := strings.Trim(strings.TrimSpace(strings.Join(lines, " ")), `"'`)
		return stripThink(text)
	}
	text := stripThink(strings.Trim(out, `"'`))
	return truncateRunes(text, 200)
}

// stripThink removes <think>...</think> blocks emitted by reasoning models.
func stripThink(text string) string {
	var b strings.Builder
	rest := text
	for {
		start := strings.Index(rest, "<think>")
		if start < 0 {
			break
		}
		b.WriteString(rest[:start])
		end := strings.Index(rest, "</think>")
		if end < 0 {
			rest = ""
			break
		}
		rest = strings.TrimLeft(rest[end+len("</think>"):], " \t\n")
	}
	b.WriteString(rest)
	return strings.TrimSpace(b.String())
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
