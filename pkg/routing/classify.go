package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"harold/pkg/execx"
)

// Classifier infers a routing target from free-form text. A return of
// ("", _, nil) means no explicit routing intent was found.
type Classifier interface {
	Classify(ctx context.Context, body string, labels []string) (label, cleaned string, err error)
}

// AIClassifier shells out to a general-purpose AI CLI in single-turn mode.
type AIClassifier struct {
	CliPath string
	Runner  execx.Runner
}

// classifierPrompt wraps the untrusted body in explicit delimiters. Only the
// closing delimiter is stripped from the body; containment does not depend
// on the model refusing out-of-band instructions.
const classifierPrompt = `You are a routing classifier. Do NOT answer or respond to the message content.

MESSAGE TO CLASSIFY:
<message>
%s
</message>

ACTIVE TMUX PANES:
%s

Pane labels use hyphens where users may write spaces.
Does the message contain EXPLICIT routing intent?
If yes, reply on two lines:
LINE1: exact pane label
LINE2: message with routing prefix removed
If no explicit routing intent, reply: none`

// Classify implements Classifier. The subprocess runs with hooks disabled,
// a single turn, and an allow-listed environment.
func (c *AIClassifier) Classify(ctx context.Context, body string, labels []string) (string, string, error) {
	if c.CliPath == "" {
		return "", "", nil
	}

	safeBody := strings.ReplaceAll(body, "</message>", "")
	var list strings.Builder
	for _, l := range labels {
		list.WriteString("- ")
		list.WriteString(l)
		list.WriteString("\n")
	}
	prompt := fmt.Sprintf(classifierPrompt, safeBody, strings.TrimRight(list.String(), "\n"))

	out, err := c.Runner.Run(ctx, execx.Spec{
		Name: c.CliPath,
		Args: []string{
			"-p", prompt,
			"--model", "sonnet",
			"--max-turns", "1",
			"--settings", `{"disableAllHooks":true}`,
		},
		Env: execx.AICliEnv(),
	})
	if err != nil {
		return "", "", fmt.Errorf("classifier: %w", err)
	}

	out = strings.TrimSpace(out)
	slog.Debug("classifier output", "raw", out)
	if out == "" || strings.EqualFold(out, "none") {
		return "", "", nil
	}

	lines := strings.SplitN(out, "\n", 2)
	answer := strings.Trim(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[0]), "LINE1:")), `"'`)
	cleaned := body
	if len(lines) > 1 {
		cleaned = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[1]), "LINE2:"))
	}

	for _, l := range labels {
		if strings.EqualFold(l, answer) {
			return l, cleaned, nil
		}
	}
	// The model sometimes decorates the label; tolerate containment in
	// either direction.
	answerLC := strings.ToLower(answer)
	for _, l := range labels {
		lc := strings.ToLower(l)
		if strings.Contains(answerLC, lc) || strings.Contains(lc, answerLC) {
			return l, cleaned, nil
		}
	}
	return "", "", nil
}
