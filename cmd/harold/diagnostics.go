package main

import (
	"context"
	"fmt"
	"time"

	"harold/pkg/execx"
	"harold/pkg/notify"
	"harold/pkg/routing"
	"harold/pkg/settings"
	"harold/pkg/store"
)

// runDiagnostics probes the production code paths with a synthetic turn:
// the screen-lock query, the semantic resolver, and whichever notification
// path the lock state selects. It is a live probe, not a mock.
func runDiagnostics(ctx context.Context, cfg *settings.Settings, delaySecs int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	runner := &execx.ExecRunner{}
	tmux := routing.NewTmux(runner)

	turn := store.TurnCompleted{
		PaneID:           "%0",
		PaneLabel:        "harold:0.0",
		LastUserPrompt:   "diagnostic test",
		AssistantMessage: "Harold diagnostic test complete.",
		MainContext:      "harold",
	}

	fmt.Println("=== Harold diagnostics ===")
	fmt.Println()

	if delaySecs > 0 {
		fmt.Printf("Waiting %ds — lock your screen now...\n", delaySecs)
		time.Sleep(time.Duration(delaySecs) * time.Second)
	}

	locked := notify.IsScreenLocked(ctx, runner)
	fmt.Printf("screen_locked : %v\n", locked)

	recipient := cfg.Imessage.Recipient
	if recipient == "" {
		recipient = "(not set)"
	}
	fmt.Printf("iMessage      : recipient=%s handle_ids=%v\n", recipient, cfg.Imessage.HandleIDs)
	fmt.Printf("TTS           : command=%s voice=%q\n", cfg.TTS.Command, cfg.TTS.Voice)
	cli := cfg.AI.CliPath
	if cli == "" {
		cli = "(not set)"
	}
	fmt.Printf("AI cli        : %s\n", cli)
	fmt.Printf("store         : %s\n", cfg.Store.ResolvedPath())
	fmt.Printf("grpc          : %s\n", cfg.Grpc.Addr())

	fmt.Println()
	fmt.Println("--- Testing semantic resolver ---")
	dir := &routing.TmuxDirectory{Tmux: tmux}
	panes := dir.Discover(ctx)
	labels := make([]string, 0, len(panes))
	for _, p := range panes {
		labels = append(labels, p.Label())
	}
	fmt.Printf("live panes    : %v\n", labels)

	classifier := &routing.AIClassifier{CliPath: cfg.AI.CliPath, Runner: runner}
	for _, phrase := range []string{"to my agent, hi", "ask harold to check logs", "hi"} {
		if len(panes) < 2 || cfg.AI.CliPath == "" {
			fmt.Printf("  %q → skipped (need 2+ panes and ai.cli_path)\n", phrase)
			continue
		}
		label, cleaned, err := classifier.Classify(ctx, phrase, labels)
		switch {
		case err != nil:
			fmt.Printf("  %q → error: %v\n", phrase, err)
		case label == "":
			fmt.Printf("  %q → none\n", phrase)
		default:
			fmt.Printf("  %q → %s (cleaned: %q)\n", phrase, label, cleaned)
		}
	}

	fmt.Println()
	fmt.Printf("--- Testing notify path (screen_locked=%v) ---\n", locked)
	notifier := &notify.Notifier{
		Imessage:   cfg.Imessage,
		TTS:        cfg.TTS,
		Summarizer: &notify.Summarizer{Model: cfg.AI.LocalModel, ModelDir: cfg.AI.LocalModelDir, Runner: runner},
		Messenger:  &notify.IMessenger{Recipient: cfg.Imessage.Recipient, Runner: runner},
		Tmux:       tmux,
		State:      routing.NewState(),
		Runner:     runner,
	}

	if !locked {
		fmt.Println("Running TTS...")
		notifier.NotifyAtDesk(ctx, "diag", turn)
		fmt.Println("TTS done")
		return nil
	}
	if cfg.Imessage.Recipient == "" {
		fmt.Println("iMessage NOT sent: recipient not configured")
		return nil
	}
	fmt.Println("Sending iMessage...")
	notifier.NotifyAway(ctx, "diag", turn)
	fmt.Println("iMessage sent (check your phone)")

	fmt.Println()
	fmt.Println("Done.")
	return nil
}
