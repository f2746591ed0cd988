package main

import (
	"context"
	"log/slog"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"harold/pkg/chatdb"
	"harold/pkg/execx"
	"harold/pkg/ingress"
	"harold/pkg/listener"
	"harold/pkg/notify"
	"harold/pkg/projector"
	"harold/pkg/routing"
	"harold/pkg/settings"
	"harold/pkg/store"
)

// runDaemon wires the three tasks around one event store and blocks until
// SIGINT/SIGTERM. Shutdown order matters: stop the ingress, cancel the
// tasks, join them, and only then checkpoint — the checkpoint requires no
// active users of the store.
func runDaemon(cfg *settings.Settings) error {
	st, err := store.Open(cfg.Store.ResolvedPath())
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	runner := &execx.ExecRunner{}
	chat := chatdb.Open(cfg.ChatDB.ResolvedPath())
	tmux := routing.NewTmux(runner)
	state := routing.NewState()

	messenger := &notify.IMessenger{Recipient: cfg.Imessage.Recipient, Runner: runner}
	notifier := &notify.Notifier{
		Imessage:   cfg.Imessage,
		TTS:        cfg.TTS,
		SkipActive: cfg.Notify.SkipIfSessionActive,
		Summarizer: &notify.Summarizer{Model: cfg.AI.LocalModel, ModelDir: cfg.AI.LocalModelDir, Runner: runner},
		Messenger:  messenger,
		Tmux:       tmux,
		State:      state,
		Store:      st,
		Chat:       chat,
		Runner:     runner,
	}

	var classifier routing.Classifier
	if cfg.AI.CliPath != "" {
		classifier = &routing.AIClassifier{CliPath: cfg.AI.CliPath, Runner: runner}
	}
	router := routing.NewRouter(&routing.TmuxDirectory{Tmux: tmux}, state, classifier, messenger, st)

	proj := &projector.Projector{Store: st, Notifier: notifier, Router: router}
	lst := &listener.Listener{
		Store:     st,
		Chat:      chat,
		ChatPath:  cfg.ChatDB.ResolvedPath(),
		HandleIDs: cfg.Imessage.HandleIDs,
		StatePath: filepath.Join(cfg.Store.ResolvedPath(), "listener.state"),
	}

	srv, err := ingress.Listen(cfg.Grpc.Addr(), st)
	if err != nil {
		_ = st.Close()
		return &exitError{code: 2, err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		proj.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		lst.Run(ctx)
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve() }()
	slog.Info("harold listening", "address", srv.Addr())

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		srv.GracefulStop()
		<-serveErr
	case err := <-serveErr:
		// The server never stops on its own; this is fatal.
		runErr = err
	}

	stop()
	wg.Wait()

	// All store users have joined; flush the WAL so the next open is clean.
	slog.Info("checkpointing WAL")
	if err := st.Checkpoint(context.Background()); err != nil {
		slog.Warn("WAL checkpoint failed on shutdown", "error", err)
	} else {
		slog.Info("WAL checkpoint complete")
	}

	_ = chat.Close()
	if err := st.Close(); err != nil {
		slog.Warn("store close failed", "error", err)
	}

	if runErr != nil {
		return &exitError{code: 2, err: runErr}
	}
	return nil
}
