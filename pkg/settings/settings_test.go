package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadLayering(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default.toml", `
[grpc]
port = 50060

[imessage]
recipient = "+15550000000"
handle_ids = [7]

[log]
level = "info"
`)
	writeConfig(t, dir, "local.toml", `
[log]
level = "debug"
`)
	t.Setenv("HAROLD__GRPC__PORT", "50061")

	cfg, err := LoadFrom(dir, "local")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// Built-in default survives where no layer overrides it.
	if cfg.Grpc.Host != "127.0.0.1" {
		t.Errorf("host = %q", cfg.Grpc.Host)
	}
	// default.toml layer.
	if cfg.Imessage.Recipient != "+15550000000" || len(cfg.Imessage.HandleIDs) != 1 {
		t.Errorf("imessage = %+v", cfg.Imessage)
	}
	// Environment overlay file wins over default.toml.
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	// Env var wins over everything.
	if cfg.Grpc.Port != 50061 {
		t.Errorf("port = %d", cfg.Grpc.Port)
	}
}

func TestLoadRequiresDefaultToml(t *testing.T) {
	if _, err := LoadFrom(t.TempDir(), "local"); err == nil {
		t.Error("missing default.toml accepted")
	}
}

func TestLoadMissingOverlayIsFine(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "default.toml", "[grpc]\nport = 50060\n")
	if _, err := LoadFrom(dir, "nonexistent"); err != nil {
		t.Errorf("missing overlay rejected: %v", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	s := defaults()
	environ := []string{
		"HAROLD__GRPC__HOST=localhost",
		"HAROLD__IMESSAGE__HANDLE_IDS=7, 9",
		"HAROLD__NOTIFY__SKIP_IF_SESSION_ACTIVE=false",
		"HAROLD__TTS__VOICE=Samantha",
		"UNRELATED=x",
	}
	if err := applyEnv(&s, environ); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if s.Grpc.Host != "localhost" {
		t.Errorf("host = %q", s.Grpc.Host)
	}
	if len(s.Imessage.HandleIDs) != 2 || s.Imessage.HandleIDs[1] != 9 {
		t.Errorf("handle ids = %v", s.Imessage.HandleIDs)
	}
	if s.Notify.SkipIfSessionActive {
		t.Error("skip_if_session_active not overridden")
	}
	if s.TTS.Voice != "Samantha" {
		t.Errorf("voice = %q", s.TTS.Voice)
	}
}

func TestApplyEnvRejectsUnknownKey(t *testing.T) {
	s := defaults()
	if err := applyEnv(&s, []string{"HAROLD__GRPC__TYPO=x"}); err == nil {
		t.Error("unknown key accepted")
	}
}

func TestApplyEnvRejectsMalformedName(t *testing.T) {
	s := defaults()
	if err := applyEnv(&s, []string{"HAROLD__ONLYSECTION=x"}); err == nil {
		t.Error("malformed override accepted")
	}
}

func TestValidateRejectsNonLoopbackBind(t *testing.T) {
	s := defaults()
	s.Grpc.Host = "0.0.0.0"
	errs := s.Validate()
	if len(errs) == 0 {
		t.Fatal("non-loopback bind accepted")
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	s := defaults()
	if errs := s.Validate(); len(errs) != 0 {
		t.Fatalf("defaults invalid: %v", errs)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	s := defaults()
	s.Grpc.Host = "example.com"
	s.Grpc.Port = -1
	s.TTS.Command = ""
	s.Log.Level = "verbose"
	errs := s.Validate()
	if len(errs) != 4 {
		t.Fatalf("got %d errors, want 4: %v", len(errs), errs)
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	got := expandTilde("~/x/y")
	if got != filepath.Join(home, "x/y") {
		t.Errorf("expandTilde = %q", got)
	}
	if expandTilde("/abs/path") != "/abs/path" {
		t.Error("absolute path modified")
	}
}
