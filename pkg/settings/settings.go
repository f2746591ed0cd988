// Package settings loads Harold's layered configuration: built-in defaults,
// then config/default.toml, then config/{HAROLD_ENV}.toml, then HAROLD__
// environment variables (HAROLD__SECTION__KEY, last wins).
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// GrpcSettings configures the loopback gRPC ingress.
type GrpcSettings struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port bind address.
func (g GrpcSettings) Addr() string {
	return fmt.Sprintf("%s:%d", g.Host, g.Port)
}

// ImessageSettings identifies the outbound buddy and the user's own handles.
type ImessageSettings struct {
	Recipient string  `toml:"recipient"`
	HandleIDs []int64 `toml:"handle_ids"`
}

// ChatDBSettings locates the OS message database.
type ChatDBSettings struct {
	Path string `toml:"path"`
}

// ResolvedPath expands a leading tilde in the chat.db path.
func (c ChatDBSettings) ResolvedPath() string {
	return expandTilde(c.Path)
}

// AISettings configures the classifier CLI and the local summariser model.
type AISettings struct {
	CliPath       string `toml:"cli_path"`
	LocalModel    string `toml:"local_model"`
	LocalModelDir string `toml:"local_model_dir"`
}

// TTSSettings composes the speech command: command [args...] [-v voice] <message>.
type TTSSettings struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Voice   string   `toml:"voice"`
}

// NotifySettings tunes the notification pipeline.
type NotifySettings struct {
	SkipIfSessionActive bool `toml:"skip_if_session_active"`
}

// LogSettings filters structured logs.
type LogSettings struct {
	Level string `toml:"level"`
}

// StoreSettings locates the event store directory.
type StoreSettings struct {
	Path string `toml:"path"`
}

// ResolvedPath expands a leading tilde in the store path.
func (s StoreSettings) ResolvedPath() string {
	return expandTilde(s.Path)
}

// Settings is the resolved Harold configuration.
type Settings struct {
	Grpc     GrpcSettings     `toml:"grpc"`
	Imessage ImessageSettings `toml:"imessage"`
	ChatDB   ChatDBSettings   `toml:"chat_db"`
	AI       AISettings       `toml:"ai"`
	TTS      TTSSettings      `toml:"tts"`
	Notify   NotifySettings   `toml:"notify"`
	Log      LogSettings      `toml:"log"`
	Store    StoreSettings    `toml:"store"`
}

// defaults returns the built-in configuration layer.
func defaults() Settings {
	return Settings{
		Grpc:   GrpcSettings{Host: "127.0.0.1", Port: 50060},
		ChatDB: ChatDBSettings{Path: "~/Library/Messages/chat.db"},
		TTS:    TTSSettings{Command: "say"},
		Notify: NotifySettings{SkipIfSessionActive: true},
		Log:    LogSettings{Level: "info"},
		Store:  StoreSettings{Path: "~/.harold/events"},
	}
}

// ConfigDir resolves the configuration directory: HAROLD_CONFIG_DIR if set,
// otherwise config/ next to the running binary, otherwise ./config.
func ConfigDir() string {
	if dir := os.Getenv("HAROLD_CONFIG_DIR"); dir != "" {
		return dir
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "config")
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return "config"
}

// Load builds the layered configuration. The default.toml layer is required;
// the environment overlay ({HAROLD_ENV}.toml, default "local") is optional.
func Load() (*Settings, error) {
	return LoadFrom(ConfigDir(), envName())
}

func envName() string {
	if env := os.Getenv("HAROLD_ENV"); env != "" {
		return env
	}
	return "local"
}

// LoadFrom loads the layers from an explicit directory and environment name.
func LoadFrom(dir, env string) (*Settings, error) {
	s := defaults()

	if err := mergeFile(&s, filepath.Join(dir, "default.toml"), true); err != nil {
		return nil, err
	}
	if err := mergeFile(&s, filepath.Join(dir, env+".toml"), false); err != nil {
		return nil, err
	}
	if err := applyEnv(&s, os.Environ()); err != nil {
		return nil, err
	}
	return &s, nil
}

func mergeFile(s *Settings, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays HAROLD__SECTION__KEY variables onto s. Unknown keys are
// an error so that typos surface at startup rather than silently losing an
// override.
func applyEnv(s *Settings, environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, "HAROLD__") {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(name, "HAROLD__"), "__")
		if len(parts) != 2 {
			return fmt.Errorf("malformed override %s: want HAROLD__SECTION__KEY", name)
		}
		section := strings.ToLower(parts[0])
		key := strings.ToLower(parts[1])
		if err := setKey(s, section, key, value); err != nil {
			return fmt.Errorf("override %s: %w", name, err)
		}
	}
	return nil
}

func setKey(s *Settings, section, key, value string) error {
	switch section + "." + key {
	case "grpc.host":
		s.Grpc.Host = value
	case "grpc.port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("parse port: %w", err)
		}
		s.Grpc.Port = port
	case "imessage.recipient":
		s.Imessage.Recipient = value
	case "imessage.handle_ids":
		ids, err := parseIDList(value)
		if err != nil {
			return err
		}
		s.Imessage.HandleIDs = ids
	case "chat_db.path":
		s.ChatDB.Path = value
	case "ai.cli_path":
		s.AI.CliPath = value
	case "ai.local_model":
		s.AI.LocalModel = value
	case "ai.local_model_dir":
		s.AI.LocalModelDir = value
	case "tts.command":
		s.TTS.Command = value
	case "tts.args":
		s.TTS.Args = splitNonEmpty(value, " ")
	case "tts.voice":
		s.TTS.Voice = value
	case "notify.skip_if_session_active":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("parse bool: %w", err)
		}
		s.Notify.SkipIfSessionActive = b
	case "log.level":
		s.Log.Level = value
	case "store.path":
		s.Store.Path = value
	default:
		return fmt.Errorf("unknown config key %s.%s", section, key)
	}
	return nil
}

func parseIDList(value string) ([]int64, error) {
	var ids []int64
	for _, part := range splitNonEmpty(value, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse handle id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitNonEmpty(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loopbackHosts are the only addresses the unauthenticated ingress may bind.
var loopbackHosts = map[string]bool{
	"127.0.0.1": true,
	"::1":       true,
	"localhost": true,
}

// Validate checks the configuration before any task starts. It returns every
// problem found, not just the first.
func (s *Settings) Validate() []error {
	var errs []error
	if !loopbackHosts[s.Grpc.Host] {
		errs = append(errs, fmt.Errorf("grpc.host %q is not a loopback address; Harold's ingress is unauthenticated and must stay local", s.Grpc.Host))
	}
	if s.Grpc.Port <= 0 || s.Grpc.Port > 65535 {
		errs = append(errs, fmt.Errorf("grpc.port %d out of range", s.Grpc.Port))
	}
	if s.Store.Path == "" {
		errs = append(errs, errors.New("store.path must be set"))
	}
	if s.ChatDB.Path == "" {
		errs = append(errs, errors.New("chat_db.path must be set"))
	}
	if s.TTS.Command == "" {
		errs = append(errs, errors.New("tts.command must be set"))
	}
	for _, id := range s.Imessage.HandleIDs {
		if id < 0 {
			errs = append(errs, fmt.Errorf("imessage.handle_ids contains negative id %d", id))
		}
	}
	if s.Log.Level != "" {
		switch strings.ToLower(s.Log.Level) {
		case "debug", "info", "warn", "error":
		default:
			errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s.Log.Level))
		}
	}
	return errs
}

func expandTilde(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
