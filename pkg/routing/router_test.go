package routing

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"harold/pkg/execx"
	"harold/pkg/store"
)

type fakeMessenger struct {
	sent []string
}

func (m *fakeMessenger) Send(_ context.Context, text string) error {
	m.sent = append(m.sent, text)
	return nil
}

type fakeClassifier struct {
	label   string
	cleaned string
}

func (c *fakeClassifier) Classify(_ context.Context, body string, _ []string) (string, string, error) {
	if c.label == "" {
		return "", "", nil
	}
	cleaned := c.cleaned
	if cleaned == "" {
		cleaned = body
	}
	return c.label, cleaned, nil
}

// paneWorld scripts a tmux server with the given live panes. Keys are pane
// ids, values the pane's current command.
func paneWorld(panes []string, commands map[string]string) *fakeRunner {
	return &fakeRunner{fn: func(spec execx.Spec) (string, error) {
		if len(spec.Args) == 0 {
			return "", nil
		}
		switch spec.Args[0] {
		case "list-panes":
			return strings.Join(panes, "\n"), nil
		case "display-message":
			// display-message -t <pane> -p #{pane_current_command}
			if cmd, ok := commands[spec.Args[2]]; ok {
				return cmd, nil
			}
			return "zsh", nil
		}
		return "", nil
	}}
}

func newTestRouter(runner *fakeRunner, cls Classifier, msg Messenger, st *store.Store) (*Router, *State) {
	tmux := NewTmux(runner)
	state := NewState()
	return NewRouter(&TmuxDirectory{Tmux: tmux}, state, cls, msg, st), state
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantTag string
		wantHas bool
		wantBody string
	}{
		{"with tag", "[main] hello world", "main", true, "hello world"},
		{"without tag", "just a message", "", false, "just a message"},
		{"unclosed bracket", "[unclosed message", "", false, "[unclosed message"},
		{"leading whitespace", "  [x] body", "x", true, "body"},
		{"empty body", "[x]", "x", true, ""},
		{"multiline body", "[x] first\nsecond", "x", true, "first\nsecond"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, has, body := ParseTag(tt.text)
			if tag != tt.wantTag || has != tt.wantHas || body != tt.wantBody {
				t.Errorf("ParseTag(%q) = (%q, %v, %q), want (%q, %v, %q)",
					tt.text, tag, has, body, tt.wantTag, tt.wantHas, tt.wantBody)
			}
		})
	}
}

func TestRouteReplySubstringTagMatch(t *testing.T) {
	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0", "%2|alir-app main:0.1|22.11.0"},
		map[string]string{"%1": "22.11.0", "%2": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, nil)

	router.RouteReply(context.Background(), "t1", "[main] try again")

	sends := runner.callsMatching("tmux", "send-keys")
	if len(sends) != 2 {
		t.Fatalf("got %d send-keys calls, want 2", len(sends))
	}
	if sends[0].Args[2] != "%2" || sends[0].Args[4] != "📱 try again" {
		t.Errorf("relay args = %v", sends[0].Args)
	}
	if len(msg.sent) != 1 || msg.sent[0] != "✓ Delivered to [alir-app main:0.1]" {
		t.Errorf("confirmation = %v", msg.sent)
	}
	if state.LastRouted() == nil || state.LastRouted().Label() != "alir-app main:0.1" {
		t.Errorf("last routed not recorded")
	}
}

func TestRouteReplyExactTagBeatsSubstring(t *testing.T) {
	// A later exact match beats an earlier substring match.
	runner := paneWorld(
		[]string{"%1|other main:0.1|22.11.0", "%2|main|22.11.0"},
		map[string]string{"%1": "22.11.0", "%2": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, _ := newTestRouter(runner, nil, msg, nil)

	router.RouteReply(context.Background(), "t1", "[MAIN] hello")

	sends := runner.callsMatching("tmux", "send-keys")
	if len(sends) == 0 || sends[0].Args[2] != "%2" {
		t.Fatalf("exact case-insensitive match should pick %%2; sends = %v", sends)
	}
}

func TestRouteReplyTagMissDoesNotFallThrough(t *testing.T) {
	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0"},
		map[string]string{"%1": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, nil)
	state.SetLastRouted(NewTmuxPane(NewTmux(runner), "%1", "harold:0.3"))

	router.RouteReply(context.Background(), "t1", "[nonexistent] hello")

	if sends := runner.callsMatching("tmux", "send-keys"); len(sends) != 0 {
		t.Fatalf("tag miss must not relay; got %v", sends)
	}
	if len(msg.sent) != 1 || !strings.Contains(msg.sent[0], "No pane matching 'nonexistent'") {
		t.Errorf("error message = %v", msg.sent)
	}
	if !strings.Contains(msg.sent[0], "harold:0.3") {
		t.Errorf("error message should list available labels: %v", msg.sent)
	}
}

func TestRouteReplyControlBytesStripped(t *testing.T) {
	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0"},
		map[string]string{"%1": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, nil)
	state.SetLastRouted(NewTmuxPane(NewTmux(runner), "%1", "harold:0.3"))

	router.RouteReply(context.Background(), "t1", "hi\x1b[31mRED\x1b[0m")

	sends := runner.callsMatching("tmux", "send-keys")
	if len(sends) != 2 {
		t.Fatalf("got %d send-keys calls, want 2", len(sends))
	}
	if sends[0].Args[4] != "📱 hiRED" {
		t.Errorf("relay payload = %q, want %q", sends[0].Args[4], "📱 hiRED")
	}
}

func TestRouteReplyNoAgents(t *testing.T) {
	runner := paneWorld(nil, nil)
	msg := &fakeMessenger{}
	router, _ := newTestRouter(runner, nil, msg, nil)

	router.RouteReply(context.Background(), "t1", "hello")

	if len(msg.sent) != 1 || msg.sent[0] != "No active agent sessions found." {
		t.Errorf("message = %v", msg.sent)
	}
}

func TestRouteReplyDeadPaneIsNotRelayedTo(t *testing.T) {
	// The pane passes directory discovery but its process dies before the
	// liveness recheck.
	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0"},
		map[string]string{"%1": "zsh"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, nil)
	state.SetLastRouted(NewTmuxPane(NewTmux(runner), "%1", "harold:0.3"))

	router.RouteReply(context.Background(), "t1", "hello")

	if sends := runner.callsMatching("tmux", "send-keys"); len(sends) != 0 {
		t.Fatalf("stale pane must not receive send-keys; got %v", sends)
	}
	if len(msg.sent) != 1 || !strings.Contains(msg.sent[0], "no longer active") {
		t.Errorf("message = %v", msg.sent)
	}
}

func TestResolveSemanticMatch(t *testing.T) {
	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0", "%2|alir-app main:0.1|22.11.0"},
		map[string]string{"%1": "22.11.0", "%2": "22.11.0"},
	)
	cls := &fakeClassifier{label: "harold:0.3", cleaned: "check logs"}
	msg := &fakeMessenger{}
	router, _ := newTestRouter(runner, cls, msg, nil)

	router.RouteReply(context.Background(), "t1", "ask harold to check logs")

	sends := runner.callsMatching("tmux", "send-keys")
	if len(sends) == 0 || sends[0].Args[2] != "%1" || sends[0].Args[4] != "📱 check logs" {
		t.Fatalf("semantic relay = %v", sends)
	}
}

func TestResolveFallbackCascade(t *testing.T) {
	live := []string{"%1|harold:0.3|22.11.0", "%2|my-agent:0.0|22.11.0"}
	commands := map[string]string{"%1": "22.11.0", "%2": "22.11.0"}

	tests := []struct {
		name       string
		lastRouted string // pane id or ""
		lastAway   string
		wantPane   string
	}{
		{"last routed wins", "%1", "%2", "%1"},
		{"dead last routed falls to away source", "%9", "%1", "%1"},
		{"nothing recent falls to my-agent", "", "", "%2"},
		{"dead away source falls to my-agent", "", "%9", "%2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := paneWorld(live, commands)
			msg := &fakeMessenger{}
			// Classifier deterministically returns none.
			router, state := newTestRouter(runner, &fakeClassifier{}, msg, nil)
			tmux := NewTmux(runner)
			if tt.lastRouted != "" {
				state.SetLastRouted(NewTmuxPane(tmux, tt.lastRouted, "gone:0.0"))
			}
			if tt.lastAway != "" {
				state.SetLastAwaySource(NewTmuxPane(tmux, tt.lastAway, "gone:0.0"))
			}

			router.RouteReply(context.Background(), "t1", "please re-run")

			sends := runner.callsMatching("tmux", "send-keys")
			if len(sends) == 0 {
				t.Fatalf("expected relay, got error message %v", msg.sent)
			}
			if sends[0].Args[2] != tt.wantPane {
				t.Errorf("relayed to %s, want %s", sends[0].Args[2], tt.wantPane)
			}
		})
	}
}

func TestResolveAwaySourceWhenLastRoutedNotLive(t *testing.T) {
	// One live agent, a stale last_routed_agent, and a live away source:
	// resolution is the away source.
	runner := paneWorld(
		[]string{"%3|alir-app:0.1|22.11.0"},
		map[string]string{"%3": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, nil)
	tmux := NewTmux(runner)
	state.SetLastRouted(NewTmuxPane(tmux, "%9", "dead:0.0"))
	state.SetLastAwaySource(NewTmuxPane(tmux, "%3", "alir-app:0.1"))

	router.RouteReply(context.Background(), "t1", "hi")

	sends := runner.callsMatching("tmux", "send-keys")
	if len(sends) == 0 || sends[0].Args[2] != "%3" {
		t.Fatalf("want relay to %%3, got %v (messages %v)", sends, msg.sent)
	}
}

func TestRouteReplyRecordsOutcomeEvents(t *testing.T) {
	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	runner := paneWorld(
		[]string{"%1|harold:0.3|22.11.0"},
		map[string]string{"%1": "22.11.0"},
	)
	msg := &fakeMessenger{}
	router, state := newTestRouter(runner, nil, msg, st)
	state.SetLastRouted(NewTmuxPane(NewTmux(runner), "%1", "harold:0.3"))

	router.RouteReply(context.Background(), "trace-9", "hello")

	events, err := st.Read(context.Background(), store.StreamID, 0, 0)
	if err != nil {
		t.Fatalf("read events: %v", err)
	}
	if len(events) != 1 || events[0].Type != store.TypeReplyRouted {
		t.Fatalf("events = %+v", events)
	}
	var routed store.ReplyRouted
	if err := json.Unmarshal(events[0].Payload, &routed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if routed.Outcome != store.OutcomeDelivered || routed.ResolvedAgent != "harold:0.3" {
		t.Errorf("routed = %+v", routed)
	}
	if events[0].TraceID != "trace-9" {
		t.Errorf("trace id = %q", events[0].TraceID)
	}
}
