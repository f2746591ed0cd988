// Package ingress exposes Harold's single gRPC entry point: the unary
// TurnComplete RPC that agent-side stop hooks call when a turn finishes.
// The server is unauthenticated and must only ever bind to loopback.
package ingress

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"regexp"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"harold/pkg/haroldpb"
	"harold/pkg/store"
)

// Field size caps from the event contract: agent text up to 64 KiB, other
// strings up to 4 KiB.
const (
	maxTextLen  = 64 * 1024
	maxShortLen = 4 * 1024
)

// paneIDPattern is the multiplexer's pane-id syntax.
var paneIDPattern = regexp.MustCompile(`^%[0-9]+$`)

// Server owns the listening socket and the gRPC server.
type Server struct {
	grpc *grpc.Server
	lis  net.Listener
}

type service struct {
	haroldpb.UnimplementedHaroldServer
	store *store.Store
}

// Listen binds the server to addr. A bind failure is fatal at startup.
func Listen(addr string, st *store.Store) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", addr, err)
	}
	srv := grpc.NewServer()
	haroldpb.RegisterHaroldServer(srv, &service{store: st})
	// Reflection lets grpcurl-style callers discover the service without
	// the proto file.
	reflection.Register(srv)
	return &Server{grpc: srv, lis: lis}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.lis.Addr().String()
}

// Serve blocks serving RPCs until GracefulStop is called.
func (s *Server) Serve() error {
	if err := s.grpc.Serve(s.lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// GracefulStop stops accepting new connections and waits for in-flight RPCs.
func (s *Server) GracefulStop() {
	s.grpc.GracefulStop()
}

// TurnComplete validates the report and appends a TurnCompleted event.
func (s *service) TurnComplete(ctx context.Context, req *haroldpb.TurnCompleteRequest) (*haroldpb.TurnCompleteResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	traceID := uuid.NewString()
	log := slog.With("trace_id", traceID)
	// assistant_message omitted from the log; it can be large.
	log.Info("turn complete received",
		"pane_id", req.GetPaneId(),
		"pane_label", req.GetPaneLabel(),
		"main_context", req.GetMainContext())

	_, err := s.store.Append(ctx, store.StreamID, store.TypeTurnCompleted, traceID, store.TurnCompleted{
		PaneID:           req.GetPaneId(),
		PaneLabel:        req.GetPaneLabel(),
		LastUserPrompt:   req.GetLastUserPrompt(),
		AssistantMessage: req.GetAssistantMessage(),
		MainContext:      req.GetMainContext(),
	})
	if err != nil {
		log.Error("append TurnCompleted failed", "error", err)
		return nil, status.Error(codes.Internal, "event store write failed")
	}

	return &haroldpb.TurnCompleteResponse{Accepted: true}, nil
}

func validate(req *haroldpb.TurnCompleteRequest) error {
	if !paneIDPattern.MatchString(req.GetPaneId()) {
		return status.Errorf(codes.InvalidArgument, "pane_id %q does not match %%N syntax", req.GetPaneId())
	}
	for _, f := range []struct {
		name string
		val  string
		max  int
	}{
		{"pane_id", req.GetPaneId(), maxShortLen},
		{"pane_label", req.GetPaneLabel(), maxShortLen},
		{"main_context", req.GetMainContext(), maxShortLen},
		{"last_user_prompt", req.GetLastUserPrompt(), maxTextLen},
		{"assistant_message", req.GetAssistantMessage(), maxTextLen},
	} {
		if len(f.val) > f.max {
			return status.Errorf(codes.InvalidArgument, "%s exceeds %d bytes", f.name, f.max)
		}
	}
	return nil
}
