package testutil

import (
	"context"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"
)

// FakeHTTPServer stands in for the report API or metrics listener. Without
// ListenErr, ListenAndServe blocks until Shutdown and then returns
// http.ErrServerClosed the way a real server does.
type FakeHTTPServer struct {
	AddrVal     string
	HandlerVal  http.Handler
	ListenErr   error
	ShutdownErr error
	// Hold makes Shutdown wait until it is closed or the context ends.
	Hold chan struct{}

	mu        sync.Mutex
	closed    chan struct{}
	listens   int
	shutdowns int
}

func (f *FakeHTTPServer) closedCh() chan struct{} {
	if f.closed == nil {
		f.closed = make(chan struct{})
	}
	return f.closed
}

func (f *FakeHTTPServer) ListenAndServe() error {
	f.mu.Lock()
	f.listens++
	closed := f.closedCh()
	f.mu.Unlock()

	if f.ListenErr != nil {
		return f.ListenErr
	}
	<-closed
	return http.ErrServerClosed
}

func (f *FakeHTTPServer) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	f.shutdowns++
	closed := f.closedCh()
	select {
	case <-closed:
	default:
		close(closed)
	}
	f.mu.Unlock()

	if f.Hold != nil {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-f.Hold:
		}
	}
	return f.ShutdownErr
}

func (f *FakeHTTPServer) Addr() string {
	if f.AddrVal == "" {
		return ":0"
	}
	return f.AddrVal
}

func (f *FakeHTTPServer) Handler() http.Handler {
	if f.HandlerVal == nil {
		return http.NotFoundHandler()
	}
	return f.HandlerVal
}

// ListenCalls reports how many times ListenAndServe was entered.
func (f *FakeHTTPServer) ListenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listens
}

// ShutdownCalls reports how many times Shutdown was called.
func (f *FakeHTTPServer) ShutdownCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdowns
}

// ListenerHTTPServer serves handler on a loopback listener bound at
// construction, so URL is valid before ListenAndServe runs.
type ListenerHTTPServer struct {
	srv      *http.Server
	listener net.Listener
}

func NewListenerHTTPServer(t testing.TB, handler http.Handler) *ListenerHTTPServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	s := &ListenerHTTPServer{
		srv:      &http.Server{Handler: handler, ReadHeaderTimeout: time.Second},
		listener: l,
	}
	t.Cleanup(func() {
		_ = s.srv.Close()
		_ = l.Close()
	})
	return s
}

func (s *ListenerHTTPServer) ListenAndServe() error {
	return s.srv.Serve(s.listener)
}

func (s *ListenerHTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *ListenerHTTPServer) Addr() string {
	return s.listener.Addr().String()
}

func (s *ListenerHTTPServer) Handler() http.Handler {
	return s.srv.Handler
}

// URL is the base URL of the bound listener.
func (s *ListenerHTTPServer) URL() string {
	return "http://" + s.Addr()
}
