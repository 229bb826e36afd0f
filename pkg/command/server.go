package command

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

// readLimit bounds one incoming message; pasted A2L content can be large.
const readLimit = 64 << 20

// Server exposes a Dispatcher over websocket.
type Server struct {
	d        *Dispatcher
	gatherer prometheus.Gatherer
	logger   *log.Logger
}

// NewServer creates a server. gatherer backs /metrics and may be nil.
func NewServer(d *Dispatcher, gatherer prometheus.Gatherer, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{d: d, gatherer: gatherer, logger: logger}
}

// Routes returns the HTTP handler: /ws, /healthz and /metrics.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/ws", s.ServeHTTP)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// ServeHTTP upgrades to websocket and answers messages until the peer goes
// away. Requests are handled concurrently; replies carry the request ID.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Printf("ws: accept: %v", err)
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	connID := uuid.NewString()
	ctx := r.Context()
	s.logger.Printf("ws: %s connected from %s", connID, r.RemoteAddr)

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				s.logger.Printf("ws: %s closed: %v", connID, status)
			} else if ctx.Err() == nil {
				s.logger.Printf("ws: %s read: %v", connID, err)
			}
			return
		}
		if msg.Type == typePing {
			s.send(ctx, conn, ServerMessage{Type: typePong, RequestID: msg.ID})
			continue
		}
		go s.handle(ctx, conn, msg)
	}
}

func (s *Server) handle(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	req, err := decodeRequest(msg.Type, msg.Data)
	if err != nil {
		s.send(ctx, conn, ServerMessage{Type: typeError, RequestID: msg.ID, Error: calib.AsError(err)})
		return
	}
	result, err := s.d.Handle(req)
	if err != nil {
		s.send(ctx, conn, ServerMessage{Type: typeError, RequestID: msg.ID, Error: calib.AsError(err)})
		return
	}
	s.send(ctx, conn, ServerMessage{Type: typeResult, RequestID: msg.ID, Data: result})
}

func (s *Server) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		s.logger.Printf("ws: write: %v", err)
	}
}

// ListenAndServe serves Routes on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Printf("ws: listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
