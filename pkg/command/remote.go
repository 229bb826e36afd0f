package command

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/marjoballabani/lazya2l/pkg/calib"
)

const writeTimeout = 30 * time.Second

// Remote is a Channel to a Server over websocket.
type Remote struct {
	conn   *websocket.Conn
	logger *log.Logger

	mu      sync.Mutex
	pending map[string]chan serverReply
	err     error
	done    chan struct{}
}

// Dial connects to a server's /ws endpoint.
func Dial(ctx context.Context, url string, logger *log.Logger) (*Remote, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", url)
	}
	conn.SetReadLimit(readLimit)

	r := &Remote{
		conn:    conn,
		logger:  logger,
		pending: make(map[string]chan serverReply),
		done:    make(chan struct{}),
	}
	go r.readLoop()
	return r, nil
}

func (r *Remote) readLoop() {
	ctx := context.Background()
	for {
		var reply serverReply
		if err := wsjson.Read(ctx, r.conn, &reply); err != nil {
			r.fail(err)
			return
		}
		r.mu.Lock()
		ch, ok := r.pending[reply.RequestID]
		delete(r.pending, reply.RequestID)
		r.mu.Unlock()
		if !ok {
			r.logger.Printf("ws: dropping reply to unknown request %s", reply.RequestID)
			continue
		}
		ch <- reply
	}
}

func (r *Remote) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.err = errors.Wrap(err, "connection lost")
	close(r.done)
}

// Do implements Channel.
func (r *Remote) Do(ctx context.Context, req Request) (any, error) {
	if req == nil {
		return nil, calib.Errorf(calib.CodeValidation, "no request")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", req.Command())
	}

	id := uuid.NewString()
	ch := make(chan serverReply, 1)
	r.mu.Lock()
	if r.err != nil {
		err := r.err
		r.mu.Unlock()
		return nil, err
	}
	r.pending[id] = ch
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.pending, id)
		r.mu.Unlock()
	}()

	// A cancelled write tears the connection down, so the write is not
	// bound to the caller's context.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	err = wsjson.Write(wctx, r.conn, ClientMessage{Type: req.Command(), ID: id, Data: data})
	cancel()
	if err != nil {
		return nil, errors.Wrapf(err, "send %s", req.Command())
	}

	select {
	case reply := <-ch:
		if reply.Error != nil {
			return nil, reply.Error
		}
		return req.decodeResult(reply.Data)
	case <-r.done:
		r.mu.Lock()
		defer r.mu.Unlock()
		return nil, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close closes the connection.
func (r *Remote) Close() error {
	return r.conn.Close(websocket.StatusNormalClosure, "")
}
