package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"golang.org/x/sync/errgroup"
)

const (
	maxMessageSize = 8192
	pubResolution  = 100 * time.Millisecond
)

// ErrPongDeadlineExceeded is returned by Sync when a client stops answering
// pings, mirroring the teacher's client liveness check
// (`tabular/server/fastview/client.go`).
var ErrPongDeadlineExceeded = errors.New("dashboard: client disconnect, pong deadline exceeded")

// ErrSockCongestion indicates too many waiters queued on the websocket for a
// given read or write.
var ErrSockCongestion = errors.New("dashboard: sock op failed due to congestion")

// client publishes ProgressFrames to one connected browser over one
// websocket, serializing reads/writes the same way the teacher's generic
// fastview client does, specialized here to the one payload type this
// package ever streams.
type client struct {
	updates <-chan ProgressFrame
	onFrame func(ProgressFrame)
	ws      *websock
	rootCtx context.Context
}

// newClient upgrades r to a websocket and wraps it as a client publishing
// frames read from updates. onFrame, if non-nil, is invoked with every
// frame the client is about to write (just before the write is attempted;
// frames skipped by the publish rate limit are not passed), so the caller
// can cache the latest one (e.g. for an HTTP snapshot endpoint) without a
// second subscriber.
func newClient(updates <-chan ProgressFrame, onFrame func(ProgressFrame), w http.ResponseWriter, r *http.Request) (*client, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, err
	}
	return &client{updates: updates, onFrame: onFrame, ws: newWebsock(ws), rootCtx: r.Context()}, nil
}

// Sync runs the read pump, ping/pong liveness check, and publish loop under
// one cancelable errgroup (spec SPEC_FULL §5's concretization of the
// teacher's `client.Sync`, `tabular/server/fastview/client.go`). It returns
// the first error from any of the three loops; a client disconnect, orderly
// or not, surfaces as the read pump's websocket read error.
func (cli *client) Sync() error {
	group, groupCtx := errgroup.WithContext(cli.rootCtx)

	group.Go(func() error { return cli.readMessages(groupCtx) })
	group.Go(func() error { return cli.pingPong(groupCtx) })
	group.Go(func() error { return cli.publish(groupCtx) })

	return group.Wait()
}

func (cli *client) pingPong(ctx context.Context) error {
	pong := make(chan struct{})
	defer close(pong)
	cli.ws.Conn().SetPongHandler(func(string) error {
		pong <- struct{}{}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingPeriod)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *client) ping(ctx context.Context) error {
	return cli.ws.Write(ctx, func(ws *websocket.Conn) error {
		if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
			if isError(err) {
				return fmt.Errorf("dashboard: ping failed: %w", err)
			}
		}
		return nil
	})
}

// readMessages drains client-originated websocket frames so the pong
// handler registered in pingPong keeps firing; this dashboard never reads a
// client payload, but the control-frame plumbing requires an active reader.
func (cli *client) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(ctx, func(ws *websocket.Conn) error {
			_, _, readErr := ws.ReadMessage()
			return readErr
		})
		if err != nil {
			return err
		}
	}
}

func (cli *client) publish(ctx context.Context) error {
	lastSync := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-cli.updates:
			if !ok {
				return nil
			}
			if time.Since(lastSync) < pubResolution {
				continue
			}
			lastSync = time.Now()
			if cli.onFrame != nil {
				cli.onFrame(frame)
			}
			err := cli.ws.Write(ctx, func(ws *websocket.Conn) error {
				if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
					return fmt.Errorf("dashboard: set write deadline: %w", err)
				}
				if err := ws.WriteJSON(frame); err != nil && isError(err) {
					return fmt.Errorf("dashboard: publish failed: %w", err)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// websock serializes reads and writes to the underlying connection, since
// gorilla/websocket permits only one concurrent reader and one concurrent
// writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebsock(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn returns the underlying connection, for setup calls only (pong
// handler registration); must not be used concurrently with Read/Write.
func (sock *websock) Conn() *websocket.Conn { return sock.ws }

func (sock *websock) close() {
	sock.readSem <- struct{}{}
	sock.writeSem <- struct{}{}
	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	sock.ws.Close()
}

func (sock *websock) Read(ctx context.Context, readFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	case <-time.After(readDeadline):
		return ErrSockCongestion
	}
}

func (sock *websock) Write(ctx context.Context, writeFn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(writeDeadline):
		return ErrSockCongestion
	}
}
