package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/phrazzld/taskhive/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity(companyName string) Identity {
	return Identity{
		UserID:      uuid.New(),
		CompanyID:   uuid.New(),
		CompanyName: companyName,
	}
}

// fakeSocket is an in-memory socket implementation for exercising the
// connection pumps without a network.
type fakeSocket struct {
	mu      sync.Mutex
	inbound chan []byte
	written [][]byte
	control []int
	closed  bool
	closeCh chan struct{}
}

func newFakeSocket() *fakeSocket {
	return &fakeSocket{
		inbound: make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
}

func (f *fakeSocket) ReadMessage() (int, []byte, error) {
	select {
	case data, ok := <-f.inbound:
		if !ok {
			return 0, nil, errors.New("connection closed by peer")
		}
		return websocket.TextMessage, data, nil
	case <-f.closeCh:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeSocket) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("use of closed connection")
	}
	frame := make([]byte, len(data))
	copy(frame, data)
	f.written = append(f.written, frame)
	return nil
}

func (f *fakeSocket) WriteControl(messageType int, data []byte, deadline time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("use of closed connection")
	}
	f.control = append(f.control, messageType)
	return nil
}

func (f *fakeSocket) SetReadDeadline(t time.Time) error  { return nil }
func (f *fakeSocket) SetWriteDeadline(t time.Time) error { return nil }
func (f *fakeSocket) SetPongHandler(h func(string) error) {}

func (f *fakeSocket) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.closeCh)
	}
	return nil
}

func (f *fakeSocket) writtenFrames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	frames := make([][]byte, len(f.written))
	copy(frames, f.written)
	return frames
}

// stubValidator resolves fixed tokens to fixed identities.
type stubValidator struct {
	identities map[string]*Identity
}

func (s *stubValidator) Validate(ctx context.Context, token string) (*Identity, error) {
	if identity, ok := s.identities[token]; ok {
		return identity, nil
	}
	return nil, domain.ErrUnauthorized
}
