package logbuf

import (
	"encoding/json"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// StdHandler passes every record through to zerolog, the project's
// structured logger, matching spec.md §4.9's "standard streams
// (passthrough for desktop/terminal mode as configured)" handler.
type StdHandler struct {
	logger zerolog.Logger
}

// NewStdHandler builds a handler writing to stderr so stdout stays free
// for --desktop / terminal rendering.
func NewStdHandler(debug bool) *StdHandler {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	return &StdHandler{logger: logger}
}

func (h *StdHandler) Handle(r Record) {
	var ev *zerolog.Event
	switch r.Level {
	case LevelDebug:
		ev = h.logger.Debug()
	case LevelWarning:
		ev = h.logger.Warn()
	case LevelError:
		ev = h.logger.Error()
	case LevelCritical:
		ev = h.logger.Error().Stack()
	default:
		ev = h.logger.Info()
	}
	ev.Str("source", string(r.Source)).Msg(r.Message)
}

// jsonRecord is the wire shape for the network broadcast handler
// (spec.md §6 "Log broadcast format").
type jsonRecord struct {
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
	Level     string `json:"level"`
	Message   string `json:"message"`
}

// BroadcastHandler line-delimited-JSON-broadcasts every record to all
// connected TCP clients; a client whose write fails is closed and dropped
// silently (spec.md §4.9 "a failing network client is dropped silently").
type BroadcastHandler struct {
	mu      sync.Mutex
	clients map[net.Conn]struct{}
	ln      net.Listener
}

// NewBroadcastHandler starts listening on addr (e.g. "127.0.0.1:0") and
// accepts connections in the background.
func NewBroadcastHandler(addr string) (*BroadcastHandler, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	h := &BroadcastHandler{clients: map[net.Conn]struct{}{}, ln: ln}
	go h.acceptLoop()
	return h, nil
}

// Addr is the listener's bound address, useful when addr was ":0".
func (h *BroadcastHandler) Addr() string { return h.ln.Addr().String() }

func (h *BroadcastHandler) acceptLoop() {
	for {
		conn, err := h.ln.Accept()
		if err != nil {
			return
		}
		h.mu.Lock()
		h.clients[conn] = struct{}{}
		h.mu.Unlock()
	}
}

func (h *BroadcastHandler) Handle(r Record) {
	payload, err := json.Marshal(jsonRecord{
		Timestamp: r.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
		Source:    string(r.Source),
		Level:     r.Level.String(),
		Message:   r.Message,
	})
	if err != nil {
		return
	}
	payload = append(payload, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if _, err := conn.Write(payload); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close stops accepting new clients and disconnects existing ones.
func (h *BroadcastHandler) Close() error {
	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = map[net.Conn]struct{}{}
	h.mu.Unlock()
	return h.ln.Close()
}

// PaneHandler is the UI log pane: it just needs the buffer's own
// Records(); rendering reads the ring directly, so this handler exists
// only to let the main screen mark itself dirty on every append.
type PaneHandler struct {
	onAppend func(Record)
}

// NewPaneHandler wires onAppend, typically "mark the main screen dirty".
func NewPaneHandler(onAppend func(Record)) *PaneHandler {
	return &PaneHandler{onAppend: onAppend}
}

func (h *PaneHandler) Handle(r Record) {
	if h.onAppend != nil {
		h.onAppend(r)
	}
}
