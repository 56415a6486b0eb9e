// Package preview serves carved chunks to browser tools over a websocket.
package preview

import (
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/cavegen/internal/world"
	"github.com/OCharnyshevich/cavegen/pkg/world/carve"
	"github.com/OCharnyshevich/cavegen/pkg/world/gen"
)

// Message types.
const (
	TypeCarve = "CARVE"
	TypeChunk = "CHUNK"
	TypeError = "ERROR"
)

// MaxRadius bounds the square of chunks one CARVE request may ask for.
const MaxRadius = 4

// Request asks for the chunks within Radius of (X, Z).
type Request struct {
	Type   string `json:"type"`
	X      int    `json:"x"`
	Z      int    `json:"z"`
	Radius int    `json:"radius"`
}

// Chunk describes one carved chunk.
type Chunk struct {
	Type   string      `json:"type"`
	X      int         `json:"x"`
	Z      int         `json:"z"`
	Digest string      `json:"digest"`
	Air    []int       `json:"air"` // carved air per column below the surface, index z*16+x
	Stats  carve.Stats `json:"stats"`
}

// Error reports a rejected request.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Info is served at /info.
type Info struct {
	Preset   string `json:"preset"`
	Seed     int64  `json:"seed"`
	Range    int    `json:"range"`
	Features int    `json:"features"`
}

// Server answers CARVE requests from one World.
type Server struct {
	world *world.World
	log   *slog.Logger

	upgrader websocket.Upgrader
	sessions atomic.Int64
}

// NewServer returns a Server for w.
func NewServer(w *world.World, log *slog.Logger) *Server {
	return &Server{
		world: w,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Handler routes /info and /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /info", s.handleInfo)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

func (s *Server) handleInfo(rw http.ResponseWriter, _ *http.Request) {
	p := s.world.Carver().Preset()
	info := Info{
		Preset:   p.Name,
		Seed:     s.world.Seed(),
		Range:    p.Range,
		Features: len(s.world.Carver().Features()),
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(info)
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	id := s.sessions.Add(1)
	log := s.log.With("session", id, "remote", r.RemoteAddr)
	log.Info("preview session opened")
	defer log.Info("preview session closed")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Minute))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req Request
		if err := json.Unmarshal(msg, &req); err != nil {
			if !s.send(conn, Error{Type: TypeError, Message: "bad request: " + err.Error()}) {
				return
			}
			continue
		}
		if req.Type != TypeCarve {
			if !s.send(conn, Error{Type: TypeError, Message: "expected " + TypeCarve}) {
				return
			}
			continue
		}
		if req.Radius < 0 || req.Radius > MaxRadius {
			if !s.send(conn, Error{Type: TypeError, Message: "radius out of range"}) {
				return
			}
			continue
		}

		for x := req.X - req.Radius; x <= req.X+req.Radius; x++ {
			for z := req.Z - req.Radius; z <= req.Z+req.Radius; z++ {
				out, err := s.chunk(x, z)
				if err != nil {
					log.Error("carve chunk", "x", x, "z", z, "error", err)
					if !s.send(conn, Error{Type: TypeError, Message: err.Error()}) {
						return
					}
					continue
				}
				if !s.send(conn, out) {
					return
				}
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, v any) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(v) == nil
}

func (s *Server) chunk(cx, cz int) (Chunk, error) {
	c, err := s.world.GetOrGenerateChunk(cx, cz)
	if err != nil {
		return Chunk{}, err
	}
	st, _ := s.world.Stats(cx, cz)
	sum := c.Digest()
	return Chunk{
		Type:   TypeChunk,
		X:      cx,
		Z:      cz,
		Digest: hex.EncodeToString(sum[:]),
		Air:    AirBelowSurface(c),
		Stats:  st,
	}, nil
}

// AirBelowSurface counts, per column, the air cells under the highest solid
// block. Index is z*16+x.
func AirBelowSurface(c *gen.ChunkData) []int {
	out := make([]int, 256)
	for z := 0; z < 16; z++ {
		for x := 0; x < 16; x++ {
			top := 255
			for top > 0 && c.GetBlock(x, top, z) == 0 {
				top--
			}
			n := 0
			for y := 1; y < top; y++ {
				if c.GetBlock(x, y, z) == 0 {
					n++
				}
			}
			out[z*16+x] = n
		}
	}
	return out
}
