package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/latwalk/internal/simulation"
)

// maxServedPositions bounds walkers*(steps+1) for one /api/frames request.
const maxServedPositions = 1_000_000

// Server serves a run page and simulates fresh runs on request.
type Server struct {
	cfg        simulation.Config
	seed       uint64
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// FramesResponse is the /api/frames payload.
type FramesResponse struct {
	Seed   uint64                    `json:"seed"`
	Config simulation.Config         `json:"config"`
	Frames []FramePoint              `json:"frames"`
	Stats  *simulation.DistanceStats `json:"stats,omitempty"`
}

// NewServer creates a server whose index page shows a run of cfg with seed.
// A zero seed picks a new one for each page load.
func NewServer(cfg simulation.Config, seed uint64) *Server {
	return &Server{cfg: cfg, seed: seed}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe starts the HTTP server on an OS-assigned port and blocks
// until the context is cancelled. Returns nil on clean shutdown.
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/frames", s.handleFrames)

	// Let the OS pick a free port.
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// handleIndex simulates the configured run and serves its page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	cfg := s.cfg
	cfg.ExportTrajectory = true
	c, seed, err := simulate(cfg, s.seed)
	if err != nil {
		http.Error(w, "simulation error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	run, err := RunFromCollector(c, seed)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	html, err := RenderHTMLForServer(run, "http://"+s.Addr())
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleFrames runs a fresh simulation and returns its frames as JSON.
// Query parameters walkers, steps, interval and seed override the server's config.
func (s *Server) handleFrames(w http.ResponseWriter, r *http.Request) {
	cfg := s.cfg
	cfg.ExportFrames = true
	seed := uint64(0)

	q := r.URL.Query()
	for _, p := range []struct {
		name string
		dst  *int
	}{
		{"walkers", &cfg.Walkers},
		{"steps", &cfg.Steps},
		{"interval", &cfg.FrameInterval},
	} {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				http.Error(w, fmt.Sprintf("invalid %s: %q", p.name, v), http.StatusBadRequest)
				return
			}
			*p.dst = n
		}
	}
	if v := q.Get("seed"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid seed: %q", v), http.StatusBadRequest)
			return
		}
		seed = n
	}
	if cfg.Walkers > maxServedPositions || cfg.Steps >= maxServedPositions ||
		cfg.Walkers*(cfg.Steps+1) > maxServedPositions {
		http.Error(w, "run too large", http.StatusBadRequest)
		return
	}

	c, seed, err := simulate(cfg, seed)
	if errors.Is(err, simulation.ErrInvalidConfiguration) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "simulation error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(FramesResponse{
		Seed:   seed,
		Config: cfg,
		Frames: CompactFrames(c.Frames),
		Stats:  c.Stats,
	})
}

func simulate(cfg simulation.Config, seed uint64) (*simulation.Collector, uint64, error) {
	c := &simulation.Collector{}
	sim, err := simulation.New(cfg, c, simulation.WithSeed(seed))
	if err != nil {
		return nil, 0, err
	}
	if err := sim.Run(); err != nil {
		return nil, 0, err
	}
	return c, sim.Seed(), nil
}
