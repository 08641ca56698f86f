package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"regvm/assembler"
	"regvm/config"
	"regvm/vm"
)

// Server is the HTTP API driver described in spec.md §1: it feeds
// source text to an assembler, appends produced bytes to a VM's
// program, and reads back register/heap/program state for display. It
// owns exactly one VM and one Assembler, mirroring the REPL's state
// ownership rule (spec.md §9) but over HTTP instead of stdin/stdout.
type Server struct {
	mu          sync.Mutex
	vm          *vm.VM
	assembler   *assembler.Assembler
	broadcaster *Broadcaster

	mux    *http.ServeMux
	server *http.Server
	port   int
}

// NewServer creates an API server bound to port, with a fresh VM and
// Assembler configured from cfg.
func NewServer(port int, cfg *config.Config) *Server {
	v := vm.New()
	v.MaxSteps = cfg.Execution.MaxSteps
	if cfg.Execution.InitialHeapCapacity > 0 {
		v.Heap = make([]byte, 0, vm.HeapCapacity(cfg.Execution.InitialHeapCapacity))
	}

	s := &Server{
		vm:          v,
		assembler:   assembler.NewAssembler(),
		broadcaster: NewBroadcaster(),
		mux:         http.NewServeMux(),
		port:        port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/assemble", s.handleAssemble)
	s.mux.HandleFunc("/api/v1/registers", s.handleRegisters)
	s.mux.HandleFunc("/api/v1/heap", s.handleHeap)
	s.mux.HandleFunc("/api/v1/program", s.handleProgram)
	s.mux.HandleFunc("/api/v1/stream", s.handleStream)
}

// Handler returns the HTTP handler with CORS middleware applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("api server starting on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and closes the broadcaster.
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleAssemble(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "assemble requires POST")
		return
	}

	var req AssembleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	code, err := s.assembler.Assemble(req.Source)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.vm.Append(code)

	outcome, err := s.vm.RunOnce()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	resp := AssembleResponse{Code: code, Outcome: outcomeString(outcome)}
	s.broadcaster.Publish(s.snapshot())
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRegisters(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.snapshot())
}

// handleHeap returns the heap, optionally windowed by ?offset= and
// ?limit= query parameters (SPEC_FULL.md §3's heap dump endpoint, extended
// beyond a flat dump so large heaps stay cheap to poll over HTTP).
func (s *Server) handleHeap(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	offset, limit, err := parseHeapWindow(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	heap := s.vm.Heap
	if offset > len(heap) {
		offset = len(heap)
	}
	end := len(heap)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	writeJSON(w, http.StatusOK, map[string]any{"heap": heap[offset:end]})
}

// parseHeapWindow reads the offset/limit query parameters, validating
// each with the VM's bounds-checked conversions rather than a raw cast:
// offset must fit the VM's uint32 address space, and limit is capped to
// a uint16-sized page so a malformed request can't ask for the whole
// heap to be re-encoded as JSON in one response.
func parseHeapWindow(q url.Values) (offset, limit int, err error) {
	if s := q.Get("offset"); s != "" {
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return 0, 0, fmt.Errorf("invalid offset: %w", perr)
		}
		u, cerr := vm.SafeInt64ToUint32(n)
		if cerr != nil {
			return 0, 0, fmt.Errorf("offset out of range: %w", cerr)
		}
		offset = int(u)
	}
	if s := q.Get("limit"); s != "" {
		n, perr := strconv.ParseInt(s, 10, 64)
		if perr != nil {
			return 0, 0, fmt.Errorf("invalid limit: %w", perr)
		}
		u, cerr := vm.SafeInt64ToUint32(n)
		if cerr != nil {
			return 0, 0, fmt.Errorf("limit out of range: %w", cerr)
		}
		page, cerr := vm.SafeUint32ToUint16(u)
		if cerr != nil {
			page = math.MaxUint16
		}
		limit = int(page)
	}
	return offset, limit, nil
}

func (s *Server) handleProgram(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"program": s.vm.Program})
}

func (s *Server) snapshot() StateSnapshot {
	return StateSnapshot{
		Registers:       s.vm.Registers,
		PC:              s.vm.PC,
		Remainder:       s.vm.Remainder,
		RemainderSigned: vm.AsInt32(s.vm.Remainder),
		Heap:            append([]byte(nil), s.vm.Heap...),
		Program:         append([]byte(nil), s.vm.Program...),
	}
}

func outcomeString(o vm.StepOutcome) string {
	switch o {
	case vm.StepHalted:
		return "halted"
	case vm.StepIllegal:
		return "illegal"
	default:
		return "continue"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// corsMiddleware adds CORS headers restricted to localhost origins.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isAllowedOrigin restricts CORS to localhost origins.
func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "file://") {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}
