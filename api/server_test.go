package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"regvm/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(0, config.DefaultConfig())
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestHandleAssembleRunsOneStep(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(AssembleRequest{Source: "load $0 #10\nhlt"})
	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp AssembleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Outcome != "continue" {
		t.Fatalf("outcome = %s, want continue", resp.Outcome)
	}
	if len(resp.Code) != 8 {
		t.Fatalf("code length = %d, want 8", len(resp.Code))
	}
}

func TestHandleAssembleRejectsGet(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/v1/assemble", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 405 {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestHandleRegistersAfterAssemble(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(AssembleRequest{Source: "load $0 #10"})
	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)

	req2 := httptest.NewRequest("GET", "/api/v1/registers", nil)
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req2)

	var snap StateSnapshot
	if err := json.Unmarshal(rec2.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.Registers[0] != 10 {
		t.Fatalf("R[0] = %d, want 10", snap.Registers[0])
	}
}

func TestHandleAssembleInvalidSource(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(AssembleRequest{Source: "bogus $0"})
	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 422 {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestHandleHeapWindow(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(AssembleRequest{Source: "aloc $0"})
	req := httptest.NewRequest("POST", "/api/v1/assemble", bytes.NewReader(body))
	s.Handler().ServeHTTP(httptest.NewRecorder(), req)
	s.vm.Registers[0] = 8
	s.vm.Heap = append([]byte(nil), 1, 2, 3, 4, 5, 6, 7, 8)

	req2 := httptest.NewRequest("GET", "/api/v1/heap?offset=2&limit=3", nil)
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req2)

	var got map[string][]byte
	if err := json.Unmarshal(rec2.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []byte{3, 4, 5}
	if len(got["heap"]) != len(want) {
		t.Fatalf("heap window = %v, want %v", got["heap"], want)
	}
	for i, b := range want {
		if got["heap"][i] != b {
			t.Fatalf("heap window = %v, want %v", got["heap"], want)
		}
	}
}

func TestHandleHeapRejectsBadOffset(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/api/v1/heap?offset=-1", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCorsAllowsLocalhost(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Fatalf("missing CORS header for localhost origin")
	}
}
