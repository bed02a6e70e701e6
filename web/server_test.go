package web

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"livescore-service/config"
	"livescore-service/services"
)

func newTestServer() (*Server, *services.CourtStateStore, *services.EventHistory) {
	cfg := &config.Config{
		LivescoreHost: "http://localhost:1337",
		Port:          "6969",
		CourtList:     []string{"1", "2"},
	}
	store := services.NewCourtStateStore()
	history := services.NewEventHistory()
	registry := services.NewCourtRegistry(cfg.CourtList)
	rooms := services.NewRoomSubscriptionManager(nil, store)

	return NewServer(cfg, store, history, nil, rooms, nil, registry), store, history
}

func TestLapanganNotFoundContract(t *testing.T) {
	s, store, _ := newTestServer()
	store.ApplyScoreUpdate("1", map[string]interface{}{"team1point": float64(3)}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/lapangan?id=99", nil)
	s.handleLapangan(w, r)

	if w.Code != 404 {
		t.Fatalf("Expected 404 for unknown court, got %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON error body, got %v", err)
	}
	if body["success"] != false {
		t.Errorf("Expected success false, got %v", body["success"])
	}
	if body["error"] != "Lapangan not found" {
		t.Errorf("Expected 'Lapangan not found', got %v", body["error"])
	}
	available, ok := body["available"].([]interface{})
	if !ok || len(available) != 1 || available[0] != "1" {
		t.Errorf("Expected available court list ['1'], got %v", body["available"])
	}
}

func TestVmixFlatArrayWrapped(t *testing.T) {
	s, store, _ := newTestServer()
	store.ApplyScoreUpdate("1", map[string]interface{}{
		"lapangan":   "1",
		"team1point": float64(11),
		"team2point": float64(8),
	}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/vmix-flat?id=1", nil)
	s.handleVmixFlat(w, r)

	if w.Code != 200 {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var boards []services.FlatScoreboard
	if err := json.Unmarshal(w.Body.Bytes(), &boards); err != nil {
		t.Fatalf("Expected array-wrapped flat scoreboard, got %v", err)
	}
	if len(boards) != 1 {
		t.Fatalf("Expected exactly 1 element, got %d", len(boards))
	}
	if boards[0].Team1Current != 11 || boards[0].Team2Current != 8 {
		t.Errorf("Expected current points 11-8, got %d-%d",
			boards[0].Team1Current, boards[0].Team2Current)
	}
	if boards[0].Status != services.StatusPlaying {
		t.Errorf("Expected status 'playing', got %q", boards[0].Status)
	}
}

func TestVmixXMLNotFound(t *testing.T) {
	s, _, _ := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/vmix-xml?id=5", nil)
	s.handleVmixXML(w, r)

	if w.Code != 404 {
		t.Fatalf("Expected 404, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/xml" {
		t.Errorf("Expected text/xml content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "<error>") {
		t.Errorf("Expected XML error document, got %s", w.Body.String())
	}
}

func TestBTPWithoutDatabase(t *testing.T) {
	s, _, _ := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/btp?uid=match-1", nil)
	s.handleBTP(w, r)

	if w.Code != 503 {
		t.Errorf("Expected 503 without match store, got %d", w.Code)
	}
}

func TestClearResetsState(t *testing.T) {
	s, store, history := newTestServer()
	store.ApplyScoreUpdate("1", map[string]interface{}{"team1point": float64(3)}, nil)
	history.Append("updatescore", nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/clear", nil)
	s.handleClear(w, r)

	if w.Code != 200 {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if store.Len() != 0 {
		t.Errorf("Expected empty store after clear, got %d courts", store.Len())
	}
	if history.Len() != 0 {
		t.Errorf("Expected empty history after clear, got %d events", history.Len())
	}
}

func TestStatusWithoutSocket(t *testing.T) {
	s, _, _ := newTestServer()

	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/status", nil)
	s.handleStatus(w, r)

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON body, got %v", err)
	}
	if body["connectionStatus"] != services.ConnStatusDisconnected {
		t.Errorf("Expected 'disconnected' without socket, got %v", body["connectionStatus"])
	}
}
