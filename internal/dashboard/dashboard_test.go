package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/go-cmp/cmp"

	"github.com/mschirtzinger/jira/internal/db"
	"github.com/mschirtzinger/jira/internal/models"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testConfig() *Config {
	return &Config{
		Host:     "127.0.0.1",
		Port:     0, // Use random available port
		Debounce: 20 * time.Millisecond,
		Logger:   quietLogger(),
	}
}

func sampleDoc() models.DBState {
	return models.DBState{
		LastItemID: 4,
		Epics: map[uint32]models.Epic{
			1: {Name: "Epic 1", Description: "first", Status: models.Open, Stories: []uint32{3, 4}},
		},
		Stories: map[uint32]models.Story{
			3: {Name: "Story 3", Status: models.Open},
			4: {Name: "Story 4", Status: models.InProgress},
		},
	}
}

// recorder collects broadcast messages.
type recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *recorder) Broadcast(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recorder) take() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.messages
	r.messages = nil
	return out
}

func decode[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(msg.Data, &v); err != nil {
		t.Fatalf("Failed to unmarshal %s data: %v", msg.Type, err)
	}
	return v
}

func TestServerStartStop(t *testing.T) {
	server := NewServer(testConfig(), nil)

	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	if addr := server.GetAddr(); addr == "" || addr == "127.0.0.1:0" {
		t.Fatalf("unexpected server address %q", addr)
	}

	if err := server.Stop(); err != nil {
		t.Fatalf("Failed to stop server: %v", err)
	}
	if err := server.Stop(); err != nil {
		t.Fatalf("Second stop failed: %v", err)
	}
}

func TestWebSocketConnection(t *testing.T) {
	server := NewServer(testConfig(), db.NewMemoryDatabaseWith(sampleDoc()))
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+server.GetAddr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Failed to read welcome message: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Failed to unmarshal message: %v", err)
	}
	if msg.Type != MessageTypeStats {
		t.Errorf("Expected welcome message type %s, got %s", MessageTypeStats, msg.Type)
	}
	stats := decode[StatsData](t, msg)
	if stats.Epics != 1 || stats.Stories != 2 {
		t.Errorf("unexpected welcome stats %+v", stats)
	}

	if count := server.ClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}
}

func TestMessageBroadcast(t *testing.T) {
	server := NewServer(testConfig(), nil)
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws://" + server.GetAddr() + "/ws"
	clients := make([]*websocket.Conn, 2)
	for i := range clients {
		conn, _, err := websocket.Dial(ctx, url, nil)
		if err != nil {
			t.Fatalf("Failed to connect client %d: %v", i, err)
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		if _, _, err := conn.Read(ctx); err != nil {
			t.Fatalf("Failed to read welcome message for client %d: %v", i, err)
		}
		clients[i] = conn
	}

	handler := NewHandler(server, quietLogger())
	handler.OnReadError(errors.New("boom"))

	for i, conn := range clients {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("client %d: failed to read broadcast: %v", i, err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if msg.Type != MessageTypeError || decode[ErrorData](t, msg).Error != "boom" {
			t.Errorf("client %d: unexpected message %s %s", i, msg.Type, msg.Data)
		}
	}
}

func TestHTTPEndpoints(t *testing.T) {
	doc := sampleDoc()
	server := NewServer(testConfig(), db.NewMemoryDatabaseWith(doc))
	if err := server.Start(); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	defer server.Stop()

	base := "http://" + server.GetAddr()

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	var health map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()
	if err != nil || health["status"] != "ok" {
		t.Errorf("unexpected health response %v (%v)", health, err)
	}

	resp, err = http.Get(base + "/api/document")
	if err != nil {
		t.Fatalf("GET /api/document failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("Failed to read body: %v", err)
	}
	got, err := db.JSONCodec{}.Unmarshal(body)
	if err != nil {
		t.Fatalf("document endpoint returned undecodable body: %v\n%s", err, body)
	}
	if diff := cmp.Diff(doc, got); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}

	resp, err = http.Get(base + "/nope")
	if err != nil {
		t.Fatalf("GET /nope failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", resp.StatusCode)
	}
}

func TestDocumentEndpointErrors(t *testing.T) {
	backend := db.NewMemoryDatabase()
	backend.FailReads(db.ErrReadFailure)

	failing := NewServer(testConfig(), backend)
	noSource := NewServer(testConfig(), nil)

	tests := []struct {
		name   string
		server *Server
		want   int
	}{
		{"read failure", failing, http.StatusServiceUnavailable},
		{"no source", noSource, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.server.Start(); err != nil {
				t.Fatalf("Failed to start server: %v", err)
			}
			defer tt.server.Stop()

			resp, err := http.Get("http://" + tt.server.GetAddr() + "/api/document")
			if err != nil {
				t.Fatalf("GET failed: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestHandlerBaseline(t *testing.T) {
	rec := &recorder{}
	handler := NewHandler(rec, quietLogger())

	if changes := handler.OnDocument(sampleDoc()); changes != 0 {
		t.Errorf("baseline should report no changes, got %d", changes)
	}
	msgs := rec.take()
	if len(msgs) != 1 || msgs[0].Type != MessageTypeStats {
		t.Fatalf("expected a single stats message, got %v", msgs)
	}

	if changes := handler.OnDocument(sampleDoc()); changes != 0 {
		t.Errorf("identical document should report no changes, got %d", changes)
	}
	if msgs := rec.take(); len(msgs) != 0 {
		t.Errorf("expected no messages for identical document, got %d", len(msgs))
	}
}

func TestHandlerDiff(t *testing.T) {
	rec := &recorder{}
	handler := NewHandler(rec, quietLogger())
	handler.OnDocument(sampleDoc())
	rec.take()

	next := sampleDoc()
	next.LastItemID = 5
	next.Epics[5] = models.NewEpic("Epic 5", "")
	epic := next.Epics[1]
	epic.Stories = []uint32{3}
	next.Epics[1] = epic
	delete(next.Stories, 4)
	story := next.Stories[3]
	story.Status = models.Closed
	next.Stories[3] = story

	if changes := handler.OnDocument(next); changes != 4 {
		t.Errorf("expected 4 changes, got %d", changes)
	}

	msgs := rec.take()
	var types []MessageType
	for _, m := range msgs {
		types = append(types, m.Type)
	}
	wantTypes := []MessageType{
		MessageTypeEpicUpdate, MessageTypeEpicUpdate,
		MessageTypeStoryUpdate, MessageTypeStoryUpdate,
		MessageTypeStats,
	}
	if diff := cmp.Diff(wantTypes, types); diff != "" {
		t.Fatalf("message types mismatch (-want +got):\n%s", diff)
	}

	epicUpdates := []EpicUpdateData{decode[EpicUpdateData](t, msgs[0]), decode[EpicUpdateData](t, msgs[1])}
	wantEpics := []EpicUpdateData{
		{EpicID: 1, Action: "updated", Name: "Epic 1", Status: "Open", Stories: 1},
		{EpicID: 5, Action: "created", Name: "Epic 5", Status: "Open", Stories: 0},
	}
	if diff := cmp.Diff(wantEpics, epicUpdates); diff != "" {
		t.Errorf("epic updates mismatch (-want +got):\n%s", diff)
	}

	storyUpdates := []StoryUpdateData{decode[StoryUpdateData](t, msgs[2]), decode[StoryUpdateData](t, msgs[3])}
	wantStories := []StoryUpdateData{
		{StoryID: 3, EpicID: 1, Action: "updated", Name: "Story 3", Status: "Closed"},
		{StoryID: 4, EpicID: 1, Action: "deleted"},
	}
	if diff := cmp.Diff(wantStories, storyUpdates); diff != "" {
		t.Errorf("story updates mismatch (-want +got):\n%s", diff)
	}

	stats := handler.GetStats()
	if stats.Epics != 2 || stats.Stories != 1 || stats.StoriesByStatus["Closed"] != 1 || stats.LastItemID != 5 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestComputeStats(t *testing.T) {
	doc := sampleDoc()
	doc.Stories[9] = models.NewStory("orphan", "")

	got := ComputeStats(doc)
	want := StatsData{
		Epics:           1,
		Stories:         3,
		EpicsByStatus:   map[string]int{"Open": 1},
		StoriesByStatus: map[string]int{"Open": 2, "InProgress": 1},
		LastItemID:      4,
		Problems:        2, // orphan story with an id above the counter
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ComputeStats mismatch (-want +got):\n%s", diff)
	}
}

func TestDashboardLiveUpdates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	store := db.NewWithDatabase(db.NewFileDatabase(path, nil), quietLogger())
	if _, err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	epicID, err := store.CreateEpic(models.NewEpic("Epic", "live"))
	if err != nil {
		t.Fatalf("CreateEpic failed: %v", err)
	}

	dash, err := New(store, path, testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := dash.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	runCtx, stop := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- dash.Run(runCtx) }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws://"+dash.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("Failed to connect WebSocket: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	if _, _, err := conn.Read(ctx); err != nil {
		t.Fatalf("Failed to read welcome message: %v", err)
	}

	storyID, err := store.CreateStory(models.NewStory("Story", ""), epicID)
	if err != nil {
		t.Fatalf("CreateStory failed: %v", err)
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("did not receive story update: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if msg.Type != MessageTypeStoryUpdate {
			continue
		}
		update := decode[StoryUpdateData](t, msg)
		want := StoryUpdateData{StoryID: storyID, EpicID: epicID, Action: "created", Name: "Story", Status: "Open"}
		if diff := cmp.Diff(want, update); diff != "" {
			t.Errorf("story update mismatch (-want +got):\n%s", diff)
		}
		break
	}

	stop()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(nil, "db.json", testConfig()); err == nil {
		t.Error("expected error for nil store")
	}
}
