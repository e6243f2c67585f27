package dashboard

import (
	"encoding/json"
	"log"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mschirtzinger/jira/internal/models"
)

// Broadcaster receives formatted dashboard messages. *Server implements it.
type Broadcaster interface {
	Broadcast(msg Message)
}

// EpicUpdateData contains epic change information
type EpicUpdateData struct {
	EpicID  uint32 `json:"epic_id"`
	Action  string `json:"action"` // created, updated, deleted
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
	Stories int    `json:"stories"`
}

// StoryUpdateData contains story change information
type StoryUpdateData struct {
	StoryID uint32 `json:"story_id"`
	EpicID  uint32 `json:"epic_id,omitempty"`
	Action  string `json:"action"` // created, updated, deleted
	Name    string `json:"name,omitempty"`
	Status  string `json:"status,omitempty"`
}

// StatsData contains document statistics
type StatsData struct {
	Epics           int            `json:"epics"`
	Stories         int            `json:"stories"`
	EpicsByStatus   map[string]int `json:"epics_by_status"`
	StoriesByStatus map[string]int `json:"stories_by_status"`
	LastItemID      uint32         `json:"last_item_id"`
	Problems        int            `json:"problems"`
}

// ErrorData describes a failed document reload
type ErrorData struct {
	Error string `json:"error"`
}

// ComputeStats summarizes doc.
func ComputeStats(doc models.DBState) StatsData {
	stats := StatsData{
		Epics:           len(doc.Epics),
		Stories:         len(doc.Stories),
		EpicsByStatus:   make(map[string]int),
		StoriesByStatus: make(map[string]int),
		LastItemID:      doc.LastItemID,
		Problems:        len(models.CheckIntegrity(doc)),
	}
	for _, epic := range doc.Epics {
		stats.EpicsByStatus[string(epic.Status)]++
	}
	for _, story := range doc.Stories {
		stats.StoriesByStatus[string(story.Status)]++
	}
	return stats
}

// Handler turns successive versions of the document into dashboard messages.
type Handler struct {
	server Broadcaster
	logger *log.Logger

	mu       sync.Mutex
	previous models.DBState
	loaded   bool
	stats    StatsData
}

// NewHandler creates a new event handler connected to a dashboard server
func NewHandler(server Broadcaster, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}

	return &Handler{
		server: server,
		logger: logger,
		stats: StatsData{
			EpicsByStatus:   make(map[string]int),
			StoriesByStatus: make(map[string]int),
		},
	}
}

// OnDocument handles a freshly read document. The first call only records a
// baseline and publishes statistics; later calls broadcast one message per
// created, updated or deleted epic and story, then the new statistics.
// It returns the number of epic and story changes found.
func (h *Handler) OnDocument(doc models.DBState) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc = doc.Clone()
	changes := 0

	if h.loaded {
		changes += h.diffEpics(h.previous, doc)
		changes += h.diffStories(h.previous, doc)
	}

	first := !h.loaded
	h.previous = doc
	h.loaded = true
	h.stats = ComputeStats(doc)

	if first || changes > 0 {
		h.logger.Printf("Document loaded: %d epics, %d stories, %d changes",
			h.stats.Epics, h.stats.Stories, changes)
		h.broadcast(MessageTypeStats, h.stats)
	}
	return changes
}

// OnReadError handles a document that could not be read. The last good
// document stays the baseline for the next diff.
func (h *Handler) OnReadError(err error) {
	h.logger.Printf("Failed to reload document: %v", err)
	h.broadcast(MessageTypeError, ErrorData{Error: err.Error()})
}

// GetStats returns the current statistics
func (h *Handler) GetStats() StatsData {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

func (h *Handler) diffEpics(oldDoc, newDoc models.DBState) int {
	changes := 0
	for _, id := range unionIDs(oldDoc.Epics, newDoc.Epics) {
		before, existed := oldDoc.Epics[id]
		after, exists := newDoc.Epics[id]

		var action string
		switch {
		case !existed:
			action = "created"
		case !exists:
			action = "deleted"
		case !epicEqual(before, after):
			action = "updated"
		default:
			continue
		}

		h.logger.Printf("Epic %s: %d (%s)", action, id, after.Name)
		data := EpicUpdateData{EpicID: id, Action: action}
		if exists {
			data.Name = after.Name
			data.Status = string(after.Status)
			data.Stories = len(after.Stories)
		}
		h.broadcast(MessageTypeEpicUpdate, data)
		changes++
	}
	return changes
}

func (h *Handler) diffStories(oldDoc, newDoc models.DBState) int {
	changes := 0
	for _, id := range unionIDs(oldDoc.Stories, newDoc.Stories) {
		before, existed := oldDoc.Stories[id]
		after, exists := newDoc.Stories[id]

		var action string
		switch {
		case !existed:
			action = "created"
		case !exists:
			action = "deleted"
		case before != after:
			action = "updated"
		default:
			continue
		}

		h.logger.Printf("Story %s: %d (%s)", action, id, after.Name)
		data := StoryUpdateData{StoryID: id, Action: action}
		if exists {
			data.Name = after.Name
			data.Status = string(after.Status)
			data.EpicID, _ = newDoc.EpicOf(id)
		} else {
			data.EpicID, _ = oldDoc.EpicOf(id)
		}
		h.broadcast(MessageTypeStoryUpdate, data)
		changes++
	}
	return changes
}

func (h *Handler) broadcast(typ MessageType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Printf("Failed to marshal %s data: %v", typ, err)
		return
	}

	h.server.Broadcast(Message{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      data,
	})
}

func epicEqual(a, b models.Epic) bool {
	return a.Name == b.Name &&
		a.Description == b.Description &&
		a.Status == b.Status &&
		slices.Equal(a.Stories, b.Stories)
}

func unionIDs[V any](a, b map[uint32]V) []uint32 {
	ids := make([]uint32, 0, len(a)+len(b))
	for id := range a {
		ids = append(ids, id)
	}
	for id := range b {
		if _, ok := a[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
