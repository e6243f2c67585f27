package models

// Epic is a top-level work item owning an ordered list of story ids.
type Epic struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      Status   `json:"status"`
	Stories     []uint32 `json:"stories"`
}

// NewEpic returns an open epic with no stories.
func NewEpic(name, description string) Epic {
	return Epic{
		Name:        name,
		Description: description,
		Status:      Open,
		Stories:     []uint32{},
	}
}

// HasStory reports whether storyID is in the epic's story list.
func (e Epic) HasStory(storyID uint32) bool {
	for _, id := range e.Stories {
		if id == storyID {
			return true
		}
	}
	return false
}

// Story is a leaf work item belonging to exactly one epic.
type Story struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
}

// NewStory returns an open story.
func NewStory(name, description string) Story {
	return Story{
		Name:        name,
		Description: description,
		Status:      Open,
	}
}

// DBState is the whole persisted document.
type DBState struct {
	LastItemID uint32           `json:"last_item_id"`
	Epics      map[uint32]Epic  `json:"epics"`
	Stories    map[uint32]Story `json:"stories"`
}

// NewDBState returns the empty document: counter 0, no epics, no stories.
func NewDBState() DBState {
	return DBState{
		LastItemID: 0,
		Epics:      make(map[uint32]Epic),
		Stories:    make(map[uint32]Story),
	}
}

// Clone returns a deep copy. Nil maps and story lists come back empty.
func (d DBState) Clone() DBState {
	out := DBState{
		LastItemID: d.LastItemID,
		Epics:      make(map[uint32]Epic, len(d.Epics)),
		Stories:    make(map[uint32]Story, len(d.Stories)),
	}
	for id, epic := range d.Epics {
		stories := make([]uint32, len(epic.Stories))
		copy(stories, epic.Stories)
		epic.Stories = stories
		out.Epics[id] = epic
	}
	for id, story := range d.Stories {
		out.Stories[id] = story
	}
	return out
}

// NextID returns the id the next creation will be issued.
func (d DBState) NextID() uint32 {
	return d.LastItemID + 1
}

// EpicOf returns the id of the epic whose list contains storyID.
func (d DBState) EpicOf(storyID uint32) (uint32, bool) {
	for id, epic := range d.Epics {
		if epic.HasStory(storyID) {
			return id, true
		}
	}
	return 0, false
}
