package db

import (
	"fmt"
	"log"
	"math"
	"os"

	"github.com/mschirtzinger/jira/internal/models"
)

// JiraDatabase exposes one method per user command over a Database.
//
// Every mutating method performs exactly one ReadDB, computes the new
// document on a Clone of what was read, and calls WriteDB once only when the
// transformation succeeded. A failed precondition never reaches the backend,
// so a failed CreateStory does not consume an id.
//
// JiraDatabase keeps no document state of its own; the counter and both maps
// are re-read from the backend on every call.
type JiraDatabase struct {
	database Database
	logger   *log.Logger
}

// NewJiraDatabase returns a store over the backend Open picks for path.
func NewJiraDatabase(path string) *JiraDatabase {
	return NewWithDatabase(Open(path), nil)
}

// NewWithDatabase returns a store over database. If logger is nil, a default
// logger writing to stderr is used.
func NewWithDatabase(database Database, logger *log.Logger) *JiraDatabase {
	if logger == nil {
		logger = log.New(os.Stderr, "[db] ", log.LstdFlags)
	}
	return &JiraDatabase{
		database: database,
		logger:   logger,
	}
}

// Backend returns the storage backend the store owns.
func (j *JiraDatabase) Backend() Database {
	return j.database
}

// Init creates an empty document when the backend supports it and the target
// does not exist yet.
func (j *JiraDatabase) Init() (bool, error) {
	initializer, ok := j.database.(Initializer)
	if !ok {
		return false, nil
	}
	created, err := initializer.Init()
	if err != nil {
		return false, err
	}
	if created {
		j.logger.Printf("Initialized empty document")
	}
	return created, nil
}

// ReadDB returns the current document for read-only use.
func (j *JiraDatabase) ReadDB() (models.DBState, error) {
	return j.database.ReadDB()
}

// transform runs one read, fn over a working copy, and one write.
func (j *JiraDatabase) transform(op string, fn func(doc *models.DBState) (uint32, error)) (uint32, error) {
	current, err := j.database.ReadDB()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	next := current.Clone()
	id, err := fn(&next)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := j.database.WriteDB(next); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

// allocateID advances the counter and returns the new id.
func allocateID(doc *models.DBState) (uint32, error) {
	if doc.LastItemID == math.MaxUint32 {
		return 0, ErrIDExhausted
	}
	doc.LastItemID++
	return doc.LastItemID, nil
}

// CreateEpic stores epic under a fresh id and returns the id. The epic
// always starts with an empty story list.
func (j *JiraDatabase) CreateEpic(epic models.Epic) (uint32, error) {
	id, err := j.transform("create epic", func(doc *models.DBState) (uint32, error) {
		if !epic.Status.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, epic.Status)
		}
		if err := validText(epic.Name, epic.Description); err != nil {
			return 0, err
		}
		id, err := allocateID(doc)
		if err != nil {
			return 0, err
		}
		epic.Stories = []uint32{}
		doc.Epics[id] = epic
		return id, nil
	})
	if err != nil {
		return 0, err
	}

	j.logger.Printf("Created epic %d (%s)", id, epic.Name)
	return id, nil
}

// CreateStory stores story under a fresh id, appends the id to the epic's
// story list and returns it.
func (j *JiraDatabase) CreateStory(story models.Story, epicID uint32) (uint32, error) {
	id, err := j.transform("create story", func(doc *models.DBState) (uint32, error) {
		if !story.Status.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, story.Status)
		}
		if err := validText(story.Name, story.Description); err != nil {
			return 0, err
		}
		id, err := allocateID(doc)
		if err != nil {
			return 0, err
		}
		doc.Stories[id] = story

		epic, ok := doc.Epics[epicID]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrEpicNotFound, epicID)
		}
		epic.Stories = append(epic.Stories, id)
		doc.Epics[epicID] = epic
		return id, nil
	})
	if err != nil {
		return 0, err
	}

	j.logger.Printf("Created story %d (%s) in epic %d", id, story.Name, epicID)
	return id, nil
}

// DeleteEpic removes the epic and every story in its list. Story ids that
// are already missing are skipped with a warning.
func (j *JiraDatabase) DeleteEpic(epicID uint32) error {
	_, err := j.transform("delete epic", func(doc *models.DBState) (uint32, error) {
		epic, ok := doc.Epics[epicID]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrEpicNotFound, epicID)
		}
		for _, storyID := range epic.Stories {
			if _, ok := doc.Stories[storyID]; !ok {
				j.logger.Printf("WARNING: epic %d references missing story %d", epicID, storyID)
				continue
			}
			delete(doc.Stories, storyID)
		}
		delete(doc.Epics, epicID)
		return 0, nil
	})
	if err != nil {
		return err
	}

	j.logger.Printf("Deleted epic %d", epicID)
	return nil
}

// DeleteStory removes the story from the document and from the epic's list.
// The story must be in that epic's list; existence alone is not enough.
func (j *JiraDatabase) DeleteStory(epicID, storyID uint32) error {
	_, err := j.transform("delete story", func(doc *models.DBState) (uint32, error) {
		epic, ok := doc.Epics[epicID]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrEpicNotFound, epicID)
		}
		if !epic.HasStory(storyID) {
			return 0, fmt.Errorf("%w: story %d, epic %d", ErrStoryNotInEpic, storyID, epicID)
		}

		delete(doc.Stories, storyID)
		kept := make([]uint32, 0, len(epic.Stories))
		for _, id := range epic.Stories {
			if id != storyID {
				kept = append(kept, id)
			}
		}
		epic.Stories = kept
		doc.Epics[epicID] = epic
		return 0, nil
	})
	if err != nil {
		return err
	}

	j.logger.Printf("Deleted story %d from epic %d", storyID, epicID)
	return nil
}

// UpdateEpicStatus sets the status of an existing epic.
func (j *JiraDatabase) UpdateEpicStatus(epicID uint32, status models.Status) error {
	_, err := j.transform("update epic status", func(doc *models.DBState) (uint32, error) {
		if !status.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		epic, ok := doc.Epics[epicID]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrEpicNotFound, epicID)
		}
		epic.Status = status
		doc.Epics[epicID] = epic
		return 0, nil
	})
	if err != nil {
		return err
	}

	j.logger.Printf("Epic %d status -> %s", epicID, status)
	return nil
}

// UpdateStoryStatus sets the status of an existing story.
func (j *JiraDatabase) UpdateStoryStatus(storyID uint32, status models.Status) error {
	_, err := j.transform("update story status", func(doc *models.DBState) (uint32, error) {
		if !status.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
		}
		story, ok := doc.Stories[storyID]
		if !ok {
			return 0, fmt.Errorf("%w: %d", ErrStoryNotFound, storyID)
		}
		story.Status = status
		doc.Stories[storyID] = story
		return 0, nil
	})
	if err != nil {
		return err
	}

	j.logger.Printf("Story %d status -> %s", storyID, status)
	return nil
}
