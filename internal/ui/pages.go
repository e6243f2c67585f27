package ui

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mschirtzinger/jira/internal/db"
	"github.com/mschirtzinger/jira/internal/models"
)

// Reader gives pages read access to the current document.
type Reader interface {
	ReadDB() (models.DBState, error)
}

// Page is one screen of the interactive UI.
type Page interface {
	// Draw renders the page from a fresh read of the document.
	Draw(w io.Writer) error
	// HandleInput maps a line of user input to an action. A nil action
	// with a nil error means the input is ignored.
	HandleInput(input string) (*models.Action, error)
}

const (
	idWidth     = 11
	nameWidth   = 32
	statusWidth = 17
)

// HomePage lists all epics.
type HomePage struct {
	store Reader
}

// NewHomePage creates the epic list page.
func NewHomePage(store Reader) *HomePage {
	return &HomePage{store: store}
}

func (p *HomePage) Draw(w io.Writer) error {
	doc, err := p.store.ReadDB()
	if err != nil {
		return fmt.Errorf("failed to load epics: %w", err)
	}

	fmt.Fprintln(w, renderHeader("----------------------------- EPICS -----------------------------"))
	fmt.Fprintln(w, renderMuted("     id     |               name               |      status      "))

	for _, id := range sortedIDs(doc.Epics) {
		epic := doc.Epics[id]
		fmt.Fprintf(w, "%s| %s| %s\n",
			ColumnString(strconv.FormatUint(uint64(id), 10), idWidth+1),
			ColumnString(epic.Name, nameWidth+1),
			ColumnString(epic.Status.Label(), statusWidth))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderAccent("[q] quit | [c] create epic | [:id:] navigate to epic"))
	return nil
}

func (p *HomePage) HandleInput(input string) (*models.Action, error) {
	switch input = strings.TrimSpace(input); input {
	case "q":
		return &models.Action{Kind: models.Exit}, nil
	case "c":
		return &models.Action{Kind: models.CreateEpic}, nil
	}

	id, ok := parseID(input)
	if !ok {
		return nil, nil
	}
	doc, err := p.store.ReadDB()
	if err != nil {
		return nil, fmt.Errorf("failed to load epics: %w", err)
	}
	if _, exists := doc.Epics[id]; !exists {
		return nil, nil
	}
	return &models.Action{Kind: models.NavigateToEpicDetail, EpicID: id}, nil
}

// EpicDetail shows one epic and the stories it owns.
type EpicDetail struct {
	EpicID uint32
	store  Reader
}

// NewEpicDetail creates the detail page for epicID.
func NewEpicDetail(store Reader, epicID uint32) *EpicDetail {
	return &EpicDetail{EpicID: epicID, store: store}
}

func (p *EpicDetail) Draw(w io.Writer) error {
	doc, err := p.store.ReadDB()
	if err != nil {
		return fmt.Errorf("failed to load epic %d: %w", p.EpicID, err)
	}
	epic, ok := doc.Epics[p.EpicID]
	if !ok {
		return fmt.Errorf("epic %d: %w", p.EpicID, db.ErrEpicNotFound)
	}

	fmt.Fprintln(w, renderHeader("------------------------------ EPIC ------------------------------"))
	fmt.Fprintln(w, renderMuted("  id  |     name     |         description         |    status    "))
	fmt.Fprintf(w, "%s| %s| %s| %s\n",
		ColumnString(strconv.FormatUint(uint64(p.EpicID), 10), 6),
		ColumnString(epic.Name, 13),
		ColumnString(epic.Description, 28),
		ColumnString(epic.Status.Label(), 13))
	fmt.Fprintln(w)

	fmt.Fprintln(w, renderHeader("---------------------------- STORIES ----------------------------"))
	fmt.Fprintln(w, renderMuted("     id     |               name               |      status      "))

	for _, id := range epic.Stories {
		story, ok := doc.Stories[id]
		if !ok {
			// Dangling reference; nothing to show.
			continue
		}
		fmt.Fprintf(w, "%s| %s| %s\n",
			ColumnString(strconv.FormatUint(uint64(id), 10), idWidth+1),
			ColumnString(story.Name, nameWidth+1),
			ColumnString(story.Status.Label(), statusWidth))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderAccent("[p] previous | [u] update epic | [d] delete epic | [c] create story | [:id:] navigate to story"))
	return nil
}

func (p *EpicDetail) HandleInput(input string) (*models.Action, error) {
	switch input = strings.TrimSpace(input); input {
	case "p":
		return &models.Action{Kind: models.NavigateToPreviousPage}, nil
	case "u":
		return &models.Action{Kind: models.UpdateEpicStatus, EpicID: p.EpicID}, nil
	case "d":
		return &models.Action{Kind: models.DeleteEpic, EpicID: p.EpicID}, nil
	case "c":
		return &models.Action{Kind: models.CreateStory, EpicID: p.EpicID}, nil
	}

	doc, err := p.store.ReadDB()
	if err != nil {
		return nil, fmt.Errorf("failed to load epic %d: %w", p.EpicID, err)
	}
	epic, ok := doc.Epics[p.EpicID]
	if !ok {
		return nil, fmt.Errorf("epic %d: %w", p.EpicID, db.ErrEpicNotFound)
	}

	id, ok := parseID(input)
	if !ok || !epic.HasStory(id) {
		return nil, nil
	}
	return &models.Action{Kind: models.NavigateToStoryDetail, EpicID: p.EpicID, StoryID: id}, nil
}

// StoryDetail shows a single story.
type StoryDetail struct {
	EpicID  uint32
	StoryID uint32
	store   Reader
}

// NewStoryDetail creates the detail page for storyID inside epicID.
func NewStoryDetail(store Reader, epicID, storyID uint32) *StoryDetail {
	return &StoryDetail{EpicID: epicID, StoryID: storyID, store: store}
}

func (p *StoryDetail) Draw(w io.Writer) error {
	doc, err := p.store.ReadDB()
	if err != nil {
		return fmt.Errorf("failed to load story %d: %w", p.StoryID, err)
	}
	story, ok := doc.Stories[p.StoryID]
	if !ok {
		return fmt.Errorf("story %d: %w", p.StoryID, db.ErrStoryNotFound)
	}

	fmt.Fprintln(w, renderHeader("------------------------------ STORY ------------------------------"))
	fmt.Fprintln(w, renderMuted("  id  |     name     |         description         |    status    "))
	fmt.Fprintf(w, "%s| %s| %s| %s\n",
		ColumnString(strconv.FormatUint(uint64(p.StoryID), 10), 6),
		ColumnString(story.Name, 13),
		ColumnString(story.Description, 28),
		ColumnString(story.Status.Label(), 13))

	fmt.Fprintln(w)
	fmt.Fprintln(w)
	fmt.Fprintln(w, RenderAccent("[p] previous | [u] update story | [d] delete story"))
	return nil
}

func (p *StoryDetail) HandleInput(input string) (*models.Action, error) {
	switch strings.TrimSpace(input) {
	case "p":
		return &models.Action{Kind: models.NavigateToPreviousPage}, nil
	case "u":
		return &models.Action{Kind: models.UpdateStoryStatus, StoryID: p.StoryID}, nil
	case "d":
		return &models.Action{Kind: models.DeleteStory, EpicID: p.EpicID, StoryID: p.StoryID}, nil
	default:
		return nil, nil
	}
}

func parseID(input string) (uint32, bool) {
	n, err := strconv.ParseUint(input, 10, 32)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint32(n), true
}

func sortedIDs[V any](m map[uint32]V) []uint32 {
	ids := make([]uint32, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
