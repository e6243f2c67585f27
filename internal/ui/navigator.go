package ui

import (
	"errors"
	"fmt"

	"github.com/mschirtzinger/jira/internal/models"
)

// Store is the set of document operations the navigator performs.
// *db.JiraDatabase satisfies it.
type Store interface {
	Reader
	CreateEpic(epic models.Epic) (uint32, error)
	CreateStory(story models.Story, epicID uint32) (uint32, error)
	DeleteEpic(epicID uint32) error
	DeleteStory(epicID, storyID uint32) error
	UpdateEpicStatus(epicID uint32, status models.Status) error
	UpdateStoryStatus(storyID uint32, status models.Status) error
}

// Navigator keeps the stack of open pages and executes actions.
type Navigator struct {
	pages   []Page
	prompts Prompts
	store   Store
}

// NewNavigator creates a navigator that starts on the home page.
func NewNavigator(store Store, prompts Prompts) *Navigator {
	return &Navigator{
		pages:   []Page{NewHomePage(store)},
		prompts: prompts,
		store:   store,
	}
}

// CurrentPage returns the top of the page stack, or nil once the user exited.
func (n *Navigator) CurrentPage() Page {
	if len(n.pages) == 0 {
		return nil
	}
	return n.pages[len(n.pages)-1]
}

// Depth returns the number of open pages.
func (n *Navigator) Depth() int {
	return len(n.pages)
}

func (n *Navigator) push(p Page) {
	n.pages = append(n.pages, p)
}

func (n *Navigator) pop() {
	if len(n.pages) > 0 {
		n.pages = n.pages[:len(n.pages)-1]
	}
}

// HandleAction runs action. A prompt the user cancels is not an error.
func (n *Navigator) HandleAction(action models.Action) error {
	err := n.handle(action)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return nil
}

func (n *Navigator) handle(action models.Action) error {
	switch action.Kind {
	case models.NavigateToEpicDetail:
		n.push(NewEpicDetail(n.store, action.EpicID))
	case models.NavigateToStoryDetail:
		n.push(NewStoryDetail(n.store, action.EpicID, action.StoryID))
	case models.NavigateToPreviousPage:
		n.pop()
	case models.CreateEpic:
		epic, err := n.prompts.CreateEpic()
		if err != nil {
			return err
		}
		if _, err := n.store.CreateEpic(epic); err != nil {
			return err
		}
	case models.UpdateEpicStatus:
		status, err := n.prompts.UpdateStatus()
		if err != nil {
			return err
		}
		return n.store.UpdateEpicStatus(action.EpicID, status)
	case models.DeleteEpic:
		ok, err := n.prompts.DeleteEpic()
		if err != nil || !ok {
			return err
		}
		if err := n.store.DeleteEpic(action.EpicID); err != nil {
			return err
		}
		// The epic page has nothing left to show.
		n.pop()
	case models.CreateStory:
		story, err := n.prompts.CreateStory()
		if err != nil {
			return err
		}
		if _, err := n.store.CreateStory(story, action.EpicID); err != nil {
			return err
		}
	case models.UpdateStoryStatus:
		status, err := n.prompts.UpdateStatus()
		if err != nil {
			return err
		}
		return n.store.UpdateStoryStatus(action.StoryID, status)
	case models.DeleteStory:
		ok, err := n.prompts.DeleteStory()
		if err != nil || !ok {
			return err
		}
		if err := n.store.DeleteStory(action.EpicID, action.StoryID); err != nil {
			return err
		}
		n.pop()
	case models.Exit:
		n.pages = nil
	default:
		return fmt.Errorf("unknown action kind %d", action.Kind)
	}
	return nil
}
