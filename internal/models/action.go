package models

import "fmt"

// ActionKind identifies what the UI asked the navigator to do.
type ActionKind int

const (
	NavigateToEpicDetail ActionKind = iota
	NavigateToStoryDetail
	NavigateToPreviousPage
	CreateEpic
	UpdateEpicStatus
	DeleteEpic
	CreateStory
	UpdateStoryStatus
	DeleteStory
	Exit
)

// String returns a human-readable representation of the kind.
func (k ActionKind) String() string {
	switch k {
	case NavigateToEpicDetail:
		return "navigate_to_epic_detail"
	case NavigateToStoryDetail:
		return "navigate_to_story_detail"
	case NavigateToPreviousPage:
		return "navigate_to_previous_page"
	case CreateEpic:
		return "create_epic"
	case UpdateEpicStatus:
		return "update_epic_status"
	case DeleteEpic:
		return "delete_epic"
	case CreateStory:
		return "create_story"
	case UpdateStoryStatus:
		return "update_story_status"
	case DeleteStory:
		return "delete_story"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Action is a command produced by a page from user input.
// EpicID and StoryID are 0 when the kind does not use them.
type Action struct {
	Kind    ActionKind
	EpicID  uint32
	StoryID uint32
}

func (a Action) String() string {
	switch a.Kind {
	case NavigateToStoryDetail, DeleteStory:
		return fmt.Sprintf("%s(epic=%d, story=%d)", a.Kind, a.EpicID, a.StoryID)
	case UpdateStoryStatus:
		return fmt.Sprintf("%s(story=%d)", a.Kind, a.StoryID)
	case NavigateToEpicDetail, UpdateEpicStatus, DeleteEpic, CreateStory:
		return fmt.Sprintf("%s(epic=%d)", a.Kind, a.EpicID)
	default:
		return a.Kind.String()
	}
}
