package models

import (
	"fmt"
	"sort"
)

// ProblemKind classifies an integrity violation.
type ProblemKind string

const (
	ProblemZeroID          ProblemKind = "zero_id"
	ProblemIDAboveCounter  ProblemKind = "id_above_counter"
	ProblemSharedID        ProblemKind = "shared_id"
	ProblemDanglingStory   ProblemKind = "dangling_story"
	ProblemMultipleOwners  ProblemKind = "multiple_owners"
	ProblemOrphanStory     ProblemKind = "orphan_story"
	ProblemInvalidStatus   ProblemKind = "invalid_status"
	ProblemDuplicateInEpic ProblemKind = "duplicate_in_epic"
)

// Problem is one invariant violation found by CheckIntegrity.
type Problem struct {
	Kind    ProblemKind `json:"kind"`
	ID      uint32      `json:"id"`
	Message string      `json:"message"`
}

func (p Problem) String() string {
	return fmt.Sprintf("%s: %s", p.Kind, p.Message)
}

// CheckIntegrity reports every invariant the document violates, sorted by id
// then kind. An empty result means the document is consistent.
func CheckIntegrity(d DBState) []Problem {
	var problems []Problem
	add := func(kind ProblemKind, id uint32, format string, args ...any) {
		problems = append(problems, Problem{Kind: kind, ID: id, Message: fmt.Sprintf(format, args...)})
	}

	checkID := func(id uint32, what string) {
		if id == 0 {
			add(ProblemZeroID, id, "%s uses reserved id 0", what)
		}
		if id > d.LastItemID {
			add(ProblemIDAboveCounter, id, "%s %d is above last_item_id %d", what, id, d.LastItemID)
		}
	}

	owners := make(map[uint32][]uint32)
	for epicID, epic := range d.Epics {
		checkID(epicID, "epic")
		if !epic.Status.Valid() {
			add(ProblemInvalidStatus, epicID, "epic %d has status %q", epicID, epic.Status)
		}
		if _, ok := d.Stories[epicID]; ok {
			add(ProblemSharedID, epicID, "id %d is both an epic and a story", epicID)
		}

		seen := make(map[uint32]bool, len(epic.Stories))
		for _, storyID := range epic.Stories {
			if seen[storyID] {
				add(ProblemDuplicateInEpic, storyID, "story %d listed twice in epic %d", storyID, epicID)
				continue
			}
			seen[storyID] = true
			owners[storyID] = append(owners[storyID], epicID)
			if _, ok := d.Stories[storyID]; !ok {
				add(ProblemDanglingStory, storyID, "epic %d references missing story %d", epicID, storyID)
			}
		}
	}

	for storyID, story := range d.Stories {
		checkID(storyID, "story")
		if !story.Status.Valid() {
			add(ProblemInvalidStatus, storyID, "story %d has status %q", storyID, story.Status)
		}
		if len(owners[storyID]) == 0 {
			add(ProblemOrphanStory, storyID, "story %d is not owned by any epic", storyID)
		}
	}

	for storyID, epics := range owners {
		if len(epics) > 1 {
			sort.Slice(epics, func(i, j int) bool { return epics[i] < epics[j] })
			add(ProblemMultipleOwners, storyID, "story %d is owned by epics %v", storyID, epics)
		}
	}

	sort.Slice(problems, func(i, j int) bool {
		if problems[i].ID != problems[j].ID {
			return problems[i].ID < problems[j].ID
		}
		return problems[i].Kind < problems[j].Kind
	})
	return problems
}
