// Package models defines the persisted document of the epic/story tracker.
//
// # Overview
//
// The whole tracker state lives in one document (DBState): a monotonic id
// counter plus two maps keyed by id, one for epics and one for stories. Epics
// own an ordered list of story ids. Ids are shared between epics and stories,
// start at 1 and are never reused, even after deletion.
//
// Example document:
//
//	{
//	  "last_item_id": 2,
//	  "epics": {
//	    "1": {"name": "Checkout", "description": "", "status": "Open", "stories": [2]}
//	  },
//	  "stories": {
//	    "2": {"name": "Card form", "description": "", "status": "InProgress"}
//	  }
//	}
//
// # Working copies
//
// Store operations never mutate a document that may still be observed by
// someone else. They call Clone, change the copy freely and hand the copy to
// the storage backend only once every check has passed.
//
// # Integrity
//
// CheckIntegrity reports invariant violations in a loaded document. It is a
// read-only diagnostic used by `jira check` and by the dashboard.
package models
