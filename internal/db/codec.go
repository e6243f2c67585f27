package db

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/mschirtzinger/jira/internal/models"
	"gopkg.in/yaml.v3"
)

// Codec converts a document to and from its persisted text form.
//
// All codecs share one wire schema: three required top-level fields
// (last_item_id, epics, stories), maps keyed by decimal id strings, and every
// entity field required. Unknown fields are ignored.
type Codec interface {
	Name() string
	Marshal(doc models.DBState) ([]byte, error)
	Unmarshal(data []byte) (models.DBState, error)
}

// documentFile is the wire form of models.DBState. Pointers distinguish a
// missing field from a zero value.
type documentFile struct {
	LastItemID *uint32              `json:"last_item_id" yaml:"last_item_id" toml:"last_item_id"`
	Epics      map[string]epicFile  `json:"epics" yaml:"epics" toml:"epics"`
	Stories    map[string]storyFile `json:"stories" yaml:"stories" toml:"stories"`
}

type epicFile struct {
	Name        *string   `json:"name" yaml:"name" toml:"name"`
	Description *string   `json:"description" yaml:"description" toml:"description"`
	Status      *string   `json:"status" yaml:"status" toml:"status"`
	Stories     *[]uint32 `json:"stories" yaml:"stories" toml:"stories"`
}

type storyFile struct {
	Name        *string `json:"name" yaml:"name" toml:"name"`
	Description *string `json:"description" yaml:"description" toml:"description"`
	Status      *string `json:"status" yaml:"status" toml:"status"`
}

// checkText reports the first name or description that is not valid UTF-8.
func checkText(doc models.DBState) error {
	for id, epic := range doc.Epics {
		if err := validText(epic.Name, epic.Description); err != nil {
			return fmt.Errorf("epic %d: %w", id, err)
		}
	}
	for id, story := range doc.Stories {
		if err := validText(story.Name, story.Description); err != nil {
			return fmt.Errorf("story %d: %w", id, err)
		}
	}
	return nil
}

func validText(name, description string) error {
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: name is not valid UTF-8", ErrInvalidText)
	}
	if !utf8.ValidString(description) {
		return fmt.Errorf("%w: description is not valid UTF-8", ErrInvalidText)
	}
	return nil
}

func toWire(doc models.DBState) (documentFile, error) {
	if err := checkText(doc); err != nil {
		return documentFile{}, err
	}
	last := doc.LastItemID
	out := documentFile{
		LastItemID: &last,
		Epics:      make(map[string]epicFile, len(doc.Epics)),
		Stories:    make(map[string]storyFile, len(doc.Stories)),
	}
	for id, epic := range doc.Epics {
		name, desc, status := epic.Name, epic.Description, string(epic.Status)
		stories := make([]uint32, len(epic.Stories))
		copy(stories, epic.Stories)
		out.Epics[formatID(id)] = epicFile{Name: &name, Description: &desc, Status: &status, Stories: &stories}
	}
	for id, story := range doc.Stories {
		name, desc, status := story.Name, story.Description, string(story.Status)
		out.Stories[formatID(id)] = storyFile{Name: &name, Description: &desc, Status: &status}
	}
	return out, nil
}

func fromWire(w documentFile) (models.DBState, error) {
	if w.LastItemID == nil {
		return models.DBState{}, fmt.Errorf("missing field last_item_id")
	}
	if w.Epics == nil {
		return models.DBState{}, fmt.Errorf("missing field epics")
	}
	if w.Stories == nil {
		return models.DBState{}, fmt.Errorf("missing field stories")
	}

	doc := models.DBState{
		LastItemID: *w.LastItemID,
		Epics:      make(map[uint32]models.Epic, len(w.Epics)),
		Stories:    make(map[uint32]models.Story, len(w.Stories)),
	}

	for key, e := range w.Epics {
		id, err := parseID(key)
		if err != nil {
			return models.DBState{}, fmt.Errorf("epics: %w", err)
		}
		if e.Name == nil || e.Description == nil || e.Status == nil || e.Stories == nil {
			return models.DBState{}, fmt.Errorf("epic %s: missing one of name, description, status, stories", key)
		}
		status, err := decodeStatus(*e.Status)
		if err != nil {
			return models.DBState{}, fmt.Errorf("epic %s: %w", key, err)
		}
		stories := make([]uint32, len(*e.Stories))
		copy(stories, *e.Stories)
		doc.Epics[id] = models.Epic{Name: *e.Name, Description: *e.Description, Status: status, Stories: stories}
	}

	for key, s := range w.Stories {
		id, err := parseID(key)
		if err != nil {
			return models.DBState{}, fmt.Errorf("stories: %w", err)
		}
		if s.Name == nil || s.Description == nil || s.Status == nil {
			return models.DBState{}, fmt.Errorf("story %s: missing one of name, description, status", key)
		}
		status, err := decodeStatus(*s.Status)
		if err != nil {
			return models.DBState{}, fmt.Errorf("story %s: %w", key, err)
		}
		doc.Stories[id] = models.Story{Name: *s.Name, Description: *s.Description, Status: status}
	}

	return doc, nil
}

// decodeStatus accepts only the exact persisted tokens.
func decodeStatus(token string) (models.Status, error) {
	status := models.Status(token)
	if !status.Valid() {
		return "", fmt.Errorf("unknown status %q", token)
	}
	return status, nil
}

func formatID(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

func parseID(key string) (uint32, error) {
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id key %q", key)
	}
	return uint32(n), nil
}

// JSONCodec is the default encoding.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(doc models.DBState) ([]byte, error) {
	w, err := toWire(doc)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (JSONCodec) Unmarshal(data []byte) (models.DBState, error) {
	var w documentFile
	if err := json.Unmarshal(data, &w); err != nil {
		return models.DBState{}, err
	}
	return fromWire(w)
}

// YAMLCodec stores the document as YAML.
type YAMLCodec struct{}

func (YAMLCodec) Name() string { return "yaml" }

func (YAMLCodec) Marshal(doc models.DBState) ([]byte, error) {
	w, err := toWire(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(w); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAMLCodec) Unmarshal(data []byte) (models.DBState, error) {
	var w documentFile
	if err := yaml.Unmarshal(data, &w); err != nil {
		return models.DBState{}, err
	}
	return fromWire(w)
}

// TOMLCodec stores the document as TOML. Epics and stories become
// [epics.N] and [stories.N] tables.
type TOMLCodec struct{}

func (TOMLCodec) Name() string { return "toml" }

func (TOMLCodec) Marshal(doc models.DBState) ([]byte, error) {
	w, err := toWire(doc)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(w)
}

func (TOMLCodec) Unmarshal(data []byte) (models.DBState, error) {
	var w documentFile
	if err := toml.Unmarshal(data, &w); err != nil {
		return models.DBState{}, err
	}
	return fromWire(w)
}

// CodecForPath picks a codec from the file extension. Anything that is not
// YAML or TOML is treated as JSON.
func CodecForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAMLCodec{}
	case ".toml":
		return TOMLCodec{}
	default:
		return JSONCodec{}
	}
}

// CodecByName returns the codec registered under name ("json", "yaml", "toml").
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSONCodec{}, nil
	case "yaml", "yml":
		return YAMLCodec{}, nil
	case "toml":
		return TOMLCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml or toml)", name)
	}
}
