package db

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mschirtzinger/jira/internal/models"
)

func sampleState() models.DBState {
	state := models.NewDBState()
	state.LastItemID = 5
	state.Epics[1] = models.Epic{Name: "Checkout", Description: "payments", Status: models.InProgress, Stories: []uint32{4, 2}}
	state.Epics[3] = models.NewEpic("Empty", "")
	state.Stories[2] = models.Story{Name: "Card form", Description: "with \"quotes\"", Status: models.Resolved}
	state.Stories[4] = models.Story{Name: "Receipts", Description: "", Status: models.Closed}
	return state
}

func allCodecs() []Codec {
	return []Codec{JSONCodec{}, YAMLCodec{}, TOMLCodec{}}
}

func TestCodec_RoundTrip(t *testing.T) {
	docs := map[string]models.DBState{
		"empty":  models.NewDBState(),
		"sample": sampleState(),
	}

	for _, codec := range allCodecs() {
		for name, doc := range docs {
			t.Run(codec.Name()+"/"+name, func(t *testing.T) {
				data, err := codec.Marshal(doc)
				if err != nil {
					t.Fatalf("Marshal() failed: %v", err)
				}
				got, err := codec.Unmarshal(data)
				if err != nil {
					t.Fatalf("Unmarshal() failed: %v\n%s", err, data)
				}
				if diff := cmp.Diff(doc, got); diff != "" {
					t.Errorf("round trip differs (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestCodec_NonASCIIText(t *testing.T) {
	doc := models.NewDBState()
	doc.LastItemID = 2
	doc.Epics[1] = models.Epic{Name: "Café", Description: "Größe 日本語 ✓", Status: models.Open, Stories: []uint32{2}}
	doc.Stories[2] = models.Story{Name: "naïve", Description: "emoji 🚀", Status: models.Closed}

	for _, codec := range allCodecs() {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := codec.Marshal(doc)
			if err != nil {
				t.Fatalf("Marshal() failed: %v", err)
			}
			got, err := codec.Unmarshal(data)
			if err != nil {
				t.Fatalf("Unmarshal() failed: %v\n%s", err, data)
			}
			if diff := cmp.Diff(doc, got); diff != "" {
				t.Errorf("round trip differs (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCodec_RejectsInvalidUTF8(t *testing.T) {
	epicName := models.NewDBState()
	epicName.LastItemID = 1
	epicName.Epics[1] = models.NewEpic("caf\xe9", "")

	storyDesc := models.NewDBState()
	storyDesc.LastItemID = 2
	storyDesc.Epics[1] = models.Epic{Name: "e", Status: models.Open, Stories: []uint32{2}}
	storyDesc.Stories[2] = models.NewStory("s", "bad \xff\xfe bytes")

	docs := map[string]models.DBState{
		"epic name":         epicName,
		"story description": storyDesc,
	}

	for _, codec := range allCodecs() {
		for name, doc := range docs {
			t.Run(codec.Name()+"/"+name, func(t *testing.T) {
				data, err := codec.Marshal(doc)
				if !errors.Is(err, ErrInvalidText) {
					t.Fatalf("Marshal() error = %v, want ErrInvalidText\n%s", err, data)
				}
				if data != nil {
					t.Errorf("Marshal() returned data alongside the error: %q", data)
				}
			})
		}
	}
}

func TestJSONCodec_WireFormat(t *testing.T) {
	data, err := JSONCodec{}.Marshal(sampleState())
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	text := string(data)

	for _, want := range []string{
		`"last_item_id": 5`,
		`"epics": {`,
		`"stories": {`,
		`"1": {`,
		`"status": "InProgress"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("encoded document missing %s:\n%s", want, text)
		}
	}
	if strings.Contains(text, `"\"InProgress\""`) {
		t.Error("status must not be encoded in quoted-debug form")
	}
}

func TestJSONCodec_EmptyDocumentHasAllFields(t *testing.T) {
	data, err := JSONCodec{}.Marshal(models.DBState{})
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}
	text := string(data)
	for _, field := range []string{`"last_item_id": 0`, `"epics": {}`, `"stories": {}`} {
		if !strings.Contains(text, field) {
			t.Errorf("encoded empty document missing %s:\n%s", field, text)
		}
	}
}

func TestJSONCodec_Decode(t *testing.T) {
	input := `{"last_item_id":2,"epics":{"1":{"name":"E","description":"d","status":"Open","stories":[2]}},"stories":{"2":{"name":"S","description":"","status":"Closed"}},"extra":true}`

	got, err := JSONCodec{}.Unmarshal([]byte(input))
	if err != nil {
		t.Fatalf("Unmarshal() failed: %v", err)
	}

	want := models.NewDBState()
	want.LastItemID = 2
	want.Epics[1] = models.Epic{Name: "E", Description: "d", Status: models.Open, Stories: []uint32{2}}
	want.Stories[2] = models.Story{Name: "S", Status: models.Closed}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded document differs (-want +got):\n%s", diff)
	}
}

func TestJSONCodec_DecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{`},
		{"empty", ``},
		{"missing last_item_id", `{"epics":{},"stories":{}}`},
		{"missing epics", `{"last_item_id":0,"stories":{}}`},
		{"missing stories", `{"last_item_id":0,"epics":{}}`},
		{"null epics", `{"last_item_id":0,"epics":null,"stories":{}}`},
		{"negative counter", `{"last_item_id":-1,"epics":{},"stories":{}}`},
		{"counter is string", `{"last_item_id":"1","epics":{},"stories":{}}`},
		{"non-numeric key", `{"last_item_id":1,"epics":{"one":{"name":"","description":"","status":"Open","stories":[]}},"stories":{}}`},
		{"zero key", `{"last_item_id":1,"epics":{},"stories":{"0":{"name":"","description":"","status":"Open"}}}`},
		{"epic missing stories", `{"last_item_id":1,"epics":{"1":{"name":"","description":"","status":"Open"}},"stories":{}}`},
		{"story missing name", `{"last_item_id":1,"epics":{},"stories":{"1":{"description":"","status":"Open"}}}`},
		{"unknown status", `{"last_item_id":1,"epics":{},"stories":{"1":{"name":"","description":"","status":"Done"}}}`},
		{"quoted-debug status", `{"last_item_id":1,"epics":{},"stories":{"1":{"name":"","description":"","status":"\"Open\""}}}`},
		{"stories not integers", `{"last_item_id":1,"epics":{"1":{"name":"","description":"","status":"Open","stories":["a"]}},"stories":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := (JSONCodec{}).Unmarshal([]byte(tt.input)); err == nil {
				t.Errorf("Unmarshal(%s) should fail", tt.input)
			}
		})
	}
}

func TestYAMLCodec_DecodeErrors(t *testing.T) {
	inputs := map[string]string{
		"missing stories": "last_item_id: 0\nepics: {}\n",
		"unknown status":  "last_item_id: 1\nepics: {}\nstories:\n  \"1\": {name: a, description: b, status: Later}\n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := (YAMLCodec{}).Unmarshal([]byte(input)); err == nil {
				t.Errorf("Unmarshal() should fail for:\n%s", input)
			}
		})
	}
}

func TestTOMLCodec_DecodeErrors(t *testing.T) {
	inputs := map[string]string{
		"missing epics": "last_item_id = 0\n[stories]\n",
		"bad syntax":    "last_item_id = \n",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			if _, err := (TOMLCodec{}).Unmarshal([]byte(input)); err == nil {
				t.Errorf("Unmarshal() should fail for:\n%s", input)
			}
		})
	}
}

func TestCodecForPath(t *testing.T) {
	tests := map[string]string{
		"data/db.json": "json",
		"db.YAML":      "yaml",
		"db.yml":       "yaml",
		"db.toml":      "toml",
		"db":           "json",
	}
	for path, want := range tests {
		if got := CodecForPath(path).Name(); got != want {
			t.Errorf("CodecForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"json", "yaml", "yml", "TOML"} {
		if _, err := CodecByName(name); err != nil {
			t.Errorf("CodecByName(%q) failed: %v", name, err)
		}
	}
	if _, err := CodecByName("xml"); err == nil {
		t.Error("CodecByName(xml) should fail")
	}
}
