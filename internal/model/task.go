package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Keys the task store is known to use for the identifier. The first one
// is what a fresh Task is encoded with.
const (
	keyMongoID = "_id"
	keyID      = "id"
	keyText    = "text"
	keyDone    = "completed"
)

// ID is the server-assigned task identifier. The client never creates
// one; it only carries what the list endpoint returned, in the same JSON
// kind (string or number) and under the same key.
type ID struct {
	value   string
	numeric bool
	key     string
}

// StringID builds an ID from a string identifier.
func StringID(s string) ID { return ID{value: s} }

// NumericID builds an ID from a numeric identifier.
func NumericID(n int64) ID { return ID{value: strconv.FormatInt(n, 10), numeric: true} }

// String is the identifier as it appears in a resource path.
func (id ID) String() string { return id.value }

// IsZero reports whether no identifier has been assigned.
func (id ID) IsZero() bool { return id.value == "" }

// Equal compares identifiers by value and kind, ignoring the source key.
func (id ID) Equal(other ID) bool {
	return id.value == other.value && id.numeric == other.numeric
}

func (id ID) rawJSON() (json.RawMessage, error) {
	if id.numeric {
		return json.RawMessage(id.value), nil
	}
	return json.Marshal(id.value)
}

func parseID(key string, raw json.RawMessage) (ID, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ID{}, fmt.Errorf("%s: empty", key)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ID{}, fmt.Errorf("%s: %w", key, err)
		}
		if s == "" {
			return ID{}, fmt.Errorf("%s: empty", key)
		}
		return ID{value: s, key: key}, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return ID{}, fmt.Errorf("%s: not a string or number", key)
	}
	return ID{value: n.String(), numeric: true, key: key}, nil
}

// Task is a single to-do entry as exchanged with the task store.
type Task struct {
	ID        ID
	Text      string
	Completed bool

	// Extra holds fields the server sent that the client does not
	// interpret. They are sent back unchanged on update.
	Extra map[string]json.RawMessage
}

// NewTask is the create payload for a fresh task.
func NewTask(text string) Task {
	return Task{Text: text, Completed: false}
}

// Toggled returns a copy with Completed inverted and every other field
// unchanged.
func (t Task) Toggled() Task {
	out := t
	out.Completed = !t.Completed
	if t.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(t.Extra))
		for k, v := range t.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

var errMissingText = errors.New("text: missing")

func (t Task) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(t.Extra)+3)
	for k, v := range t.Extra {
		fields[k] = v
	}
	if !t.ID.IsZero() {
		raw, err := t.ID.rawJSON()
		if err != nil {
			return nil, fmt.Errorf("encode id: %w", err)
		}
		key := t.ID.key
		if key == "" {
			key = keyMongoID
		}
		fields[key] = raw
	}
	text, err := json.Marshal(t.Text)
	if err != nil {
		return nil, fmt.Errorf("encode text: %w", err)
	}
	fields[keyText] = text
	fields[keyDone] = json.RawMessage(strconv.FormatBool(t.Completed))
	return json.Marshal(fields)
}

func (t *Task) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return fmt.Errorf("task: %w", err)
	}
	if fields == nil {
		return errors.New("task: null")
	}

	var out Task
	for _, key := range []string{keyMongoID, keyID} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		id, err := parseID(key, raw)
		if err != nil {
			return fmt.Errorf("task: %w", err)
		}
		out.ID = id
		delete(fields, key)
		break
	}

	raw, ok := fields[keyText]
	if !ok {
		return fmt.Errorf("task: %w", errMissingText)
	}
	if err := json.Unmarshal(raw, &out.Text); err != nil {
		return fmt.Errorf("task: text: %w", err)
	}
	delete(fields, keyText)

	if raw, ok := fields[keyDone]; ok {
		if !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			if err := json.Unmarshal(raw, &out.Completed); err != nil {
				return fmt.Errorf("task: completed: %w", err)
			}
		}
		delete(fields, keyDone)
	}

	if len(fields) > 0 {
		out.Extra = fields
	}
	*t = out
	return nil
}
