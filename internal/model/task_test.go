package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decodeMap(t *testing.T, b []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return m
}

func TestUnmarshalTask(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantID  string
		numeric bool
		text    string
		done    bool
		extra   []string
	}{
		{
			name:   "mongo id",
			in:     `{"_id":"65a1","text":"buy milk","completed":true,"__v":0}`,
			wantID: "65a1", text: "buy milk", done: true, extra: []string{"__v"},
		},
		{
			name:   "numeric id",
			in:     `{"id":1,"text":"buy milk","completed":false}`,
			wantID: "1", numeric: true, text: "buy milk",
		},
		{
			name:   "completed missing",
			in:     `{"id":"a","text":"x"}`,
			wantID: "a", text: "x",
		},
		{
			name:   "completed null",
			in:     `{"id":"a","text":"x","completed":null}`,
			wantID: "a", text: "x",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var task Task
			if err := json.Unmarshal([]byte(tt.in), &task); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if task.ID.String() != tt.wantID || task.ID.numeric != tt.numeric {
				t.Errorf("id = %+v, want %q numeric=%v", task.ID, tt.wantID, tt.numeric)
			}
			if task.Text != tt.text || task.Completed != tt.done {
				t.Errorf("task = %+v", task)
			}
			var keys []string
			for k := range task.Extra {
				keys = append(keys, k)
			}
			if len(keys) != len(tt.extra) {
				t.Errorf("extra keys = %v, want %v", keys, tt.extra)
			}
		})
	}
}

func TestUnmarshalTaskRejects(t *testing.T) {
	for _, in := range []string{
		`{"id":1}`,
		`{"id":1,"text":5}`,
		`{"id":true,"text":"x"}`,
		`{"_id":"","text":"x"}`,
		`{"id":1,"text":"x","completed":"yes"}`,
		`null`,
		`[]`,
	} {
		var task Task
		if err := json.Unmarshal([]byte(in), &task); err == nil {
			t.Errorf("unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestNewTaskBody(t *testing.T) {
	b, err := json.Marshal(NewTask("wash car"))
	if err != nil {
		t.Fatal(err)
	}
	got := decodeMap(t, b)
	want := map[string]any{"text": "wash car", "completed": false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("body = %v, want %v", got, want)
	}
}

func TestToggledKeepsEverythingElse(t *testing.T) {
	var task Task
	in := `{"_id":"65a1","text":"buy milk","completed":false,"createdAt":"2024-01-01T00:00:00Z","__v":0}`
	if err := json.Unmarshal([]byte(in), &task); err != nil {
		t.Fatal(err)
	}

	toggled := task.Toggled()
	if task.Completed {
		t.Fatal("Toggled mutated the receiver")
	}

	b, err := json.Marshal(toggled)
	if err != nil {
		t.Fatal(err)
	}
	got := decodeMap(t, b)
	want := decodeMap(t, []byte(in))
	want["completed"] = true
	if !reflect.DeepEqual(got, want) {
		t.Errorf("body = %v, want %v", got, want)
	}
}

func TestToggledNumericID(t *testing.T) {
	var task Task
	if err := json.Unmarshal([]byte(`{"id":1,"text":"buy milk","completed":false}`), &task); err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(task.Toggled())
	if err != nil {
		t.Fatal(err)
	}
	got := decodeMap(t, b)
	want := map[string]any{"id": float64(1), "text": "buy milk", "completed": true}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("body = %v, want %v", got, want)
	}
}

func TestIDEqual(t *testing.T) {
	if !NumericID(1).Equal(ID{value: "1", numeric: true, key: "id"}) {
		t.Error("numeric ids with different keys should be equal")
	}
	if StringID("1").Equal(NumericID(1)) {
		t.Error("string and numeric ids should differ")
	}
	if !(ID{}).IsZero() {
		t.Error("zero ID should report IsZero")
	}
}
