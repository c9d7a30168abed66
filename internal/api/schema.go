package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const collectionSchemaURL = "https://taskview.local/tasks.schema.json"

// collectionSchema is the shape GET /tasks must return. Anything beyond
// these keys is passed through untouched.
const collectionSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["text"],
    "properties": {
      "_id": {"type": ["string", "number"]},
      "id": {"type": ["string", "number"]},
      "text": {"type": "string"},
      "completed": {"type": ["boolean", "null"]}
    },
    "anyOf": [
      {"required": ["_id"]},
      {"required": ["id"]}
    ]
  }
}`

var tasksSchema = jsonschema.MustCompileString(collectionSchemaURL, collectionSchema)

// validateCollection checks a list response body against the collection
// schema and reports the first offending location.
func validateCollection(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if err := tasksSchema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidResponse, firstCause(err))
	}
	return nil
}

func firstCause(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return fmt.Sprintf("%s: %s", loc, ve.Message)
}
