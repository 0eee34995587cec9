package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/taskflow/internal/utils"
)

//go:embed tasks.schema.json
var tasksSchema []byte

const tasksSchemaURL = "tasks.schema.json"

// TasksSchema returns the JSON Schema the persisted blob must satisfy.
func TasksSchema() []byte {
	return bytes.Clone(tasksSchema)
}

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(tasksSchemaURL, bytes.NewReader(tasksSchema)); err != nil {
		return nil, fmt.Errorf("add tasks schema: %w", err)
	}
	schema, err := compiler.Compile(tasksSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile tasks schema: %w", err)
	}
	return schema, nil
})

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // dotted path to the error location, e.g. "[2].text"
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// MarshalTasks encodes tasks as the persisted JSON array.
// A nil slice encodes as [] rather than null.
func MarshalTasks(tasks []Task) ([]byte, error) {
	if tasks == nil {
		tasks = []Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return data, nil
}

// UnmarshalTasks decodes and validates a persisted JSON array.
// Empty input and JSON null decode to an empty collection.
// Schema violations and duplicate ids are reported as *ValidationError.
func UnmarshalTasks(data []byte) ([]Task, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse tasks: trailing data after array")
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}

	seen := make(map[ID]int, len(tasks))
	for i, t := range tasks {
		if first, ok := seen[t.ID]; ok {
			return nil, &ValidationError{
				Path: fmt.Sprintf("[%d].id", i),
				Err:  fmt.Errorf("duplicate id %d (first at [%d])", t.ID, first),
			}
		}
		seen[t.ID] = i
	}

	return tasks, nil
}

func validateDocument(doc interface{}) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	return firstLeaf(ve)
}

// firstLeaf returns the first leaf cause of a schema error; the leaves carry
// the specific messages ("missing properties", "expected boolean").
func firstLeaf(err *jsonschema.ValidationError) *ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return &ValidationError{
		Path: utils.JSONPointerToPath(err.InstanceLocation),
		Err:  errors.New(err.Message),
	}
}
