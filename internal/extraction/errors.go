package extraction

import "fmt"

// FormNotFoundError means the document has no recruitment-form marker.
// It is terminal: no field of such a document can be trusted.
type FormNotFoundError struct {
	Marker string
}

func (e *FormNotFoundError) Error() string {
	return fmt.Sprintf("form not found: document does not contain %q", e.Marker)
}

// ModelError represents a failure reaching or calling the text-generation endpoint
type ModelError struct {
	Message string
	Cause   error
}

func (e *ModelError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("model call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("model call failed: %s", e.Message)
}

func (e *ModelError) Unwrap() error {
	return e.Cause
}

// SchemaError represents a model response that cannot be read as the expected object
type SchemaError struct {
	Message  string
	Response string
	Cause    error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("schema error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("schema error: %s", e.Message)
}

func (e *SchemaError) Unwrap() error {
	return e.Cause
}
