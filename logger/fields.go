package logger

// Field keys shared by pipeline.Log, bootstrap and the config loader.
const (
	FieldComponent = "component"
	FieldStage     = "stage"
	FieldRunID     = "run_id"
	FieldIndex     = "index"
	FieldValue     = "value"
	FieldEvent     = "event"
	FieldError     = "error"
	FieldCount     = "count"
)

// Pull events recorded by pipeline.Log.
const (
	EventValue     = "value"
	EventExhausted = "exhausted"
	EventError     = "error"
)

// Fields builds a map[string]interface{} from alternating key-value pairs.
//
//	logger.Info("done", logger.Fields("stage", "parse", "count", 42))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// MergeWithError adds an error field to an existing map.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	fields[FieldError] = err.Error()
	return fields
}
