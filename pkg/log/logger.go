package log

import "time"

// Logger is the structured logger every storytext component receives at
// construction. ZerologAdapter and NoopLogger implement it.
type Logger interface {
	// Debug logs per-run detail: script arguments, pids, run boundaries.
	Debug(msg string, fields ...Field)

	// Info logs completed work, such as a tagged edition or a processed job.
	Info(msg string, fields ...Field)

	// Warn logs a soft failure that degrades the result to empty output.
	Warn(msg string, fields ...Field)

	// Error logs a failure that needs an operator, such as a script that
	// cannot be started.
	Error(msg string, fields ...Field)
}

// Field is one key-value pair attached to a log message.
type Field struct {
	Key   string
	Value interface{}
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Strings creates a string slice field, used for argument vectors.
func Strings(key string, value []string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an int field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a bool field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Err creates an error field. Adapters log it under the "error" key.
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}

// Any creates a field for values without a dedicated constructor, such as
// a decoded job or a config struct.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
