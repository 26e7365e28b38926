package domain

import (
	"math"
	"path/filepath"
	"time"
)

// Unbounded is the deadline used when a caller asks for no timeout.
const Unbounded = time.Duration(math.MaxInt64)

// Invocation describes a single run of an external script.
// It is immutable; slices handed to NewInvocation are copied.
type Invocation struct {
	script     string
	executable string
	args       []string
	payload    []byte
	deadline   time.Duration
}

// NewInvocation builds an Invocation. A deadline of zero or less is
// normalized to Unbounded. A nil payload means nothing is written to stdin.
func NewInvocation(script, executable string, args []string, payload []byte, deadline time.Duration) Invocation {
	if deadline <= 0 {
		deadline = Unbounded
	}
	inv := Invocation{
		script:     script,
		executable: executable,
		args:       append([]string(nil), args...),
		deadline:   deadline,
	}
	if payload != nil {
		inv.payload = append([]byte{}, payload...)
	}
	return inv
}

// Script returns the logical script name, used for logs and metrics.
func (i Invocation) Script() string { return i.script }

// Executable returns the program that is started.
func (i Invocation) Executable() string { return i.executable }

// Args returns a copy of the argument vector (excluding the executable).
func (i Invocation) Args() []string { return append([]string(nil), i.args...) }

// Payload returns the stdin payload, or nil when stdin is not used.
func (i Invocation) Payload() []byte { return i.payload }

// HasPayload reports whether the invocation writes to stdin.
func (i Invocation) HasPayload() bool { return i.payload != nil }

// Deadline returns the normalized deadline.
func (i Invocation) Deadline() time.Duration { return i.deadline }

// ScriptLocator resolves script names under a base directory and knows the
// interpreter (if any) used to run them. It is supplied once at
// construction and never changes.
type ScriptLocator struct {
	dir         string
	interpreter string
}

// NewScriptLocator returns a locator for scripts under dir. When interpreter
// is empty the script path itself is executed.
func NewScriptLocator(dir, interpreter string) ScriptLocator {
	return ScriptLocator{dir: dir, interpreter: interpreter}
}

// Dir returns the base script directory.
func (l ScriptLocator) Dir() string { return l.dir }

// Interpreter returns the interpreter, or "" when scripts run directly.
func (l ScriptLocator) Interpreter() string { return l.interpreter }

// Path returns the absolute or dir-relative path of a script.
func (l ScriptLocator) Path(script string) string {
	if filepath.IsAbs(script) || l.dir == "" {
		return script
	}
	return filepath.Join(l.dir, script)
}

// Invocation builds the Invocation for script with the given arguments.
func (l ScriptLocator) Invocation(script string, args []string, payload []byte, deadline time.Duration) Invocation {
	path := l.Path(script)
	if l.interpreter == "" {
		return NewInvocation(script, path, args, payload, deadline)
	}
	full := make([]string, 0, len(args)+1)
	full = append(full, path)
	full = append(full, args...)
	return NewInvocation(script, l.interpreter, full, payload, deadline)
}

// PDFSource is where the extraction script reads the document from.
// Exactly one of Path or Data is expected; Path wins when both are set.
type PDFSource struct {
	Path string
	Data []byte
}

// FromFile reports whether the script should read the document from Path.
func (s PDFSource) FromFile() bool { return s.Path != "" }
