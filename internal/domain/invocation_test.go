package domain

import (
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestNewInvocation_DeadlineNormalization(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Duration
		want     time.Duration
	}{
		{"positive kept", 3 * time.Second, 3 * time.Second},
		{"zero is unbounded", 0, Unbounded},
		{"negative is unbounded", -time.Second, Unbounded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := NewInvocation("s", "/bin/true", nil, nil, tt.deadline)
			if inv.Deadline() != tt.want {
				t.Errorf("Deadline() = %v, want %v", inv.Deadline(), tt.want)
			}
		})
	}
}

func TestNewInvocation_CopiesInputs(t *testing.T) {
	args := []string{"--page-number", "1"}
	payload := []byte("pdf")
	inv := NewInvocation("s", "exe", args, payload, time.Second)

	args[0] = "mutated"
	payload[0] = 'X'

	if inv.Args()[0] != "--page-number" {
		t.Errorf("Args() changed after caller mutation: %v", inv.Args())
	}
	if string(inv.Payload()) != "pdf" {
		t.Errorf("Payload() changed after caller mutation: %q", inv.Payload())
	}

	got := inv.Args()
	got[0] = "again"
	if inv.Args()[0] != "--page-number" {
		t.Error("Args() exposes internal slice")
	}
}

func TestNewInvocation_Payload(t *testing.T) {
	if NewInvocation("s", "exe", nil, nil, 0).HasPayload() {
		t.Error("nil payload reported as present")
	}
	if !NewInvocation("s", "exe", nil, []byte{}, 0).HasPayload() {
		t.Error("empty non-nil payload reported as absent")
	}
}

func TestScriptLocator(t *testing.T) {
	dir := filepath.Join("/opt", "scripts")

	direct := NewScriptLocator(dir, "")
	inv := direct.Invocation("pdf_ext/pdf_ext.py", []string{"--stdin"}, nil, time.Second)
	if inv.Executable() != filepath.Join(dir, "pdf_ext/pdf_ext.py") {
		t.Errorf("Executable() = %q", inv.Executable())
	}
	if !reflect.DeepEqual(inv.Args(), []string{"--stdin"}) {
		t.Errorf("Args() = %v", inv.Args())
	}
	if inv.Script() != "pdf_ext/pdf_ext.py" {
		t.Errorf("Script() = %q", inv.Script())
	}

	interp := NewScriptLocator(dir, "python3")
	inv = interp.Invocation("txt_tag/txt_tag.py", []string{"--stdin"}, nil, time.Second)
	if inv.Executable() != "python3" {
		t.Errorf("Executable() = %q, want python3", inv.Executable())
	}
	want := []string{filepath.Join(dir, "txt_tag/txt_tag.py"), "--stdin"}
	if !reflect.DeepEqual(inv.Args(), want) {
		t.Errorf("Args() = %v, want %v", inv.Args(), want)
	}

	if got := interp.Path("/abs/script.py"); got != "/abs/script.py" {
		t.Errorf("Path() of absolute script = %q", got)
	}
}
