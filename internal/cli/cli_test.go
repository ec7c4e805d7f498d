package cli

import (
	"bytes"
	"testing"
)

func TestExitCodes(t *testing.T) {
	if ExitOK != 0 || ExitError != 1 || ExitWarning != 2 {
		t.Errorf("exit codes = %d, %d, %d; want 0, 1, 2", ExitOK, ExitError, ExitWarning)
	}
}

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s:%d:%d: %s", "Main.view.xml", 2, 4, "error")

	got := buf.String()
	want := "Main.view.xml:2:4: error"
	if got != want {
		t.Errorf("Writef() = %q, want %q", got, want)
	}
}

func TestWriteln(t *testing.T) {
	tests := []struct {
		name string
		args []any
		want string
	}{
		{
			name: "no args",
			args: nil,
			want: "\n",
		},
		{
			name: "single arg",
			args: []any{"ui5check: no files specified"},
			want: "ui5check: no files specified\n",
		},
		{
			name: "multiple args",
			args: []any{"checked", 3, "files"},
			want: "checked 3 files\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			Writeln(&buf, tc.args...)

			if got := buf.String(); got != tc.want {
				t.Errorf("Writeln() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	Write(&buf, "--- a\n+++ b\n")

	if got, want := buf.String(), "--- a\n+++ b\n"; got != want {
		t.Errorf("Write() = %q, want %q", got, want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestWritersIgnoreErrors(t *testing.T) {
	// None of these may panic on a broken writer.
	Writef(failingWriter{}, "%d", 1)
	Writeln(failingWriter{}, "x")
	Write(failingWriter{}, "x")
}
