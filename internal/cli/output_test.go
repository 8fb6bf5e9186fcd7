package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newTestOutput(jsonMode bool) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var w, errW bytes.Buffer
	return &Output{jsonMode: jsonMode, w: &w, errW: &errW}, &w, &errW
}

func TestOutput_TableMode(t *testing.T) {
	out, w, errW := newTestOutput(false)

	out.Print(
		[]string{"LOT_ID", "REV"},
		[][]string{{"lot-1", "3-abc"}},
		nil,
	)

	lines := strings.Split(strings.TrimRight(w.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("table lines = %d, want header, separator and one row:\n%s", len(lines), w.String())
	}
	if !strings.HasPrefix(lines[0], "LOT_ID") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "------") {
		t.Errorf("separator line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "lot-1") || !strings.Contains(lines[2], "3-abc") {
		t.Errorf("data line = %q", lines[2])
	}
	if errW.Len() != 0 {
		t.Errorf("table output must not write to stderr: %q", errW.String())
	}
}

func TestOutput_JSONMode(t *testing.T) {
	out, w, _ := newTestOutput(true)

	out.Print(nil, nil, map[string]string{"lot_id": "lot-1"})

	var decoded map[string]string
	if err := json.Unmarshal(w.Bytes(), &decoded); err != nil {
		t.Fatalf("stdout is not valid json: %v", err)
	}
	if decoded["lot_id"] != "lot-1" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestOutput_MessagesGoToStderr(t *testing.T) {
	out, w, errW := newTestOutput(false)

	out.Success("done")
	out.Error("boom")

	if w.Len() != 0 {
		t.Errorf("messages must not pollute stdout: %q", w.String())
	}
	if got := errW.String(); got != "done\nError: boom\n" {
		t.Errorf("stderr = %q", got)
	}
}
