package tlog

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

// Test that trimNewline() works as expected
func TestTrimNewline(t *testing.T) {
	testTable := []struct {
		in   string
		want string
	}{
		{"...\n", "..."},
		{"\n...\n", "\n..."},
		{"", ""},
		{"\n", ""},
		{"\n\n", "\n"},
		{"   ", "   "},
	}
	for _, v := range testTable {
		have := trimNewline(v.in)
		if v.want != have {
			t.Errorf("want=%q have=%q", v.want, have)
		}
	}
}

func TestToggle(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Debug.Enabled = false
	Debug.Printf("hidden %d", 1)
	if buf.Len() != 0 {
		t.Errorf("disabled logger wrote %q", buf.String())
	}
	Info.Printf("shown %d\n", 2)
	if !strings.Contains(buf.String(), "shown 2") {
		t.Errorf("enabled logger wrote %q", buf.String())
	}
	if strings.HasSuffix(buf.String(), "\n\n") {
		t.Errorf("double newline: %q", buf.String())
	}
}

func TestJSONDump(t *testing.T) {
	s := JSONDump(struct{ A int }{42})
	if !strings.Contains(s, `"A": 42`) {
		t.Errorf("have %q", s)
	}
}
