package config

import (
	"bytes"
	"os"
	"testing"
)

func TestExitfWritesAndExits(t *testing.T) {
	var buf bytes.Buffer
	code := -1
	stderr, exit = &buf, func(c int) { code = c }
	t.Cleanup(func() { stderr, exit = os.Stderr, os.Exit })

	Exitf("fatal: %s", "something broke")

	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if buf.String() != "fatal: something broke\n" {
		t.Fatalf("stderr = %q", buf.String())
	}
}
