package selftest

import (
	"bytes"
	"strings"
	"testing"
)

func TestCorpus(t *testing.T) {
	var buf bytes.Buffer
	if n := Run(&buf); n != 0 {
		t.Errorf("%d corpus cases failed:\n%s", n, buf.String())
	}
}

func TestCorpusSummaryLine(t *testing.T) {
	var buf bytes.Buffer
	Run(&buf)
	if !strings.Contains(buf.String(), "tests of") {
		t.Errorf("missing summary line in output:\n%s", buf.String())
	}
}
