package diag

import (
	"bytes"
	"log"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	LogSink{Prefix: "smooth: "}.Emit("bad size")
	assert.Contains(t, buf.String(), "smooth: bad size")
}

func TestFakeSink(t *testing.T) {
	f := &FakeSink{}
	f.Emit("one")
	f.Emit("two")
	assert.Equal(t, []string{"one", "two"}, f.Messages)
}

func TestDiscard(t *testing.T) {
	var s Sink = Discard{}
	s.Emit("ignored")
}
