package log_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/log"
)

func TestFverbosef(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	log.VerboseEnabled = false
	log.Fverbosef(&buf, "hidden")
	rq.Empty(buf.String())

	log.VerboseEnabled = true
	defer func() { log.VerboseEnabled = false }()
	log.Fverbosef(&buf, "shown %d", 1)
	rq.Equal("shown 1", buf.String())
}

func TestLoadTraceSetting(t *testing.T) {
	rq := require.New(t)

	t.Setenv("TRACE", "alloc,fx")
	log.LoadTraceSetting()
	rq.True(log.TraceSetting["alloc"])
	rq.True(log.TraceSetting["fx"])
	rq.False(log.TraceSetting["other"])
}
