package audit_test

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/sharelot/sharelot/audit"
)

func TestMemorySink(t *testing.T) {
	rq := require.New(t)

	sink := audit.NewMemorySink()
	id := uuid.New()
	sink.Event("parcel", id, "created with %d units", 100)
	sink.Event("sell", uuid.New(), "processed")

	events := sink.Events()
	rq.Equal(2, len(events))
	rq.Equal("parcel", events[0].Entity)
	rq.Equal(id, events[0].ID)
	rq.Equal("created with 100 units", events[0].Msg)

	// Events returns a copy.
	events[0].Entity = "mutated"
	rq.Equal("parcel", sink.Events()[0].Entity)
}

func TestLogSink(t *testing.T) {
	rq := require.New(t)

	var buf bytes.Buffer
	sink := audit.NewLogSink(&buf)
	id := uuid.New()
	sink.Event("parcel", id, "deactivated on %s", "2024-02-01")

	out := buf.String()
	rq.Contains(out, "parcel")
	rq.Contains(out, id.String())
	rq.Contains(out, "deactivated on 2024-02-01")
	rq.Contains(out, "audit")
}

func TestNopSink(t *testing.T) {
	require.NotPanics(t, func() {
		audit.NopSink{}.Event("parcel", uuid.New(), "ignored")
	})
}
