package logbuf_test

import (
	"sync"
	"testing"

	"github.com/mara-voss/dualpane/internal/logbuf"
	"github.com/stretchr/testify/require"
)

func TestRingEvictsOldest(t *testing.T) {
	b := logbuf.New(3)
	b.Infof(logbuf.SourceMain, "one")
	b.Infof(logbuf.SourceMain, "two")
	b.Infof(logbuf.SourceMain, "three")
	b.Infof(logbuf.SourceMain, "four")

	records := b.Records()
	require.Len(t, records, 3)
	require.Equal(t, "two", records[0].Message)
	require.Equal(t, "three", records[1].Message)
	require.Equal(t, "four", records[2].Message)
}

func TestRecordsBeforeCapacityKeepAppendOrder(t *testing.T) {
	b := logbuf.New(10)
	b.Warnf(logbuf.SourceSFTP, "a")
	b.Errorf(logbuf.SourceSFTP, "b")

	records := b.Records()
	require.Len(t, records, 2)
	require.Equal(t, logbuf.LevelWarning, records[0].Level)
	require.Equal(t, logbuf.LevelError, records[1].Level)
}

type countingHandler struct {
	mu    sync.Mutex
	count int
}

func (h *countingHandler) Handle(logbuf.Record) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
}

type panickingHandler struct{}

func (panickingHandler) Handle(logbuf.Record) { panic("boom") }

func TestFailingHandlerDoesNotBlockOthers(t *testing.T) {
	b := logbuf.New(10)
	counter := &countingHandler{}
	b.AddHandler(panickingHandler{})
	b.AddHandler(counter)

	b.Infof(logbuf.SourceMain, "hello")

	counter.mu.Lock()
	defer counter.mu.Unlock()
	require.Equal(t, 1, counter.count)
}
