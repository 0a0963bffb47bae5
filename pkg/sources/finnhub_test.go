package sources

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestSnapshotFromSessions(t *testing.T) {
	spec := TickerSpec{Symbol: "MRNA", Name: "Moderna", Sector: "Biotechnology"}
	at := time.Date(2025, 5, 1, 21, 0, 0, 0, time.UTC)

	snap, ok := snapshotFromSessions(spec, []float32{98, 100, 110}, []float32{500, 600, 700}, at)

	assert.Equal(t, true, ok)
	assert.Equal(t, "MRNA", snap.Symbol)
	assert.Equal(t, "Moderna", snap.Name)
	assert.Equal(t, "Biotechnology", snap.Sector)
	assert.Equal(t, 110.0, snap.Price)
	assert.Equal(t, 10.0, snap.Change)
	assert.Equal(t, 10.0, snap.PercentChange)
	assert.Equal(t, int64(700), snap.Volume)
	assert.Equal(t, at, snap.FetchedAt)
}

func TestSnapshotFromSessionsNeedsTwoCloses(t *testing.T) {
	spec := TickerSpec{Symbol: "MRNA"}

	_, ok := snapshotFromSessions(spec, []float32{110}, []float32{700}, time.Now())
	assert.Equal(t, false, ok)

	_, ok = snapshotFromSessions(spec, nil, nil, time.Now())
	assert.Equal(t, false, ok)
}

func TestSnapshotFromSessionsZeroPreviousClose(t *testing.T) {
	snap, ok := snapshotFromSessions(TickerSpec{Symbol: "X"}, []float32{0, 50}, nil, time.Now())

	assert.Equal(t, true, ok)
	assert.Equal(t, 0.0, snap.PercentChange)
	assert.Equal(t, int64(0), snap.Volume)
}
