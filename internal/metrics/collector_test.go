package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAggregates(t *testing.T) {
	c := NewCollector()
	c.Record(OpEmbedding, 10*time.Millisecond, nil)
	c.Record(OpEmbedding, 30*time.Millisecond, nil)
	c.Record(OpEmbedding, 20*time.Millisecond, errors.New("boom"))

	snap := c.Snapshot()
	require.NotNil(t, snap.Embedding)
	assert.Equal(t, int64(3), snap.Embedding.Count)
	assert.Equal(t, int64(1), snap.Embedding.Errors)
	assert.Equal(t, int64(10), snap.Embedding.MinTimeMs)
	assert.Equal(t, int64(30), snap.Embedding.MaxTimeMs)
	assert.Equal(t, int64(60), snap.Embedding.TotalTimeMs)
	assert.InDelta(t, 20.0, snap.Embedding.AvgTimeMs, 0.001)
}

func TestSnapshotNilWithoutData(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Nil(t, snap.Completion)
	assert.Nil(t, snap.DirectoryLookup)
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestTimedPassesErrorThrough(t *testing.T) {
	c := NewCollector()
	sentinel := errors.New("lookup failed")
	err := c.Timed(OpDirectoryLookup, func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)

	snap := c.Snapshot()
	require.NotNil(t, snap.DirectoryLookup)
	assert.Equal(t, int64(1), snap.DirectoryLookup.Errors)
}
