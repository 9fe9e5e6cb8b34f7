package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordpuzzle/pkg/metrics"
)

type recordingPublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
	err     error
}

func (p *recordingPublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.batches = append(p.batches, append([]kafka.Event(nil), events...))
	return nil
}

func (p *recordingPublisher) events() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var all []kafka.Event
	for _, b := range p.batches {
		all = append(all, b...)
	}
	return all
}

func TestCollector_BatchesBySize(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 100, 3, time.Hour, nil)
	c.Start(context.Background())

	for _, l := range []string{"abc", "def", "ghi", "jkl"} {
		c.Track(SearchEvent{Type: EventSearch, Letters: l})
	}
	c.Close()

	events := pub.events()
	require.Len(t, events, 4)
	assert.Len(t, pub.batches[0], 3)
	assert.Equal(t, "abc", events[0].Key)
	assert.Equal(t, "jkl", events[3].Value.(SearchEvent).Letters)
}

func TestCollector_FlushesOnInterval(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 100, 50, 10*time.Millisecond, nil)
	c.Start(context.Background())
	defer c.Close()

	c.Track(SearchEvent{Letters: "hello"})
	assert.Eventually(t, func() bool {
		return len(pub.events()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestCollector_DrainsOnCancel(t *testing.T) {
	pub := &recordingPublisher{}
	c := NewCollector(pub, 100, 50, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	c.Track(SearchEvent{Letters: "a"})
	c.Track(SearchEvent{Letters: "b"})
	c.Start(ctx)
	cancel()
	c.Close()

	assert.Len(t, pub.events(), 2)
}

func TestCollector_DropsWhenFull(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	c := NewCollector(&recordingPublisher{}, 1, 10, time.Hour, m)

	c.Track(SearchEvent{Letters: "a"})
	c.Track(SearchEvent{Letters: "b"})
	c.Track(SearchEvent{Letters: "c"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsDroppedTotal))
}

func TestCollector_PublishFailureCountsDropped(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	pub := &recordingPublisher{err: errors.New("broker unavailable")}
	c := NewCollector(pub, 10, 2, time.Hour, m)
	c.Start(context.Background())

	c.Track(SearchEvent{Letters: "a"})
	c.Track(SearchEvent{Letters: "b"})
	c.Close()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsDroppedTotal))
}

func TestCollector_TrackAfterClose(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	pub := &recordingPublisher{}
	c := NewCollector(pub, 10, 10, time.Hour, m)
	c.Start(context.Background())

	c.Track(SearchEvent{Letters: "a"})
	c.Close()
	require.NotPanics(t, func() {
		c.Track(SearchEvent{Letters: "late"})
		c.Close()
	})

	assert.Len(t, pub.events(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDroppedTotal))
}
