package audio

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResetter(delay time.Duration) (*Resetter, *fakeOpener) {
	opener := &fakeOpener{delay: delay}
	c := NewController(1.0)
	c.open = opener.open
	return NewResetter(c), opener
}

func TestResetter_StartIsIdempotent(t *testing.T) {
	r, _ := newTestResetter(2 * time.Millisecond)
	dev := Device{ID: 3, Name: "speakers"}

	r.Start(dev)
	r.Start(dev)
	r.Start(dev)

	assert.True(t, r.Active(dev.ID))
	r.mu.Lock()
	tasks := len(r.tasks)
	r.mu.Unlock()
	assert.Equal(t, 1, tasks, "one silence task per device")

	r.Stop(dev.ID)
}

func TestResetter_StopBlocksUntilReleased(t *testing.T) {
	r, opener := newTestResetter(2 * time.Millisecond)
	dev := Device{ID: 0, Name: "speakers"}

	r.Start(dev)
	require.Eventually(t, func() bool {
		opener.mu.Lock()
		defer opener.mu.Unlock()
		return len(opener.streams) > 0
	}, time.Second, time.Millisecond)

	r.Stop(dev.ID)

	assert.False(t, r.Active(dev.ID))
	s := opener.last()
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.True(t, s.stopped)
	assert.True(t, s.closed, "device must be free once Stop returns")
}

func TestResetter_StopUnknownDeviceIsNoop(t *testing.T) {
	r, _ := newTestResetter(0)
	r.Stop(42)
}

func TestResetter_TaskEndsAfterBurstBudget(t *testing.T) {
	r, _ := newTestResetter(0)
	dev := Device{ID: 1}

	r.Start(dev)
	require.Eventually(t, func() bool { return !r.Active(dev.ID) },
		time.Second, time.Millisecond, "task ends by itself after its bursts")

	// A later Start must spin up a fresh task.
	r.Start(dev)
	assert.True(t, r.Active(dev.ID))
	r.Stop(dev.ID)
}

func TestResetter_BurstsQueueBehindPlayback(t *testing.T) {
	opener := &fakeOpener{delay: 2 * time.Millisecond}
	c := NewController(1.0)
	c.open = opener.open
	r := NewResetter(c)
	dev := Device{ID: 0, Name: "speakers"}

	clip := &Clip{SampleRate: 44100, Channels: 1, Samples: make([]int16, framesPerBuffer*4)}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, c.Play(context.Background(), clip, dev))
	}()
	r.Start(dev)
	wg.Wait()
	r.Stop(dev.ID)

	assert.Equal(t, int32(1), opener.maxSeen.Load(),
		"silence bursts must never mix with an utterance on the device")
}

func TestResetter_StopAll(t *testing.T) {
	r, _ := newTestResetter(2 * time.Millisecond)
	r.Start(Device{ID: 0})
	r.Start(Device{ID: 1})

	r.StopAll()
	assert.False(t, r.Active(0))
	assert.False(t, r.Active(1))
}
