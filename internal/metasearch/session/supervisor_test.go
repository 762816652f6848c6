package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSupervisor_FiresAfterDelay(t *testing.T) {
	sup := NewSupervisor()
	fired := make(chan string, 1)

	sup.Schedule("a", 20*time.Millisecond, func() { fired <- "a" })

	select {
	case id := <-fired:
		assert.Equal(t, "a", id)
	case <-time.After(time.Second):
		t.Fatal("watchdog never fired")
	}
	assert.Equal(t, 0, sup.Active())
}

func TestSupervisor_CancelPreventsFire(t *testing.T) {
	sup := NewSupervisor()
	var fired atomic.Bool

	sup.Schedule("a", 30*time.Millisecond, func() { fired.Store(true) })
	sup.Cancel("a")

	time.Sleep(80 * time.Millisecond)
	assert.False(t, fired.Load())
	assert.Equal(t, 0, sup.Active())
}

func TestSupervisor_CancelUnknownIsNoop(t *testing.T) {
	sup := NewSupervisor()
	sup.Cancel("nope")
	assert.Equal(t, 0, sup.Active())
}

func TestSupervisor_RescheduleReplaces(t *testing.T) {
	sup := NewSupervisor()
	fired := make(chan int, 2)

	sup.Schedule("a", 30*time.Millisecond, func() { fired <- 1 })
	sup.Schedule("a", 60*time.Millisecond, func() { fired <- 2 })
	assert.Equal(t, 1, sup.Active())

	select {
	case n := <-fired:
		assert.Equal(t, 2, n, "only the replacement watchdog may fire")
	case <-time.After(time.Second):
		t.Fatal("watchdog never fired")
	}

	select {
	case <-fired:
		t.Fatal("replaced watchdog fired anyway")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestSupervisor_CancelAll(t *testing.T) {
	sup := NewSupervisor()
	var fired atomic.Int32

	for _, id := range []string{"a", "b", "c"} {
		sup.Schedule(id, 30*time.Millisecond, func() { fired.Add(1) })
	}
	assert.Equal(t, 3, sup.Active())

	sup.CancelAll()
	assert.Equal(t, 0, sup.Active())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
