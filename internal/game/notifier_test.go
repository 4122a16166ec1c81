package game

import (
	"sync"
	"testing"
)

func TestMultiNotifier_RecoversPanics(t *testing.T) {
	rec := &captureRecorder{}
	m := NewMultiNotifier(quietLogger(),
		NotifierFunc(func(CaptureEvent) { panic("bad notifier") }),
		nil,
		rec,
	)

	m.NotifyCapture(CaptureEvent{TerritoryID: "t1", NewOwner: "A"})

	if events := rec.Events(); len(events) != 1 || events[0].NewOwner != "A" {
		t.Errorf("Expected delivery after a panicking notifier, got %+v", events)
	}
}

func TestAsyncNotifier_DeliversBeforeClose(t *testing.T) {
	rec := &captureRecorder{}
	a := NewAsyncNotifier(rec, 8, quietLogger())

	for i := 0; i < 5; i++ {
		a.NotifyCapture(CaptureEvent{TerritoryID: "t1", NewOwner: "A"})
	}
	a.Close()

	if n := len(rec.Events()); n != 5 {
		t.Errorf("Expected 5 delivered events, got %d", n)
	}
	if a.Dropped() != 0 {
		t.Errorf("Expected no drops, got %d", a.Dropped())
	}

	a.NotifyCapture(CaptureEvent{TerritoryID: "t1"})
	if a.Dropped() != 1 {
		t.Errorf("Expected event after close to be dropped, got %d drops", a.Dropped())
	}
	a.Close()
}

func TestAsyncNotifier_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	blocking := NotifierFunc(func(CaptureEvent) {
		once.Do(func() { close(started) })
		<-release
	})
	a := NewAsyncNotifier(blocking, 1, quietLogger())

	// First event occupies the worker, second fills the buffer.
	a.NotifyCapture(CaptureEvent{TerritoryID: "t1"})
	<-started
	a.NotifyCapture(CaptureEvent{TerritoryID: "t2"})
	a.NotifyCapture(CaptureEvent{TerritoryID: "t3"})

	if a.Dropped() != 1 {
		t.Errorf("Expected 1 dropped event, got %d", a.Dropped())
	}
	close(release)
	a.Close()
}
