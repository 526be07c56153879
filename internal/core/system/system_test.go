package system

import (
	"testing"
	"time"
)

type recSystem struct {
	name     string
	phase    Phase
	log      *[]string
	initErr  error
	shutdown bool
}

func (s *recSystem) Phase() Phase { return s.phase }
func (s *recSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}
func (s *recSystem) Init() error { *s.log = append(*s.log, "init:"+s.name); return s.initErr }
func (s *recSystem) Shutdown()   { s.shutdown = true; *s.log = append(*s.log, "down:"+s.name) }

func TestRunnerOrdersByPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recSystem{name: "cleanup", phase: PhaseCleanup, log: &log})
	r.Register(&recSystem{name: "spawn", phase: PhaseSpawn, log: &log})
	r.Register(&recSystem{name: "dispatch", phase: PhasePreUpdate, log: &log})

	if err := r.Init(); err != nil {
		t.Fatal(err)
	}
	log = log[:0]
	r.Tick(time.Millisecond)
	want := []string{"dispatch", "spawn", "cleanup"}
	for i, w := range want {
		if log[i] != w {
			t.Fatalf("tick order = %v, want %v", log, want)
		}
	}

	log = log[:0]
	r.Shutdown()
	if log[0] != "down:cleanup" || log[2] != "down:dispatch" {
		t.Fatalf("shutdown order = %v, want reverse phase order", log)
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recSystem{name: "a", phase: PhaseUpdate, log: &log})
	r.Register(&recSystem{name: "b", phase: PhasePersist, log: &log})
	r.TickPhase(PhasePersist, time.Millisecond)
	if len(log) != 1 || log[0] != "b" {
		t.Fatalf("TickPhase ran %v", log)
	}
}

func TestDeferredFiresOnce(t *testing.T) {
	n := 0
	d := After(2*time.Second, func() { n++ })
	if d.Advance(time.Second) {
		t.Fatal("fired early")
	}
	if !d.Advance(time.Second) {
		t.Fatal("did not fire when due")
	}
	d.Advance(time.Second)
	if n != 1 || d.Pending() {
		t.Fatalf("fired %d times, pending=%v", n, d.Pending())
	}
}

func TestDeferredCancel(t *testing.T) {
	n := 0
	d := After(time.Second, func() { n++ })
	d.Cancel()
	d.Cancel()
	if d.Advance(time.Hour) || n != 0 {
		t.Fatal("cancelled token fired")
	}
	var nilToken *Deferred
	nilToken.Cancel()
	if nilToken.Pending() {
		t.Fatal("nil token pending")
	}
}
