package resolve

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/minbump/pkg/registry"
)

// fleetRegistry has three roots that all pull in core; slow resolves last.
func fleetRegistry() *registry.Static {
	return libRegistry().
		Add("slow", "1.0.0", registry.Dep("core", "^1.0.0")).
		Add("slow", "2.0.0", registry.Dep("core", "^2.0.0")).
		Delay("slow", 80*time.Millisecond).
		Add("fast", "1.0.0", registry.Dep("core", "2.0.0"))
}

func TestListUpdatePreservesOrder(t *testing.T) {
	s := NewSession(fleetRegistry(), Options{})
	roots := []Package{
		{Name: "slow", Version: "1.0.0"},
		{Name: "lib", Version: "1.0.0"},
		{Name: "fast", Version: "1.0.0"},
		{Name: "ghost", Version: "1.0.0"},
	}

	results, err := s.ListUpdate(context.Background(), false, roots, "core", "2.0.0")
	if err != nil {
		t.Fatalf("ListUpdate() error: %v", err)
	}

	want := []struct{ name, value string }{
		{"slow", "2.0.0"},
		{"lib", "2.0.0"},
		{"fast", "1.0.0"},
		{"ghost", "no favourable outcome because of ghost"},
	}
	if len(results) != len(want) {
		t.Fatalf("ListUpdate() returned %d results, want %d", len(results), len(want))
	}
	for i, w := range want {
		if results[i].Name != w.name || results[i].Outcome.String() != w.value {
			t.Errorf("results[%d] = (%s, %s), want (%s, %s)",
				i, results[i].Name, results[i].Outcome, w.name, w.value)
		}
	}
}

func TestListUpdateFailsWholeBatch(t *testing.T) {
	boom := errors.New("503 from registry")
	reg := fleetRegistry().Fail("slow", boom)
	s := NewSession(reg, Options{})
	roots := []Package{
		{Name: "lib", Version: "1.0.0"},
		{Name: "slow", Version: "1.0.0"},
	}

	results, err := s.ListUpdate(context.Background(), false, roots, "core", "2.0.0")
	if !errors.Is(err, boom) {
		t.Fatalf("ListUpdate() error = %v, want %v", err, boom)
	}
	if results != nil {
		t.Errorf("ListUpdate() returned partial results: %v", results)
	}
}

func TestListUpdateSharesCache(t *testing.T) {
	reg := libRegistry()
	s := NewSession(reg, Options{MaxConcurrency: 2})
	roots := make([]Package, 10)
	for i := range roots {
		roots[i] = Package{Name: "lib", Version: "1.0.0"}
	}

	results, err := s.ListUpdate(context.Background(), true, roots, "core", "1.2.0")
	if err != nil {
		t.Fatalf("ListUpdate() error: %v", err)
	}
	for i, r := range results {
		if r.Outcome.String() != "1.1.0" {
			t.Errorf("results[%d] = %s, want 1.1.0", i, r.Outcome)
		}
	}
	if reg.Calls("lib") != 1 || reg.Calls("core") != 1 {
		t.Errorf("registry calls lib=%d core=%d, want 1 each", reg.Calls("lib"), reg.Calls("core"))
	}
}

func TestListUpdateEmpty(t *testing.T) {
	rep := &recordingReporter{}
	s := NewSession(libRegistry(), Options{Progress: NewCounter(rep)})

	results, err := s.ListUpdate(context.Background(), false, nil, "core", "1.0.0")
	if err != nil {
		t.Fatalf("ListUpdate() error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("ListUpdate() = %v, want empty", results)
	}
	if rep.finishes != 1 {
		t.Errorf("Finish called %d times, want 1", rep.finishes)
	}
}

func TestListUpdateReportsProgress(t *testing.T) {
	rep := &recordingReporter{}
	counter := NewCounter(rep)
	s := NewSession(fleetRegistry(), Options{Progress: counter})
	roots := []Package{
		{Name: "lib", Version: "1.0.0"},
		{Name: "fast", Version: "1.0.0"},
		{Name: "slow", Version: "1.0.0"},
	}

	if _, err := s.ListUpdate(context.Background(), false, roots, "core", "1.0.0"); err != nil {
		t.Fatalf("ListUpdate() error: %v", err)
	}

	done, total := counter.Done()
	if done != 3 || total != 3 {
		t.Errorf("Done() = (%d, %d), want (3, 3)", done, total)
	}
	if !counter.Finished() {
		t.Error("counter should be finished")
	}

	rep.mu.Lock()
	defer rep.mu.Unlock()
	if rep.finishes != 1 {
		t.Errorf("Finish called %d times, want 1", rep.finishes)
	}
	if rep.last != 3 {
		t.Errorf("last update = %d, want 3", rep.last)
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	updates  int
	last     int
	finishes int
}

func (r *recordingReporter) Update(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.last = done
}

func (r *recordingReporter) Finish(int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finishes++
}
