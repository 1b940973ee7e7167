package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

type collectService struct {
	mu      sync.Mutex
	entries []ports.ActivityInput
	done    chan struct{}
}

func newCollectService(expected int) *collectService {
	return &collectService{done: make(chan struct{}, expected)}
}

func (s *collectService) Process(_ context.Context, entry ports.ActivityInput) error {
	s.mu.Lock()
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
	s.done <- struct{}{}
	return nil
}

func (s *collectService) Feed(_ context.Context, _ string) ([]domain.ActivityEntry, error) {
	return nil, nil
}

func (s *collectService) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-s.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for entry %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_ProcessesEntries(t *testing.T) {
	svc := newCollectService(3)
	d := NewDispatcher(4, svc, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for i, action := range []domain.ActivityAction{domain.ActivityCreated, domain.ActivityCompleted, domain.ActivityDeleted} {
		d.Record(ports.ActivityInput{Owner: "user_1", TaskID: "task_1", Action: action, Timestamp: time.Now().Add(time.Duration(i))})
	}

	svc.wait(t, 3)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if len(svc.entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(svc.entries))
	}
	// One owner hashes to one shard, so ordering is preserved.
	want := []domain.ActivityAction{domain.ActivityCreated, domain.ActivityCompleted, domain.ActivityDeleted}
	for i, action := range want {
		if svc.entries[i].Action != action {
			t.Fatalf("entry %d: expected %s, got %s", i, action, svc.entries[i].Action)
		}
	}
}

func TestDispatcher_ShardIsStablePerOwner(t *testing.T) {
	d := NewDispatcher(8, newCollectService(0), zerolog.Nop())

	first := d.shardIndex("user_42")
	for i := 0; i < 10; i++ {
		if got := d.shardIndex("user_42"); got != first {
			t.Fatalf("shard index not deterministic: %d vs %d", first, got)
		}
	}
}

func TestDispatcher_DefaultWorkerCount(t *testing.T) {
	d := NewDispatcher(0, newCollectService(0), zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
}
