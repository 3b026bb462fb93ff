package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jobhub/jobboard/internal/core/domain"
)

type recordingSender struct {
	mu   sync.Mutex
	sent map[string][]string
	done chan struct{}
	want int
}

func (s *recordingSender) Send(userID string, ev domain.PushEvent) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent[userID] = append(s.sent[userID], ev.ID)
	s.want--
	if s.want == 0 {
		close(s.done)
	}
	return 1
}

func TestDispatcher_PreservesPerUserOrder(t *testing.T) {
	sender := &recordingSender{sent: make(map[string][]string), done: make(chan struct{}), want: 6}
	d := NewDispatcher(4, sender, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	for _, id := range []string{"1", "2", "3"} {
		d.Publish("alice", domain.PushEvent{ID: "a" + id})
		d.Publish("bob", domain.PushEvent{ID: "b" + id})
	}

	select {
	case <-sender.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("deliveries did not complete")
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if got := sender.sent["alice"]; len(got) != 3 || got[0] != "a1" || got[2] != "a3" {
		t.Fatalf("alice order broken: %v", got)
	}
	if got := sender.sent["bob"]; len(got) != 3 || got[0] != "b1" || got[2] != "b3" {
		t.Fatalf("bob order broken: %v", got)
	}
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(0, nil, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("user-42")
	for i := 0; i < 10; i++ {
		if d.shardIndex("user-42") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, nil, zerolog.Nop())
	// No workers started: the queue fills and further events are dropped.
	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Publish("u1", domain.PushEvent{})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Publish blocked on a full queue")
	}
}
