package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"CoinBoard/internal/domain/models"
)

func TestMailboxLatestWins(t *testing.T) {
	mb := NewMailbox()
	if _, ok := mb.Latest(); ok {
		t.Fatal("new mailbox must be empty")
	}

	mb.Publish(models.Snapshot{State: "fetching"})
	last := mb.Publish(models.Snapshot{State: "displayed"})

	got, ok := mb.Latest()
	if !ok || got.Seq != 2 || got.State != "displayed" || last.Seq != got.Seq {
		t.Fatalf("unexpected latest %+v", got)
	}
}

func TestMailboxWait(t *testing.T) {
	mb := NewMailbox()
	mb.Publish(models.Snapshot{State: "idle"})

	s, err := mb.Wait(context.Background(), 0)
	if err != nil || s.Seq != 1 {
		t.Fatalf("expected immediate return, got %+v %v", s, err)
	}

	done := make(chan models.Snapshot, 1)
	go func() {
		s, _ := mb.Wait(context.Background(), 1)
		done <- s
	}()
	time.Sleep(10 * time.Millisecond)
	mb.Publish(models.Snapshot{State: "waiting"})

	select {
	case s := <-done:
		if s.Seq != 2 {
			t.Fatalf("unexpected snapshot %+v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter not woken")
	}
}

func TestMailboxWaitCancelled(t *testing.T) {
	mb := NewMailbox()
	mb.Publish(models.Snapshot{})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s, err := mb.Wait(ctx, 1)
	if !errors.Is(err, context.DeadlineExceeded) || s.Seq != 1 {
		t.Fatalf("expected latest snapshot with deadline error, got %+v %v", s, err)
	}
}
