package core

import (
	"testing"
	"time"

	"github.com/arvang/classroom/internal/domain"
)

func TestEventLogOrderAndTail(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < 5; i++ {
		l.Append(domain.EventInfo, "e", "")
	}
	all := l.All()
	for i := 1; i < len(all); i++ {
		if all[i].Timestamp < all[i-1].Timestamp {
			t.Fatalf("timestamps decreased at %d: %d < %d", i, all[i].Timestamp, all[i-1].Timestamp)
		}
	}
	tail := l.Tail(3)
	if len(tail) != 3 {
		t.Fatalf("tail len = %d, want 3", len(tail))
	}
	for i, e := range tail {
		if e.ID != all[len(all)-3+i].ID {
			t.Fatalf("tail is not a suffix of all at %d", i)
		}
	}
}

func TestEventLogTailLargerThanLog(t *testing.T) {
	l := NewEventLog()
	l.Append(domain.EventChat, "only", "a")
	tail := l.Tail(3)
	if len(tail) != 1 || tail[0].Message != "only" {
		t.Fatalf("tail = %+v", tail)
	}
	if got := l.Tail(0); got != nil {
		t.Fatalf("tail(0) = %+v, want nil", got)
	}
}

func TestEventLogClampsBackwardClock(t *testing.T) {
	ts := time.UnixMilli(1000)
	l := NewEventLogAt(func() time.Time { return ts })
	first := l.Append(domain.EventInfo, "a", "")
	ts = time.UnixMilli(500)
	second := l.Append(domain.EventInfo, "b", "")
	if second.Timestamp < first.Timestamp {
		t.Fatalf("log went backwards: %d < %d", second.Timestamp, first.Timestamp)
	}
}
