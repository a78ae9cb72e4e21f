package signal

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/arvang/classroom/internal/core"
)

func TestChatRateLimiter(t *testing.T) {
	rl := NewChatRateLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		if !rl.Allow("a") {
			t.Fatalf("attempt %d blocked under the limit", i)
		}
	}
	if rl.Allow("a") {
		t.Fatal("attempt over the limit allowed")
	}
	// Другой участник ограничивается отдельно.
	if !rl.Allow("b") {
		t.Fatal("other participant blocked")
	}
}

func TestChatRateLimiterForget(t *testing.T) {
	rl := NewChatRateLimiter(1, time.Minute)
	if !rl.Allow("a") || rl.Allow("a") {
		t.Fatal("limit not applied")
	}
	rl.Forget("a")
	if len(rl.history) != 0 {
		t.Fatalf("history holds %d entries after forget", len(rl.history))
	}
	// A returning participant starts with a clean window.
	if !rl.Allow("a") {
		t.Fatal("blocked after forget")
	}
}

func TestErrTextMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{core.ErrNotFound, "not_found"},
		{core.ErrDuplicateID, "duplicate_id"},
		{core.ErrPermissionDenied, "permission_denied"},
		{core.ErrInvalidReference, "invalid_reference"},
		{core.ErrInvalidPermutation, "invalid_permutation"},
		{core.ErrChatDisabled, "chat_disabled"},
		{fmt.Errorf("pin: %w", core.ErrInvalidReference), "invalid_reference"},
		{errors.New("boom"), "boom"},
	}
	for _, tc := range cases {
		if got := errText(tc.err); got != tc.want {
			t.Fatalf("errText(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}
