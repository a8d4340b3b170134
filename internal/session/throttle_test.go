package session

import (
	"testing"
	"time"
)

func testThrottle() (*Throttle, *time.Time) {
	th := NewThrottle()
	now := time.Now()
	th.now = func() time.Time { return now }
	return th, &now
}

func TestThrottle_AllowsFreshCaller(t *testing.T) {
	th, _ := testThrottle()
	if !th.Allow("1.2.3.4") {
		t.Error("fresh caller should be allowed")
	}
}

func TestThrottle_BlocksAfterMaxFailures(t *testing.T) {
	th, _ := testThrottle()

	for i := 0; i < DefaultMaxFailures-1; i++ {
		th.Fail("1.2.3.4")
		if !th.Allow("1.2.3.4") {
			t.Fatalf("blocked after %d failures, limit is %d", i+1, DefaultMaxFailures)
		}
	}
	th.Fail("1.2.3.4")
	if th.Allow("1.2.3.4") {
		t.Error("caller should be blocked at the failure limit")
	}
	// Other callers are unaffected.
	if !th.Allow("5.6.7.8") {
		t.Error("unrelated caller blocked")
	}
}

func TestThrottle_SuccessResets(t *testing.T) {
	th, _ := testThrottle()

	for i := 0; i < DefaultMaxFailures-1; i++ {
		th.Fail("1.2.3.4")
	}
	th.Succeed("1.2.3.4")
	th.Fail("1.2.3.4")
	if !th.Allow("1.2.3.4") {
		t.Error("failure count should reset after a success")
	}
}

func TestThrottle_BlockExpires(t *testing.T) {
	th, now := testThrottle()

	for i := 0; i < DefaultMaxFailures; i++ {
		th.Fail("1.2.3.4")
	}
	if th.Allow("1.2.3.4") {
		t.Fatal("caller should be blocked")
	}

	*now = now.Add(DefaultBlockFor + time.Second)
	if !th.Allow("1.2.3.4") {
		t.Error("block should have expired")
	}
	// And the caller starts with a clean slate.
	th.Fail("1.2.3.4")
	if !th.Allow("1.2.3.4") {
		t.Error("caller should start fresh after block expiry")
	}
}

func TestThrottle_WindowExpiresOldFailures(t *testing.T) {
	th, now := testThrottle()

	for i := 0; i < DefaultMaxFailures-1; i++ {
		th.Fail("1.2.3.4")
	}
	*now = now.Add(DefaultFailureWindow + time.Second)
	// The old window has lapsed; these failures start a new count.
	th.Fail("1.2.3.4")
	if !th.Allow("1.2.3.4") {
		t.Error("stale failures should not count toward the block")
	}
}
