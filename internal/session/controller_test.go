package session

import (
	"testing"
)

func TestController_StartsUnauthenticatedWithoutTeardown(t *testing.T) {
	c := NewController()

	fired := 0
	c.OnTeardown(func() { fired++ })

	if c.State() != StateUnauthenticated {
		t.Fatalf("State() = %s, want unauthenticated", c.State())
	}
	// Observing the initial state again is not an edge.
	c.Set(StateUnauthenticated)
	if fired != 0 {
		t.Errorf("teardown fired %d times before any session existed, want 0", fired)
	}
}

func TestController_TeardownFiresOncePerEdge(t *testing.T) {
	c := NewController()
	fired := 0
	c.OnTeardown(func() { fired++ })

	c.Set(StateAuthenticating)
	c.Set(StateAuthenticated)
	if fired != 0 {
		t.Fatalf("teardown fired on the way up: %d", fired)
	}

	c.Set(StateUnauthenticated)
	if fired != 1 {
		t.Fatalf("teardown fired %d times on logout, want 1", fired)
	}

	// Level-triggered would fire again; edge-triggered must not.
	c.Set(StateUnauthenticated)
	c.Set(StateUnauthenticated)
	if fired != 1 {
		t.Errorf("teardown fired %d times after re-observing unauthenticated, want 1", fired)
	}

	// A second full session gets its own teardown.
	c.Set(StateAuthenticating)
	c.Set(StateUnauthenticated) // server rejection during login
	if fired != 2 {
		t.Errorf("teardown fired %d times after second session, want 2", fired)
	}
}

func TestController_HooksRunInRegistrationOrder(t *testing.T) {
	c := NewController()

	var order []string
	c.OnTeardown(func() { order = append(order, "disconnect") })
	c.OnTeardown(func() { order = append(order, "clear-stores") })
	c.OnTeardown(func() { order = append(order, "clear-viewed") })

	c.Set(StateAuthenticated)
	c.Set(StateUnauthenticated)

	want := []string{"disconnect", "clear-stores", "clear-viewed"}
	if len(order) != len(want) {
		t.Fatalf("ran %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("ran %v, want %v", order, want)
		}
	}
}

func TestController_TeardownIsSynchronous(t *testing.T) {
	c := NewController()
	done := false
	c.OnTeardown(func() { done = true })

	c.Set(StateAuthenticated)
	c.Set(StateUnauthenticated)

	// Set must not return before the hooks ran.
	if !done {
		t.Error("teardown had not completed when Set returned")
	}
}

func TestController_NilHookIgnored(t *testing.T) {
	c := NewController()
	c.OnTeardown(nil)
	c.Set(StateAuthenticated)
	c.Set(StateUnauthenticated) // must not panic
}
