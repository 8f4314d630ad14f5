package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Route hooks
	r := NoopRouteHooks{}
	r.OnRouteStart(ctx, "wg0")
	r.OnRouteComplete(ctx, "wg0", 1200, 140.5, time.Second, nil)

	// Flatten hooks
	f := NoopFlattenHooks{}
	f.OnFlattenStart(ctx, "top")
	f.OnFlattenComplete(ctx, "top", 42, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "route")
	c.OnCacheMiss(ctx, "route")
	c.OnCacheSet(ctx, "route", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/route")
	h.OnResponse(ctx, "POST", "/v1/route", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Route().(NoopRouteHooks); !ok {
		t.Error("Route() should return NoopRouteHooks by default")
	}
	if _, ok := Flatten().(NoopFlattenHooks); !ok {
		t.Error("Flatten() should return NoopFlattenHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customRoute := &testRouteHooks{}
	SetRouteHooks(customRoute)
	if Route() != customRoute {
		t.Error("SetRouteHooks should set custom hooks")
	}

	customFlatten := &testFlattenHooks{}
	SetFlattenHooks(customFlatten)
	if Flatten() != customFlatten {
		t.Error("SetFlattenHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Route().(NoopRouteHooks); !ok {
		t.Error("Reset() should restore NoopRouteHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRouteHooks{}
	SetRouteHooks(custom)

	// Setting nil should be ignored
	SetRouteHooks(nil)

	if Route() != custom {
		t.Error("SetRouteHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRouteHooks struct{ NoopRouteHooks }
type testFlattenHooks struct{ NoopFlattenHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
