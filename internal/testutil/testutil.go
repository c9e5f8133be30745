// Package testutil provides the small set of test assertion helpers
// flexset's package tests build on: thin wrappers over testing.TB that
// call t.Fatalf with a useful message, nothing more.
package testutil

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// Assert fatals the test if cond is false, formatting msg/args as the
// failure message (rtest.Assert's exact shape).
func Assert(t testing.TB, cond bool, msg string, args ...interface{}) {
	t.Helper()
	if !cond {
		t.Fatalf(msg, args...)
	}
}

// OK fatals the test if err is non-nil.
func OK(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %+v", err)
	}
}

// Equals fatals the test if want and got are not reflect.DeepEqual,
// optionally prefixed with a caller-supplied message.
func Equals(t testing.TB, want, got interface{}, msgAndArgs ...interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	prefix := ""
	if len(msgAndArgs) > 0 {
		prefix = fmt.Sprintf(msgAndArgs[0].(string), msgAndArgs[1:]...) + ": "
	}
	t.Fatalf("%swant:\n  %#v\ngot:\n  %#v", prefix, want, got)
}

// Diff fatals the test with a structural diff (via google/go-cmp) when
// want and got differ. Prefer this over Equals for large composite
// values (packed buffers, tiered snapshots) where a DeepEqual mismatch
// message is unreadable.
func Diff(t testing.TB, want, got interface{}, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Fatalf("mismatch (-want +got):\n%s", d)
	}
}
