package envutil

import (
	"reflect"
	"testing"
	"time"
)

func TestReaders(t *testing.T) {
	t.Setenv("SS_TEST_STR", "  value ")
	t.Setenv("SS_TEST_INT", "12")
	t.Setenv("SS_TEST_BADINT", "twelve")
	t.Setenv("SS_TEST_BOOL", "on")
	t.Setenv("SS_TEST_SECS", "30")
	t.Setenv("SS_TEST_LIST", "a, b,,c")

	if got := String("SS_TEST_STR", "x"); got != "value" {
		t.Fatalf("String: got=%q", got)
	}
	if got := String("SS_TEST_MISSING", "x"); got != "x" {
		t.Fatalf("String default: got=%q", got)
	}
	if got := Int("SS_TEST_INT", 1); got != 12 {
		t.Fatalf("Int: got=%d", got)
	}
	if got := Int("SS_TEST_BADINT", 1); got != 1 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if got := Bool("SS_TEST_BOOL", false); !got {
		t.Fatalf("Bool: got=%v", got)
	}
	if got := Seconds("SS_TEST_SECS", time.Second); got != 30*time.Second {
		t.Fatalf("Seconds: got=%v", got)
	}
	if got := List("SS_TEST_LIST", nil); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("List: got=%v", got)
	}
}
