package envutil

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	t.Setenv("SUPPLESAFE_TEST_STR", "  value ")
	if got := String("SUPPLESAFE_TEST_STR", "def", nil); got != "value" {
		t.Fatalf("String=%q", got)
	}
	t.Setenv("SUPPLESAFE_TEST_STR", "   ")
	if got := String("SUPPLESAFE_TEST_STR", "def", nil); got != "def" {
		t.Fatalf("blank should use default, got %q", got)
	}
}

func TestIntAndSeconds(t *testing.T) {
	t.Setenv("SUPPLESAFE_TEST_INT", "42")
	if got := Int("SUPPLESAFE_TEST_INT", 1, nil); got != 42 {
		t.Fatalf("Int=%d", got)
	}
	t.Setenv("SUPPLESAFE_TEST_INT", "nope")
	if got := Int("SUPPLESAFE_TEST_INT", 1, nil); got != 1 {
		t.Fatalf("bad int should use default, got %d", got)
	}
	t.Setenv("SUPPLESAFE_TEST_SECS", "0")
	if got := Seconds("SUPPLESAFE_TEST_SECS", time.Minute, nil); got != time.Minute {
		t.Fatalf("zero seconds should use default, got %v", got)
	}
	t.Setenv("SUPPLESAFE_TEST_SECS", "30")
	if got := Seconds("SUPPLESAFE_TEST_SECS", time.Minute, nil); got != 30*time.Second {
		t.Fatalf("Seconds=%v", got)
	}
}

func TestBoolAndList(t *testing.T) {
	t.Setenv("SUPPLESAFE_TEST_BOOL", "On")
	if !Bool("SUPPLESAFE_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("SUPPLESAFE_TEST_BOOL", "maybe")
	if Bool("SUPPLESAFE_TEST_BOOL", false) {
		t.Fatalf("unknown value should use default")
	}
	t.Setenv("SUPPLESAFE_TEST_LIST", "a, ,b,")
	got := List("SUPPLESAFE_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List=%v", got)
	}
}
