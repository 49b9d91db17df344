package envutil

import (
	"testing"
	"time"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CART_TEST_INT", "42")
	t.Setenv("CART_TEST_BAD_INT", "x")
	t.Setenv("CART_TEST_BOOL", "on")
	t.Setenv("CART_TEST_DUR", "3s")
	t.Setenv("CART_TEST_LIST", " a, ,b ")
	t.Setenv("CART_TEST_FLOAT", "0.25")

	if got := Int("CART_TEST_INT", 1); got != 42 {
		t.Fatalf("Int: got=%d", got)
	}
	if got := Int("CART_TEST_BAD_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got=%d", got)
	}
	if !Bool("CART_TEST_BOOL", false) {
		t.Fatalf("Bool: expected true")
	}
	if got := Duration("CART_TEST_DUR", time.Second); got != 3*time.Second {
		t.Fatalf("Duration: got=%s", got)
	}
	if got := List("CART_TEST_LIST", nil); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got=%v", got)
	}
	if got := Float("CART_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("Float: got=%v", got)
	}
	if got := String("CART_TEST_UNSET", "def"); got != "def" {
		t.Fatalf("String fallback: got=%q", got)
	}
}
