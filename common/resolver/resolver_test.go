package resolver

import (
	"os"
	"testing"
)

func TestConstantResolver(t *testing.T) {
	addr := "127.0.0.1:30"
	c := NewConstantResolver(addr)

	res, err := c.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if res != addr {
		t.Fatalf("got: %s, want: %s", res, addr)
	}
}

func TestEnvResolver(t *testing.T) {
	addr := "127.0.0.1:30"
	os.Setenv("SPECULATOR_TEST_ADDR", addr)
	defer os.Unsetenv("SPECULATOR_TEST_ADDR")
	e := NewEnvResolver("SPECULATOR_TEST_ADDR")

	res, err := e.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if res != addr {
		t.Fatalf("got: %s, want: %s", res, addr)
	}
}

func TestCompositeResolver(t *testing.T) {
	addr := "127.0.0.1:30"
	addr2 := "1.2.3.4:99"
	os.Unsetenv("SPECULATOR_TEST_ADDR")
	defer os.Unsetenv("SPECULATOR_TEST_ADDR")
	cr := NewCompositeResolver(NewConstantResolver(""), NewEnvResolver("SPECULATOR_TEST_ADDR"), NewConstantResolver(addr))

	res, err := cr.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if res != addr {
		t.Fatalf("got: %s, want: %s", res, addr)
	}

	os.Setenv("SPECULATOR_TEST_ADDR", addr2)
	res, err = cr.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if res != addr2 {
		t.Fatalf("got: %s, want: %s", res, addr2)
	}

	if _, err := NewCompositeResolver(NewConstantResolver("")).Resolve(); err == nil {
		t.Fatal("expected an error when no delegate resolves")
	}
}
