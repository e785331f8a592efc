package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutGet(t *testing.T) {
	v := NewMemoryVault("test")

	if err := v.Put("backup.zip", strings.NewReader("content"), 7); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := v.Get("backup.zip"); !bytes.Equal(got, []byte("content")) {
		t.Errorf("Get() = %q, want %q", got, "content")
	}
	if got := v.Get("missing.zip"); got != nil {
		t.Errorf("Get(missing) = %q, want nil", got)
	}
}

func TestMemoryVault_Put_SizeMismatch(t *testing.T) {
	v := NewMemoryVault("test")

	if err := v.Put("backup.zip", strings.NewReader("short"), 100); err == nil {
		t.Error("Put() error = nil on size mismatch")
	}
}

func TestMemoryVault_List(t *testing.T) {
	v := NewMemoryVault("test")

	for _, name := range []string{"b.zip", "a.zip"} {
		if err := v.Put(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}

	names, err := v.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 || names[0] != "a.zip" || names[1] != "b.zip" {
		t.Errorf("List() = %v, want sorted [a.zip b.zip]", names)
	}
}
