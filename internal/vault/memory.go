package vault

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryVault keeps archives in memory. Use in tests.
type MemoryVault struct {
	name string

	mu       sync.Mutex
	archives map[string][]byte
}

var _ Vault = (*MemoryVault)(nil)

// NewMemoryVault creates an empty in-memory vault.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:     name,
		archives: make(map[string][]byte),
	}
}

func (v *MemoryVault) Put(name string, r io.Reader, size int64) error {
	var buf bytes.Buffer
	written, err := io.Copy(&buf, r)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if written != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.archives[name] = buf.Bytes()
	return nil
}

func (v *MemoryVault) List() ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	names := make([]string, 0, len(v.archives))
	for name := range v.archives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (v *MemoryVault) ValidateSetup() error { return nil }

// Get returns a stored archive's content, or nil if absent. Test helper.
func (v *MemoryVault) Get(name string) []byte {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.archives[name]
}
