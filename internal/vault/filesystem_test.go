package vault

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileSystemVault(t *testing.T) {
	t.Run("creates the root directory", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "vault")

		v, err := NewFileSystemVault("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
		if _, err := os.Stat(root); err != nil {
			t.Errorf("vault root not created: %v", err)
		}
		if v.name != "test" {
			t.Errorf("name = %q, want %q", v.name, "test")
		}
	})

	t.Run("works with an existing directory", func(t *testing.T) {
		if _, err := NewFileSystemVault("test", t.TempDir()); err != nil {
			t.Fatalf("NewFileSystemVault() error = %v", err)
		}
	})
}

func TestFileSystemVault_Put(t *testing.T) {
	tests := []struct {
		name    string
		archive string
		data    string
		size    int64
		wantErr bool
	}{
		{
			name:    "stores an archive",
			archive: "backup_1.zip",
			data:    "zip bytes",
			size:    9,
		},
		{
			name:    "size mismatch",
			archive: "backup_2.zip",
			data:    "short",
			size:    100,
			wantErr: true,
		},
		{
			name:    "empty archive",
			archive: "backup_3.zip",
			data:    "",
			size:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := NewFileSystemVault("test", t.TempDir())
			if err != nil {
				t.Fatalf("NewFileSystemVault() error = %v", err)
			}

			err = v.Put(tt.archive, strings.NewReader(tt.data), tt.size)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Put() error = %v, wantErr %v", err, tt.wantErr)
			}

			if !tt.wantErr {
				data, err := os.ReadFile(filepath.Join(v.root, tt.archive))
				if err != nil {
					t.Fatalf("reading stored archive: %v", err)
				}
				if string(data) != tt.data {
					t.Errorf("stored content = %q, want %q", data, tt.data)
				}
			}
		})
	}
}

func TestFileSystemVault_Put_Overwrites(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put("backup.zip", strings.NewReader("old"), 3); err != nil {
		t.Fatalf("first Put() error = %v", err)
	}
	if err := v.Put("backup.zip", strings.NewReader("newer"), 5); err != nil {
		t.Fatalf("second Put() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(v.root, "backup.zip"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "newer" {
		t.Errorf("stored content = %q, want %q", data, "newer")
	}
}

func TestFileSystemVault_Put_StripsPath(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	if err := v.Put("../escape.zip", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(v.root, "escape.zip")); err != nil {
		t.Errorf("archive not stored under the vault root: %v", err)
	}
}

func TestFileSystemVault_List(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}

	names, err := v.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}

	for _, name := range []string{"a.zip", "b.zip"} {
		if err := v.Put(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("Put(%s) error = %v", name, err)
		}
	}
	// Leftover temp files are not archives.
	if err := os.WriteFile(filepath.Join(v.root, ".tmp-123"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	names, err = v.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(names) != 2 {
		t.Errorf("List() = %v, want 2 archives", names)
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	v, err := NewFileSystemVault("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := v.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	if err := os.RemoveAll(v.root); err != nil {
		t.Fatal(err)
	}
	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() error = nil after root removed")
	}
}
