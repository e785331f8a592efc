package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NepaliUtsab/blckpinkinventory/internal/config"
	"github.com/NepaliUtsab/blckpinkinventory/internal/inventory"
)

// newTestApp wires a full App against temp directories, with the
// deterministic test encryptor and a configured storage path.
func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("BP_STORAGE_ROOT", filepath.Join(t.TempDir(), "storage-default"))

	cfg := config.NewConfig(t.TempDir())
	cfg.Encryption.Type = "test"

	a, err := New(cfg, "Test")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })

	storageRoot := filepath.Join(t.TempDir(), "storage")
	if err := a.Repository().UpdateStoragePath(&storageRoot); err != nil {
		t.Fatalf("UpdateStoragePath() error = %v", err)
	}
	return a
}

func seedAppData(t *testing.T, a *App) {
	t.Helper()
	repo := a.Repository()
	if _, err := repo.CreateSession("count", ""); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := repo.AddItem(inventory.AddItemParams{Name: "Bolt", Quantity: 10}); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := repo.CloseCurrentSession(); err != nil {
		t.Fatalf("CloseCurrentSession() error = %v", err)
	}
}

func TestApp_ExportImport(t *testing.T) {
	a := newTestApp(t)
	seedAppData(t, a)

	target := t.TempDir()
	archivePath, err := a.Export(target, ExportOptions{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasSuffix(archivePath, ".zip") {
		t.Errorf("archive path = %q, want .zip suffix", archivePath)
	}

	// Drift the live data, then restore from the archive.
	repo := a.Repository()
	items := repo.Items()
	item := items[0]
	item.Quantity = 3
	if err := repo.UpdateItem(item); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	if err := a.Import(archivePath, ""); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := repo.Items()[0].Quantity; got != 10 {
		t.Errorf("quantity after import = %d, want 10", got)
	}
}

func TestApp_Export_Encrypted(t *testing.T) {
	a := newTestApp(t)
	seedAppData(t, a)

	target := t.TempDir()
	archivePath, err := a.Export(target, ExportOptions{Encrypt: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasSuffix(archivePath, ".zip.age") {
		t.Errorf("archive path = %q, want .zip.age suffix", archivePath)
	}
	plain := strings.TrimSuffix(archivePath, ".age")
	if _, err := os.Stat(plain); !os.IsNotExist(err) {
		t.Error("plaintext archive still exists after encrypted export")
	}

	repo := a.Repository()
	items := repo.Items()
	item := items[0]
	item.Quantity = 3
	if err := repo.UpdateItem(item); err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	if err := a.Import(archivePath, "any-passphrase"); err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if got := repo.Items()[0].Quantity; got != 10 {
		t.Errorf("quantity after encrypted import = %d, want 10", got)
	}
}

func TestApp_Export_Push(t *testing.T) {
	a := newTestApp(t)
	seedAppData(t, a)

	vaultRoot := filepath.Join(t.TempDir(), "vault")
	a.cfg.Vaults = []config.VaultConfig{{Type: "filesystem", Name: "local", FSVaultRoot: vaultRoot}}

	archivePath, err := a.Export(t.TempDir(), ExportOptions{Push: true})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	pushed := filepath.Join(vaultRoot, filepath.Base(archivePath))
	if _, err := os.Stat(pushed); err != nil {
		t.Errorf("archive was not pushed to the vault: %v", err)
	}
}

func TestApp_Export_Push_NoVaults(t *testing.T) {
	a := newTestApp(t)
	seedAppData(t, a)

	if _, err := a.Export(t.TempDir(), ExportOptions{Push: true}); err == nil {
		t.Error("Export() error = nil with no vaults configured")
	}
}
