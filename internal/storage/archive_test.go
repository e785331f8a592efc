package storage_test

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NepaliUtsab/blckpinkinventory/internal/model"
	"github.com/NepaliUtsab/blckpinkinventory/internal/storage"
)

func seedEngineData(t *testing.T, e *storage.Engine) {
	t.Helper()
	if err := e.SaveCategories([]model.Category{{ID: "c1", Name: "Hardware"}}); err != nil {
		t.Fatalf("SaveCategories() error = %v", err)
	}
	if err := e.SaveInventory([]model.InventoryItem{
		{ID: "i1", Name: "Bolt", ShareableCode: "AAA111", Quantity: 10, Tags: []string{}},
	}); err != nil {
		t.Fatalf("SaveInventory() error = %v", err)
	}
	if err := e.SaveSession(&model.InventorySession{
		ID:           "s1",
		Name:         "count",
		StartDate:    "2024-01-15T10:30:00",
		Items:        []model.InventoryItem{},
		Transactions: []model.InventoryTransaction{},
	}); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
}

func TestEngine_ExportAll(t *testing.T) {
	t.Run("produces a named archive with fixed entries", func(t *testing.T) {
		e, _ := newTestEngine(t)
		seedEngineData(t, e)

		target := t.TempDir()
		archivePath, err := e.ExportAll(target)
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}

		base := filepath.Base(archivePath)
		if !strings.HasPrefix(base, "blackandpink_backup_") || !strings.HasSuffix(base, ".zip") {
			t.Errorf("archive name = %q, want blackandpink_backup_<stamp>.zip", base)
		}

		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			t.Fatalf("OpenReader() error = %v", err)
		}
		defer zr.Close()

		names := map[string]bool{}
		for _, f := range zr.File {
			names[f.Name] = true
		}
		for _, want := range []string{"inventory.json", "categories.json", "sessions_list.json", "sessions/session_s1.json"} {
			if !names[want] {
				t.Errorf("archive missing entry %q; got %v", want, names)
			}
		}
	})

	t.Run("omits documents that do not exist", func(t *testing.T) {
		e, _ := newTestEngine(t)

		archivePath, err := e.ExportAll(t.TempDir())
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}

		zr, err := zip.OpenReader(archivePath)
		if err != nil {
			t.Fatalf("OpenReader() error = %v", err)
		}
		defer zr.Close()

		if len(zr.File) != 0 {
			t.Errorf("archive entries = %d, want 0 on an empty root", len(zr.File))
		}
	})

	t.Run("rejects a missing target directory", func(t *testing.T) {
		e, _ := newTestEngine(t)

		if _, err := e.ExportAll(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("ExportAll() error = nil for missing target")
		}
	})

	t.Run("rejects a file as target", func(t *testing.T) {
		e, _ := newTestEngine(t)

		target := filepath.Join(t.TempDir(), "file")
		writeFile(t, target, "x")

		if _, err := e.ExportAll(target); err == nil {
			t.Error("ExportAll() error = nil for file target")
		}
	})
}

func TestEngine_Import(t *testing.T) {
	t.Run("restores every exported document", func(t *testing.T) {
		e, _ := newTestEngine(t)
		seedEngineData(t, e)

		archivePath, err := e.ExportAll(t.TempDir())
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}

		// Drift the live data after the export.
		if err := e.SaveInventory([]model.InventoryItem{
			{ID: "i1", Name: "Bolt", ShareableCode: "AAA111", Quantity: 3, Tags: []string{}},
		}); err != nil {
			t.Fatalf("SaveInventory() error = %v", err)
		}
		if _, err := e.DeleteSession("s1"); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}

		if err := e.Import(archivePath); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		items, err := e.LoadInventory()
		if err != nil {
			t.Fatalf("LoadInventory() error = %v", err)
		}
		if len(items) != 1 || items[0].Quantity != 10 {
			t.Errorf("inventory after import = %v, want quantity restored to 10", items)
		}
		session, err := e.LoadSession("s1")
		if err != nil || session == nil {
			t.Fatalf("LoadSession() after import = %v, %v", session, err)
		}
		if got := len(e.ListSessions()); got != 1 {
			t.Errorf("ListSessions() len after import = %d, want 1", got)
		}
	})

	t.Run("takes a backup of the current root first", func(t *testing.T) {
		e, root := newTestEngine(t)
		seedEngineData(t, e)

		archivePath, err := e.ExportAll(t.TempDir())
		if err != nil {
			t.Fatalf("ExportAll() error = %v", err)
		}
		if err := e.Import(archivePath); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		matches, err := filepath.Glob(root + "_backup_*")
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) == 0 {
			t.Error("no pre-import backup directory was created")
		}
	})

	t.Run("skips unknown entries and sanitizes session paths", func(t *testing.T) {
		e, root := newTestEngine(t)

		archivePath := filepath.Join(t.TempDir(), "crafted.zip")
		f, err := os.Create(archivePath)
		if err != nil {
			t.Fatal(err)
		}
		zw := zip.NewWriter(f)
		for name, content := range map[string]string{
			"inventory.json":             `[{"id":"i1","tags":[]}]`,
			"random.txt":                 "ignore me",
			"sessions/../../escape.json": `{}`,
			"sessions/session_s9.json":   `{"id":"s9"}`,
			"../outside.json":            `{}`,
		} {
			w, err := zw.Create(name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := w.Write([]byte(content)); err != nil {
				t.Fatal(err)
			}
		}
		if err := zw.Close(); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}

		if err := e.Import(archivePath); err != nil {
			t.Fatalf("Import() error = %v", err)
		}

		items, err := e.LoadInventory()
		if err != nil || len(items) != 1 {
			t.Errorf("inventory = %v, %v; want the one recognized entry", items, err)
		}
		if _, err := os.Stat(filepath.Join(root, "random.txt")); !os.IsNotExist(err) {
			t.Error("unknown entry was extracted")
		}
		if _, err := os.Stat(filepath.Join(filepath.Dir(root), "escape.json")); !os.IsNotExist(err) {
			t.Error("session entry escaped the sessions directory")
		}
		if _, err := os.Stat(filepath.Join(root, "sessions", "session_s9.json")); err != nil {
			t.Errorf("valid session entry was not restored: %v", err)
		}
	})

	t.Run("rejects a missing archive", func(t *testing.T) {
		e, _ := newTestEngine(t)

		if err := e.Import(filepath.Join(t.TempDir(), "nope.zip")); err == nil {
			t.Error("Import() error = nil for missing archive")
		}
	})
}
