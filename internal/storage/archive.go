package storage

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// archiveStamp is the timestamp layout embedded in archive and backup names.
const archiveStamp = "20060102_150405"

// archivePrefix names export archives: blackandpink_backup_<stamp>.zip.
const archivePrefix = "blackandpink_backup_"

// ExportAll writes a zip archive of every current document into targetDir and
// returns the archive path. Each entry is a byte-exact copy of the source
// file at call time; documents that do not exist yet are simply omitted.
func (e *Engine) ExportAll(targetDir string) (string, error) {
	info, err := os.Stat(targetDir)
	if err != nil {
		return "", fmt.Errorf("export target: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("export target is not a directory: %s", targetDir)
	}

	archivePath := filepath.Join(targetDir, archivePrefix+time.Now().Format(archiveStamp)+".zip")
	f, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("creating archive: %w", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	success := false
	defer func() {
		if !success {
			os.Remove(archivePath)
		}
	}()

	entries := []struct {
		src  string
		name string
	}{
		{e.settingsFile(), settingsName},
		{e.inventoryFile(), inventoryName},
		{e.categoriesFile(), categoriesName},
		{e.analyticsFile(), analyticsName},
		{e.sessionsListFile(), sessionsListName},
	}
	for _, entry := range entries {
		if err := addFileToZip(zw, entry.src, entry.name); err != nil {
			return "", err
		}
	}

	sessionFiles, err := os.ReadDir(e.sessionsDir())
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("listing sessions: %w", err)
	}
	for _, de := range sessionFiles {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".json") {
			continue
		}
		src := filepath.Join(e.sessionsDir(), de.Name())
		if err := addFileToZip(zw, src, sessionsDirName+"/"+de.Name()); err != nil {
			return "", err
		}
	}

	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("finalizing archive: %w", err)
	}

	success = true
	return archivePath, nil
}

// addFileToZip copies a source file into the archive under entryName.
// Missing sources are skipped, not errors.
func addFileToZip(zw *zip.Writer, src, entryName string) error {
	f, err := os.Open(src)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()

	w, err := zw.Create(entryName)
	if err != nil {
		return fmt.Errorf("creating archive entry %s: %w", entryName, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("writing archive entry %s: %w", entryName, err)
	}
	return nil
}

// Import restores documents from an archive produced by ExportAll. Before
// touching any live file the entire storage root is copied into a timestamped
// sibling backup directory; that copy is a best-effort safety net and its
// failure does not abort the import. Any error while restoring entries aborts
// the whole import. Unrecognized entry names are skipped.
func (e *Engine) Import(archivePath string) error {
	info, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("import archive: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("import archive is a directory: %s", archivePath)
	}

	backupDir := e.root + "_backup_" + time.Now().Format(archiveStamp)
	if err := copyTree(e.root, backupDir); err != nil {
		e.logger.Warn("pre-import backup failed", "dir", backupDir, "error", err)
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()

	for _, entry := range zr.File {
		dest := e.entryDestination(entry.Name)
		if dest == "" {
			continue
		}
		if err := extractEntry(entry, dest); err != nil {
			return fmt.Errorf("restoring %s: %w", entry.Name, err)
		}
	}

	return nil
}

// entryDestination maps a fixed archive entry name back to its file under the
// active root. Unknown names map to "".
func (e *Engine) entryDestination(name string) string {
	switch name {
	case settingsName:
		return e.settingsFile()
	case inventoryName:
		return e.inventoryFile()
	case categoriesName:
		return e.categoriesFile()
	case analyticsName:
		return e.analyticsFile()
	case sessionsListName:
		return e.sessionsListFile()
	}
	if rest, ok := strings.CutPrefix(name, sessionsDirName+"/"); ok && rest != "" {
		// Base() drops any path the archive tries to smuggle in.
		return filepath.Join(e.sessionsDir(), filepath.Base(rest))
	}
	return ""
}

// extractEntry writes one archive entry to dest, creating parent directories
// as needed and overwriting existing content.
func extractEntry(entry *zip.File, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("creating parent directory: %w", err)
	}

	r, err := entry.Open()
	if err != nil {
		return fmt.Errorf("opening entry: %w", err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("writing file: %w", err)
	}
	return f.Close()
}

// copyTree recursively copies src into dst, overwriting on conflict. Paths
// under dst itself are skipped so a destination nested inside src cannot
// recurse into itself.
func copyTree(src, dst string) error {
	srcAbs, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	dstAbs, err := filepath.Abs(dst)
	if err != nil {
		return err
	}

	return filepath.WalkDir(srcAbs, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == dstAbs || strings.HasPrefix(path, dstAbs+string(filepath.Separator)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(srcAbs, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dstAbs, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}
