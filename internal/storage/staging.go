package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// commit stages a group of document writes so they land together. Each
// document is written to a temp file in its destination directory first;
// apply swaps every temp file into place with a rename. Nothing is visible at
// the destination paths until every staging write has succeeded.
type commit struct {
	renames []rename
}

type rename struct {
	tmp  string
	dest string
}

// stage writes data to a temp file next to dest and queues the swap.
func (c *commit) stage(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.discard()
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".staged-*")
	if err != nil {
		c.discard()
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		c.discard()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		c.discard()
		return fmt.Errorf("closing temp file: %w", err)
	}

	c.renames = append(c.renames, rename{tmp: tmpPath, dest: dest})
	return nil
}

// stageJSON marshals v as a pretty-printed document and stages it.
func (c *commit) stageJSON(dest string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		c.discard()
		return fmt.Errorf("encoding %s: %w", filepath.Base(dest), err)
	}
	return c.stage(dest, append(data, '\n'))
}

// apply swaps all staged files into place. A rename failure aborts and
// discards the remaining temp files; renames already performed stay.
func (c *commit) apply() error {
	for i, r := range c.renames {
		if err := os.Rename(r.tmp, r.dest); err != nil {
			for _, rest := range c.renames[i:] {
				os.Remove(rest.tmp)
			}
			return fmt.Errorf("swapping %s into place: %w", r.dest, err)
		}
	}
	c.renames = nil
	return nil
}

// discard removes all staged temp files.
func (c *commit) discard() {
	for _, r := range c.renames {
		os.Remove(r.tmp)
	}
	c.renames = nil
}
