// Package vault pushes finished backup archives to off-machine (or at least
// off-root) destinations so a disk failure does not take the backups with it.
package vault

import (
	"fmt"
	"io"

	"github.com/NepaliUtsab/blckpinkinventory/internal/config"
)

// Vault stores backup archives by name. Archives are opaque blobs; the vault
// never inspects them.
type Vault interface {
	// Put stores the archive content under name, overwriting any previous
	// archive with the same name. size is the number of bytes that will be
	// read from r.
	Put(name string, r io.Reader, size int64) error

	// List returns the names of stored archives.
	List() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly
	// configured.
	ValidateSetup() error
}

// NewFromConfig creates a Vault implementation based on the vault config type.
func NewFromConfig(cfg config.VaultConfig) (Vault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "s3":
		return NewS3Vault(cfg)
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
