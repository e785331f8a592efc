package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/NepaliUtsab/blckpinkinventory/internal/encryption"
	"github.com/NepaliUtsab/blckpinkinventory/internal/vault"
)

// ExportOptions controls how Export post-processes the backup archive.
type ExportOptions struct {
	// Encrypt seals the archive with the configured encryptor and removes
	// the plaintext zip. The result carries a ".age" suffix.
	Encrypt bool

	// Push uploads the resulting file to the first configured vault.
	Push bool
}

// Export writes a backup archive of all inventory data into targetDir and
// returns the path of the file produced. Depending on options the archive is
// additionally encrypted and/or pushed to the configured vault.
func (a *App) Export(targetDir string, opts ExportOptions) (string, error) {
	archivePath, err := a.repo.ExportAllData(targetDir)
	if err != nil {
		return "", err
	}
	a.logger.Info("exported archive", "path", archivePath)

	result := archivePath
	if opts.Encrypt {
		result, err = a.encryptArchive(archivePath)
		if err != nil {
			return "", err
		}
		a.logger.Info("encrypted archive", "path", result)
	}

	if opts.Push {
		if err := a.pushToVault(result); err != nil {
			return "", err
		}
		a.logger.Info("pushed archive to vault", "name", filepath.Base(result))
	}

	return result, nil
}

// Import restores inventory data from the given backup file. Files with a
// ".age" suffix are decrypted first, using the passphrase to unlock the
// private key; plain ".zip" archives ignore the passphrase.
func (a *App) Import(path string, passphrase string) error {
	if !strings.HasSuffix(path, ".age") {
		return a.repo.ImportData(path)
	}

	enc, err := encryption.NewFromConfig(a.cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking key: %w", err)
	}

	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	tmp, err := os.CreateTemp("", "bpinv-import-*.zip")
	if err != nil {
		in.Close()
		return fmt.Errorf("creating temp archive: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := dec.Decrypt(in, tmp); err != nil {
		in.Close()
		tmp.Close()
		return fmt.Errorf("decrypting archive: %w", err)
	}
	in.Close()
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp archive: %w", err)
	}

	return a.repo.ImportData(tmpPath)
}

// SetupEncryption generates the age key pair, locking the private key with
// the passphrase. It refuses to overwrite existing key material.
func (a *App) SetupEncryption(passphrase string) error {
	enc, err := encryption.NewFromConfig(a.cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	return enc.Setup(passphrase)
}

// encryptArchive seals the archive at path, removes the plaintext, and
// returns the path of the encrypted file.
func (a *App) encryptArchive(path string) (string, error) {
	enc, err := encryption.NewFromConfig(a.cfg.Encryption)
	if err != nil {
		return "", fmt.Errorf("creating encryptor: %w", err)
	}
	if !enc.IsConfigured() {
		return "", fmt.Errorf("encryption keys not set up: run 'bpinv config setup-keys' first")
	}

	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}

	outPath := path + ".age"
	out, err := os.Create(outPath)
	if err != nil {
		in.Close()
		return "", fmt.Errorf("creating encrypted archive: %w", err)
	}

	if err := enc.Encrypt(in, out); err != nil {
		in.Close()
		out.Close()
		os.Remove(outPath)
		return "", fmt.Errorf("encrypting archive: %w", err)
	}
	in.Close()
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("closing encrypted archive: %w", err)
	}

	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("removing plaintext archive: %w", err)
	}
	return outPath, nil
}

// pushToVault uploads the file at path to the first configured vault.
func (a *App) pushToVault(path string) error {
	if len(a.cfg.Vaults) == 0 {
		return fmt.Errorf("no vaults configured")
	}
	v, err := vault.NewFromConfig(a.cfg.Vaults[0])
	if err != nil {
		return fmt.Errorf("creating vault: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening archive for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	if err := v.Put(filepath.Base(path), f, info.Size()); err != nil {
		return fmt.Errorf("uploading archive to vault: %w", err)
	}
	return nil
}
