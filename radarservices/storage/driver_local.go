package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/lunagic/radar/radarservices/vault"
)

// NewDriverLocal stores files under directory. When vault is set file
// contents are encrypted at rest.
func NewDriverLocal(
	directory string,
	vault *vault.Vault,
) (*DriverLocal, error) {
	absolute, err := filepath.Abs(directory)
	if err != nil {
		return nil, err
	}

	return &DriverLocal{
		Directory: absolute,
		Vault:     vault,
	}, nil
}

type DriverLocal struct {
	Directory string
	Vault     *vault.Vault
}

func (driver *DriverLocal) absolutePath(filePath string) (string, error) {
	cleaned, err := cleanPath(filePath)
	if err != nil {
		return "", err
	}

	return filepath.Join(driver.Directory, filepath.FromSlash(cleaned)), nil
}

func (driver *DriverLocal) Get(ctx context.Context, filePath string) (io.ReadCloser, error) {
	absolute, err := driver.absolutePath(filePath)
	if err != nil {
		return nil, err
	}

	if driver.Vault == nil {
		file, err := os.Open(absolute)
		if err != nil {
			return nil, notFound(err)
		}

		return file, nil
	}

	sealed, err := os.ReadFile(absolute)
	if err != nil {
		return nil, notFound(err)
	}

	contents, err := driver.Vault.Decrypt(sealed)
	if err != nil {
		return nil, err
	}

	return io.NopCloser(bytes.NewReader(contents)), nil
}

func (driver *DriverLocal) Put(ctx context.Context, filePath string, payload io.Reader) error {
	absolute, err := driver.absolutePath(filePath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(absolute), 0o755); err != nil {
		return err
	}

	if driver.Vault != nil {
		contents, err := io.ReadAll(payload)
		if err != nil {
			return err
		}

		sealed, err := driver.Vault.Encrypt(contents)
		if err != nil {
			return err
		}

		payload = bytes.NewReader(sealed)
	}

	file, err := os.Create(absolute)
	if err != nil {
		return err
	}

	if _, err := io.Copy(file, payload); err != nil {
		_ = file.Close()
		return err
	}

	return file.Close()
}

func (driver *DriverLocal) Delete(ctx context.Context, filePath string) error {
	absolute, err := driver.absolutePath(filePath)
	if err != nil {
		return err
	}

	if err := os.Remove(absolute); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return err
	}

	return nil
}

func (driver *DriverLocal) Exists(ctx context.Context, filePath string) (bool, error) {
	absolute, err := driver.absolutePath(filePath)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(absolute); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (driver *DriverLocal) List(ctx context.Context, directory string) ([]string, error) {
	root, err := driver.absolutePath(directory)
	if err != nil {
		return nil, err
	}

	paths := []string{}
	err = filepath.WalkDir(root, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && filePath == root {
				return filepath.SkipDir
			}

			return err
		}

		if entry.IsDir() {
			return nil
		}

		relative, err := filepath.Rel(driver.Directory, filePath)
		if err != nil {
			return err
		}

		paths = append(paths, filepath.ToSlash(relative))

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(paths)

	return paths, nil
}

func (driver *DriverLocal) IsReady(ctx context.Context) error {
	info, err := os.Stat(driver.Directory)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return &os.PathError{Op: "stat", Path: driver.Directory, Err: errors.New("not a directory")}
	}

	return nil
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrNotFound, err)
	}

	return err
}
