package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/planar/internal/core/domain"
	"go.trai.ch/zerr"
)

// Disk stores one JSON file per fingerprint under a root directory, fanned
// out by the first two characters of the fingerprint.
type Disk struct {
	root string
}

// NewDisk creates a new Disk cache rooted at dir.
func NewDisk(dir string) *Disk {
	return &Disk{root: filepath.Clean(dir)}
}

// Get retrieves the result stored under fp.
func (d *Disk) Get(_ context.Context, fp domain.Fingerprint) (*domain.PlanarityResult, error) {
	filename, err := d.filename(fp)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Path is built from a validated hex fingerprint
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}

	var res domain.PlanarityResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheUnmarshalFailed.Error()), "path", filename)
	}
	return &res, nil
}

// Put stores result under fp. The file is written to a temporary name and
// renamed into place so concurrent writers and readers never see a torn entry.
func (d *Disk) Put(_ context.Context, fp domain.Fingerprint, result *domain.PlanarityResult) error {
	filename, err := d.filename(fp)
	if err != nil {
		return err
	}

	data, err := json.Marshal(result)
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheMarshalFailed.Error())
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	return nil
}

// Close is a no-op.
func (d *Disk) Close() error {
	return nil
}

func (d *Disk) filename(fp domain.Fingerprint) (string, error) {
	if !isHex(string(fp)) || len(fp) < 3 {
		return "", zerr.With(zerr.Wrap(domain.ErrCacheReadFailed, "fingerprint is not a hex digest"), "fingerprint", string(fp))
	}
	return filepath.Join(d.root, string(fp[:2]), string(fp)+".json"), nil
}

func isHex(s string) bool {
	for i := range len(s) {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
