package sitetree

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebase/internal/foundation/errors"
)

// Fingerprint is the content identity of a tree.
type Fingerprint struct {
	Files int    `json:"files"`
	Hash  string `json:"hash"`
}

// ContentHash hashes the sorted relative paths and file contents under root. The
// manifest file itself is skipped so writing it does not change the result.
func ContentHash(root string) (Fingerprint, error) {
	files, err := Files(root)
	if err != nil {
		return Fingerprint{}, err
	}
	h := sha256.New()
	n := 0
	for _, rel := range files {
		if rel == ManifestFile {
			continue
		}
		sum, err := fileHash(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return Fingerprint{}, errors.WrapError(err, errors.CategoryFileSystem, "hash file").
				WithContext("path", rel).Build()
		}
		_, _ = io.WriteString(h, rel)
		_, _ = h.Write([]byte{0})
		_, _ = h.Write(sum)
		n++
	}
	return Fingerprint{Files: n, Hash: hex.EncodeToString(h.Sum(nil))}, nil
}

func fileHash(p string) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}
