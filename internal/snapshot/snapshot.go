// Package snapshot stores the raw play-by-play HTML of each game as a
// zstd-compressed file so games can be re-parsed without a browser.
package snapshot

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zstd"
)

// ErrParse marks snapshots that exist but cannot be decoded.
var ErrParse = errors.New("snapshot decode failed")

const ext = ".html.zst"

// PathFor returns the snapshot file of gameID under dir.
func PathFor(dir, gameID string) string {
	return filepath.Join(dir, gameID+ext)
}

// Save compresses html into dir and returns the file path.
func Save(dir, gameID, html string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "create snapshot dir %s", dir)
	}
	path := PathFor(dir, gameID)

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return "", errors.Wrap(err, "zstd encoder")
	}
	defer enc.Close()
	data := enc.EncodeAll([]byte(html), nil)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "write snapshot %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", errors.Wrapf(err, "rename snapshot %s", path)
	}
	return path, nil
}

// Load reads a snapshot. Files ending in .zst are decompressed; anything else
// is read as plain HTML.
func Load(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "open snapshot %s", path)
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return "", errors.Mark(errors.Wrapf(err, "zstd reader %s", path), ErrParse)
		}
		defer dec.Close()
		src = dec
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, src); err != nil {
		return "", errors.Mark(errors.Wrapf(err, "decode snapshot %s", path), ErrParse)
	}
	return buf.String(), nil
}

// GameID derives the game id from a snapshot file name.
func GameID(path string) string {
	base := filepath.Base(path)
	for _, suffix := range []string{ext, ".html"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
