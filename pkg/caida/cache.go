package caida

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/golang/snappy"
)

// WriteCache stores the parsed dataset as a snappy-compressed gob snapshot,
// so repeated runs skip the text parse. The cache is purely derived data;
// deleting it is always safe.
func (d *Dataset) WriteCache(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("caida: creating cache: %w", err)
	}
	defer f.Close()

	w := snappy.NewBufferedWriter(f)
	if err := gob.NewEncoder(w).Encode(d); err != nil {
		return fmt.Errorf("caida: encoding cache: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("caida: flushing cache: %w", err)
	}
	return nil
}

// ReadCache loads a dataset snapshot written by WriteCache.
func ReadCache(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("caida: opening cache: %w", err)
	}
	defer f.Close()

	d := &Dataset{}
	if err := gob.NewDecoder(snappy.NewReader(f)).Decode(d); err != nil {
		return nil, fmt.Errorf("caida: decoding cache: %w", err)
	}
	return d, nil
}

// Load parses the dataset at srcPath, using the snapshot at cachePath when
// it is at least as new as the source. A missing or stale cache is rebuilt;
// a cache that fails to decode falls back to the text parse.
func Load(srcPath, cachePath string) (*Dataset, error) {
	if cachePath == "" {
		return ParseFile(srcPath)
	}

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return nil, fmt.Errorf("caida: stat dataset: %w", err)
	}
	if cacheInfo, err := os.Stat(cachePath); err == nil && !cacheInfo.ModTime().Before(srcInfo.ModTime()) {
		if d, err := ReadCache(cachePath); err == nil {
			return d, nil
		}
	}

	d, err := ParseFile(srcPath)
	if err != nil {
		return nil, err
	}
	if err := d.WriteCache(cachePath); err != nil {
		return nil, err
	}
	return d, nil
}
