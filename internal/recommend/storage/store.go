// Plotmatch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plotmatch

package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/plotmatch/internal/recommend/storage/blob"
)

const (
	// fileMagic opens every artifact file.
	fileMagic = "PMAR"

	// formatVersion is bumped when the envelope layout changes.
	formatVersion uint16 = 1

	headerLen = len(fileMagic) + 2

	fileExt = ".art"
)

// ArtifactMetadata describes one stored artifact version.
type ArtifactMetadata struct {
	// Name is the artifact kind, e.g. "movies" or "similarity".
	Name string `json:"name"`

	// Version increases by one on every save of the same name.
	Version int `json:"version"`

	// CreatedAt is when the payload was produced.
	CreatedAt time.Time `json:"created_at"`

	// SavedAt is when the payload was written.
	SavedAt time.Time `json:"saved_at"`

	// Rows is the corpus size the artifact was built from.
	Rows int `json:"rows"`

	// Fingerprint identifies the corpus and vectorizer settings used.
	Fingerprint string `json:"fingerprint"`

	// Checksum is the SHA-256 of the uncompressed payload.
	Checksum string `json:"checksum"`

	// Compression is the codec applied to the payload.
	Compression Compression `json:"compression"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	// BuildDurationMS is how long producing the payload took.
	BuildDurationMS int64 `json:"build_duration_ms"`
}

// storedFile is the gob envelope written after the header.
type storedFile struct {
	Metadata       ArtifactMetadata
	CompressedData []byte
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithCompression sets the codec for new artifacts. Existing artifacts are
// read with whatever codec they were written with.
func WithCompression(c Compression) StoreOption {
	return func(s *Store) {
		s.compression = c
	}
}

// Store persists versioned artifacts on a blob backend.
type Store struct {
	backend     blob.Backend
	compression Compression

	mu sync.RWMutex
	// latest version per artifact name
	versions map[string]int
}

// NewStore scans backend for existing artifacts.
func NewStore(ctx context.Context, backend blob.Backend, opts ...StoreOption) (*Store, error) {
	s := &Store{
		backend:     backend,
		compression: CompressionZstd,
		versions:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.scan(ctx); err != nil {
		return nil, fmt.Errorf("scan existing artifacts: %w", err)
	}
	return s, nil
}

// Backend returns the underlying blob backend.
func (s *Store) Backend() blob.Backend {
	return s.backend
}

func (s *Store) scan(ctx context.Context) error {
	keys, err := s.backend.List(ctx, "")
	if err != nil {
		return err
	}
	for _, key := range keys {
		name, version := parseArtifactKey(key)
		if name == "" {
			continue
		}
		if current, ok := s.versions[name]; !ok || version > current {
			s.versions[name] = version
		}
	}
	return nil
}

// artifactKey returns the blob key for a version, e.g. "similarity_v3.art".
func artifactKey(name string, version int) string {
	return fmt.Sprintf("%s_v%d%s", name, version, fileExt)
}

// parseArtifactKey is the inverse of artifactKey. It returns "" for keys
// that are not artifacts.
func parseArtifactKey(key string) (name string, version int) {
	base, ok := strings.CutSuffix(key, fileExt)
	if !ok {
		return "", 0
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[idx+2:])
	if err != nil || v <= 0 {
		return "", 0
	}
	return base[:idx], v
}

// Save encodes data and writes it as the next version of name. It returns
// the metadata as stored.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, data any, meta ArtifactMetadata) (*ArtifactMetadata, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return nil, fmt.Errorf("invalid artifact name %q", name)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}
	raw := buf.Bytes()

	hash := sha256.Sum256(raw)
	compressed, err := compress(s.compression, raw)
	if err != nil {
		return nil, fmt.Errorf("compress %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.versions[name] + 1
	meta.Name = name
	meta.Version = version
	meta.Checksum = hex.EncodeToString(hash[:])
	meta.Compression = s.compression
	meta.SizeBytes = int64(len(compressed))
	meta.SavedAt = time.Now().UTC()
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = meta.SavedAt
	}

	var file bytes.Buffer
	file.WriteString(fileMagic)
	_ = binary.Write(&file, binary.BigEndian, formatVersion) //nolint:errcheck // bytes.Buffer writes do not fail
	if err := gob.NewEncoder(&file).Encode(storedFile{Metadata: meta, CompressedData: compressed}); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}

	if err := s.backend.Put(ctx, artifactKey(name, version), file.Bytes()); err != nil {
		return nil, fmt.Errorf("write %s v%d: %w", name, version, err)
	}
	s.versions[name] = version

	return &meta, nil
}

// readEnvelope fetches and validates the header of one artifact file.
func (s *Store) readEnvelope(ctx context.Context, name string, version int) (*storedFile, error) {
	data, err := s.backend.Get(ctx, artifactKey(name, version))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s v%d", ErrNotFound, name, version)
		}
		return nil, fmt.Errorf("read %s v%d: %w", name, version, err)
	}

	if len(data) < headerLen || string(data[:len(fileMagic)]) != fileMagic {
		return nil, fmt.Errorf("%w: %s v%d: bad header", ErrCorrupt, name, version)
	}
	if v := binary.BigEndian.Uint16(data[len(fileMagic):headerLen]); v != formatVersion {
		return nil, fmt.Errorf("%w: %s v%d: unsupported format version %d", ErrCorrupt, name, version, v)
	}

	var sf storedFile
	if err := gob.NewDecoder(bytes.NewReader(data[headerLen:])).Decode(&sf); err != nil {
		return nil, fmt.Errorf("%w: %s v%d: %v", ErrCorrupt, name, version, err)
	}
	return &sf, nil
}

// Load decodes the given version of name into target. Version 0 loads the
// latest. Missing artifacts return ErrNotFound; damaged ones return an
// error matching ErrCorrupt.
func (s *Store) Load(ctx context.Context, name string, version int, target any) (*ArtifactMetadata, error) {
	if version == 0 {
		latest, ok := s.LatestVersion(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		version = latest
	}

	sf, err := s.readEnvelope(ctx, name, version)
	if err != nil {
		return nil, err
	}

	raw, err := decompress(sf.Metadata.Compression, sf.CompressedData)
	if err != nil {
		return nil, fmt.Errorf("%w: %s v%d: decompress: %v", ErrCorrupt, name, version, err)
	}

	hash := sha256.Sum256(raw)
	if actual := hex.EncodeToString(hash[:]); actual != sf.Metadata.Checksum {
		return nil, &ChecksumMismatchError{
			Name:     name,
			Version:  version,
			Expected: sf.Metadata.Checksum,
			Actual:   actual,
		}
	}

	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(target); err != nil {
		return nil, fmt.Errorf("%w: %s v%d: decode: %v", ErrCorrupt, name, version, err)
	}
	return &sf.Metadata, nil
}

// LatestVersion returns the newest version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.versions[name]
	return v, ok
}

// ListArtifacts returns metadata for the latest version of every artifact,
// sorted by name. Unreadable files are skipped.
func (s *Store) ListArtifacts(ctx context.Context) ([]ArtifactMetadata, error) {
	s.mu.RLock()
	latest := make(map[string]int, len(s.versions))
	for k, v := range s.versions {
		latest[k] = v
	}
	s.mu.RUnlock()

	out := make([]ArtifactMetadata, 0, len(latest))
	for name, version := range latest {
		sf, err := s.readEnvelope(ctx, name, version)
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// versionsOf lists stored versions of name, newest first.
func (s *Store) versionsOf(ctx context.Context, name string) ([]int, error) {
	keys, err := s.backend.List(ctx, name+"_v")
	if err != nil {
		return nil, err
	}
	var versions []int
	for _, key := range keys {
		n, v := parseArtifactKey(key)
		if n == name {
			versions = append(versions, v)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// Delete removes one version of name.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, artifactKey(name, version)); err != nil {
		return fmt.Errorf("delete %s v%d: %w", name, version, err)
	}
	if s.versions[name] != version {
		return nil
	}

	remaining, err := s.versionsOf(ctx, name)
	if err != nil {
		return fmt.Errorf("list %s versions: %w", name, err)
	}
	if len(remaining) == 0 {
		delete(s.versions, name)
	} else {
		s.versions[name] = remaining[0]
	}
	return nil
}

// Prune keeps the newest keep versions of name and deletes the rest.
func (s *Store) Prune(ctx context.Context, name string, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 1 {
		keep = 1
	}
	versions, err := s.versionsOf(ctx, name)
	if err != nil {
		return fmt.Errorf("list %s versions: %w", name, err)
	}
	for _, v := range versions[min(keep, len(versions)):] {
		if err := s.backend.Delete(ctx, artifactKey(name, v)); err != nil {
			return fmt.Errorf("prune %s v%d: %w", name, v, err)
		}
	}
	return nil
}
