package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"data4viz/internal/errors"
	"data4viz/ports"
)

// Store is a file-backed insight snapshot store. Snapshots live under
// <base>/<workspace>/insights/ as versioned JSON files plus a "latest"
// file; saving a new snapshot fully replaces "latest" rather than merging
// with it.
type Store struct {
	baseDir string
}

// NewStore creates a snapshot store rooted at baseDir
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot base directory")
	}
	return &Store{baseDir: baseDir}, nil
}

// Save persists a snapshot, assigning the next version number. The version
// is written both to its own file and to "latest".
func (s *Store) Save(ctx context.Context, key ports.SnapshotKey, snap *ports.Snapshot) (int, error) {
	if snap == nil {
		return 0, errors.InvalidInput("snapshot must not be nil")
	}

	dir := s.insightsDir(key.WorkspaceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, errors.Wrap(err, "failed to create insights directory")
	}

	versions, err := s.Versions(ctx, key)
	if err != nil {
		return 0, err
	}
	next := 1
	if len(versions) > 0 {
		next = versions[len(versions)-1] + 1
	}
	snap.Version = next

	payload, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return 0, errors.Wrap(err, "failed to encode snapshot")
	}

	versionPath := s.filePath(key, next)
	if err := os.WriteFile(versionPath, payload, 0o644); err != nil {
		return 0, errors.Wrapf(err, "failed to write snapshot v%d", next)
	}
	if err := os.WriteFile(s.latestPath(key), payload, 0o644); err != nil {
		return 0, errors.Wrap(err, "failed to write latest snapshot")
	}
	return next, nil
}

// LoadLatest returns the most recently saved snapshot for the key
func (s *Store) LoadLatest(ctx context.Context, key ports.SnapshotKey) (*ports.Snapshot, error) {
	return s.read(s.latestPath(key))
}

// LoadVersion returns one specific snapshot version
func (s *Store) LoadVersion(ctx context.Context, key ports.SnapshotKey, version int) (*ports.Snapshot, error) {
	return s.read(s.filePath(key, version))
}

// Versions lists the stored version numbers for a key, ascending
func (s *Store) Versions(ctx context.Context, key ports.SnapshotKey) ([]int, error) {
	dir := s.insightsDir(key.WorkspaceID)
	prefix := s.fileStem(key) + "_v"

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to list snapshots")
	}

	var versions []int
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		numeric := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
		if v, err := strconv.Atoi(numeric); err == nil {
			versions = append(versions, v)
		}
	}
	sort.Ints(versions)
	return versions, nil
}

// Delete removes every stored version and the latest file for a key
func (s *Store) Delete(ctx context.Context, key ports.SnapshotKey) error {
	versions, err := s.Versions(ctx, key)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := os.Remove(s.filePath(key, v)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to delete snapshot v%d", v)
		}
	}
	if err := os.Remove(s.latestPath(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to delete latest snapshot")
	}
	return nil
}

func (s *Store) read(path string) (*ports.Snapshot, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("insight snapshot")
		}
		return nil, errors.Wrap(err, "failed to read snapshot")
	}
	var snap ports.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, errors.Wrap(err, "failed to decode snapshot")
	}
	return &snap, nil
}

func (s *Store) insightsDir(workspaceID string) string {
	return filepath.Join(s.baseDir, sanitize(workspaceID), "insights")
}

func (s *Store) fileStem(key ports.SnapshotKey) string {
	return fmt.Sprintf("%s_%s", sanitize(key.DatasetID), sanitize(key.DecisionMetric))
}

func (s *Store) filePath(key ports.SnapshotKey, version int) string {
	return filepath.Join(s.insightsDir(key.WorkspaceID), fmt.Sprintf("%s_v%d.json", s.fileStem(key), version))
}

func (s *Store) latestPath(key ports.SnapshotKey) string {
	return filepath.Join(s.insightsDir(key.WorkspaceID), s.fileStem(key)+"_latest.json")
}

// sanitize keeps snapshot file names inside the workspace directory
func sanitize(part string) string {
	part = strings.ReplaceAll(part, "/", "_")
	part = strings.ReplaceAll(part, "\\", "_")
	return part
}
