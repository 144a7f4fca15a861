package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"data4viz/domain/dataset"
	"data4viz/internal/errors"
)

// Storage is a file-backed dataset store. Each workspace owns a datasets
// directory under the base path; dataset identifiers are sanitized file
// names.
type Storage struct {
	baseDir string
}

// NewStorage creates a dataset store rooted at baseDir
func NewStorage(baseDir string) (*Storage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create dataset base directory")
	}
	return &Storage{baseDir: baseDir}, nil
}

// Save writes an uploaded dataset into the workspace directory. Only CSV
// and XLSX files are accepted; anything else is rejected before touching
// disk.
func (s *Storage) Save(ctx context.Context, workspaceID, name string, r io.Reader) (*dataset.Info, error) {
	safe := sanitizeName(name)
	if safe == "" {
		return nil, errors.InvalidInput("dataset name must not be empty")
	}
	if !isSupportedExtension(safe) {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported dataset format %q (want .csv or .xlsx)", filepath.Ext(safe)))
	}

	dir := s.datasetsDir(workspaceID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create workspace datasets directory")
	}

	path := filepath.Join(dir, safe)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create dataset file %s", safe)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(err, "failed to write dataset file %s", safe)
	}
	if size == 0 {
		os.Remove(path)
		return nil, errors.InvalidInput("dataset file is empty (0 bytes)")
	}

	info := &dataset.Info{Name: safe, SizeByte: size}
	if table, err := s.Load(ctx, workspaceID, safe); err == nil {
		info.Rows = table.RowCount()
		info.Columns = len(table.Columns)
	}
	return info, nil
}

// Load reads a dataset into a column-oriented table
func (s *Storage) Load(ctx context.Context, workspaceID, name string) (*dataset.Table, error) {
	path, err := s.resolve(workspaceID, name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(fmt.Sprintf("dataset %q", name))
		}
		return nil, errors.Wrapf(err, "failed to open dataset %s", name)
	}
	defer f.Close()

	var rows [][]string
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		rows, err = readExcelRows(f)
	} else {
		rows, err = readCSVRows(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse dataset %s", name)
	}

	return tableFromRows(sanitizeName(name), rows)
}

// List returns metadata for every dataset in the workspace, sorted by name
func (s *Storage) List(ctx context.Context, workspaceID string) ([]dataset.Info, error) {
	dir := s.datasetsDir(workspaceID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []dataset.Info{}, nil
		}
		return nil, errors.Wrap(err, "failed to list workspace datasets")
	}

	infos := make([]dataset.Info, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !isSupportedExtension(entry.Name()) {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, dataset.Info{Name: entry.Name(), SizeByte: stat.Size()})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes a dataset file
func (s *Storage) Delete(ctx context.Context, workspaceID, name string) error {
	path, err := s.resolve(workspaceID, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound(fmt.Sprintf("dataset %q", name))
		}
		return errors.Wrapf(err, "failed to delete dataset %s", name)
	}
	return nil
}

// Hash computes a content hash for staleness detection on snapshots
func (s *Storage) Hash(ctx context.Context, workspaceID, name string) (string, error) {
	path, err := s.resolve(workspaceID, name)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NotFound(fmt.Sprintf("dataset %q", name))
		}
		return "", errors.Wrapf(err, "failed to open dataset %s", name)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "failed to hash dataset %s", name)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Storage) datasetsDir(workspaceID string) string {
	return filepath.Join(s.baseDir, sanitizeName(workspaceID), "datasets")
}

func (s *Storage) resolve(workspaceID, name string) (string, error) {
	safe := sanitizeName(name)
	if safe == "" {
		return "", errors.InvalidInput("dataset name must not be empty")
	}
	return filepath.Join(s.datasetsDir(workspaceID), safe), nil
}

// sanitizeName strips path separators so identifiers cannot escape the
// workspace directory
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

func isSupportedExtension(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	default:
		return false
	}
}

// tableFromRows converts header+rows into a column-oriented table. Ragged
// rows are padded with empty cells; surplus cells are dropped. Duplicate
// header names are rejected, they would collapse into one cell column and
// double every row.
func tableFromRows(name string, rows [][]string) (*dataset.Table, error) {
	if len(rows) == 0 {
		return nil, errors.InvalidInput("dataset has no header row")
	}

	header := make([]string, 0, len(rows[0]))
	seen := make(map[string]struct{}, len(rows[0]))
	for _, h := range rows[0] {
		col := strings.TrimSpace(h)
		if _, dup := seen[col]; dup {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate column name %q in header", col))
		}
		seen[col] = struct{}{}
		header = append(header, col)
	}

	cells := make(map[string][]string, len(header))
	for _, col := range header {
		cells[col] = make([]string, 0, len(rows)-1)
	}

	for _, row := range rows[1:] {
		for i, col := range header {
			value := ""
			if i < len(row) {
				value = strings.TrimSpace(row[i])
			}
			cells[col] = append(cells[col], value)
		}
	}

	return &dataset.Table{Name: name, Columns: header, Cells: cells}, nil
}
