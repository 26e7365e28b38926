// Package fs stores spool job results as JSON files.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bft-labs/storytext/internal/domain"
)

// ResultSuffix is appended to the job ID to name its result file.
const ResultSuffix = ".result.json"

// ResultFileRepository implements ports.ResultRepository with one JSON
// file per job in an outbox directory.
type ResultFileRepository struct {
	dir string
}

// NewResultFileRepository creates a repository writing into dir.
func NewResultFileRepository(dir string) *ResultFileRepository {
	return &ResultFileRepository{dir: dir}
}

// Save writes the result atomically: readers of the outbox see either the
// previous file or the complete new one.
func (r *ResultFileRepository) Save(ctx context.Context, result domain.JobResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := fileName(result.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(r.dir, "."+name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), filepath.Join(r.dir, name))
}

// Load reads a previously saved result.
func (r *ResultFileRepository) Load(ctx context.Context, id string) (domain.JobResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.JobResult{}, err
	}
	name, err := fileName(id)
	if err != nil {
		return domain.JobResult{}, err
	}
	data, err := os.ReadFile(filepath.Join(r.dir, name))
	if err != nil {
		return domain.JobResult{}, err
	}
	var result domain.JobResult
	if err := json.Unmarshal(data, &result); err != nil {
		return domain.JobResult{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return result, nil
}

// Path returns the file a result with the given ID is written to.
func (r *ResultFileRepository) Path(id string) string {
	return filepath.Join(r.dir, id+ResultSuffix)
}

// fileName rejects IDs that would escape the outbox directory.
func fileName(id string) (string, error) {
	if err := domain.ValidateJobID(id); err != nil {
		return "", err
	}
	return id + ResultSuffix, nil
}
