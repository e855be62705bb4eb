// Package file provides file-based persistence for workflows, stages, custom
// fields, validation rules, candidates and stage history. Intended for
// development and tests; each entity is stored as one JSON document.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/talentflow/talentflow/pkg/persistence"
)

// Persistence implements persistence.Persistence on the local file system.
type Persistence struct {
	root string

	// InTransaction serializes all writers behind one lock and emulates
	// rollback with a directory snapshot. Enough to keep two concurrent
	// transition requests for the same candidate from racing past validation.
	mu sync.Mutex

	workflows           *workflowRepository
	stages              *stageRepository
	customFields        *customFieldRepository
	fieldConfigurations *fieldConfigurationRepository
	validationRules     *validationRuleRepository
	candidates          *candidateRepository
	stageRecords        *stageRecordRepository
}

// NewPersistence creates a file persistence layer rooted at the given
// directory. Accepts a plain path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:                cleanRoot,
		workflows:           &workflowRepository{store: newStore(cleanRoot, "workflows")},
		stages:              &stageRepository{store: newStore(cleanRoot, "stages")},
		customFields:        &customFieldRepository{store: newStore(cleanRoot, "custom_fields")},
		fieldConfigurations: &fieldConfigurationRepository{store: newStore(cleanRoot, "field_configurations")},
		validationRules:     &validationRuleRepository{store: newStore(cleanRoot, "validation_rules")},
		candidates:          &candidateRepository{store: newStore(cleanRoot, "candidates")},
		stageRecords:        &stageRecordRepository{store: newStore(cleanRoot, "stage_records")},
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflows
}

func (fp *Persistence) StageRepository() persistence.StageRepository {
	return fp.stages
}

func (fp *Persistence) CustomFieldRepository() persistence.CustomFieldRepository {
	return fp.customFields
}

func (fp *Persistence) FieldConfigurationRepository() persistence.FieldConfigurationRepository {
	return fp.fieldConfigurations
}

func (fp *Persistence) ValidationRuleRepository() persistence.ValidationRuleRepository {
	return fp.validationRules
}

func (fp *Persistence) CandidateRepository() persistence.CandidateRepository {
	return fp.candidates
}

func (fp *Persistence) StageRecordRepository() persistence.StageRecordRepository {
	return fp.stageRecords
}

// InTransaction serializes fn behind the persistence-wide lock. Rollback is
// emulated by snapshotting the data directory up front and restoring it when
// fn fails, so a failed multi-document sequence never leaves partial writes.
func (fp *Persistence) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	fp.mu.Lock()
	defer fp.mu.Unlock()

	snapshot, err := fp.snapshot()
	if err != nil {
		return err
	}

	defer func() {
		_ = os.RemoveAll(snapshot)
	}()

	if err := fn(ctx); err != nil {
		if restoreErr := fp.restore(snapshot); restoreErr != nil {
			return fmt.Errorf("rollback after %w failed: %w", err, restoreErr)
		}

		return err
	}

	return nil
}

// snapshot copies the whole data directory into a fresh temp directory.
func (fp *Persistence) snapshot() (string, error) {
	dir, err := os.MkdirTemp("", "talentflow-tx-")
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		// Nothing written yet, an empty snapshot restores to empty.
		return dir, nil
	}

	if err := os.CopyFS(dir, os.DirFS(fp.root)); err != nil {
		_ = os.RemoveAll(dir)

		return "", fmt.Errorf("failed to snapshot %s: %w", fp.root, err)
	}

	return dir, nil
}

// restore clears the data directory and copies the snapshot back.
func (fp *Persistence) restore(snapshot string) error {
	entries, err := os.ReadDir(fp.root)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to list %s: %w", fp.root, err)
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(fp.root, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear %s: %w", fp.root, err)
		}
	}

	if err := os.CopyFS(fp.root, os.DirFS(snapshot)); err != nil {
		return fmt.Errorf("failed to restore %s from snapshot: %w", fp.root, err)
	}

	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Close performs any necessary cleanup. Nothing to clean up for files.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// store handles raw JSON document storage for one collection directory.
type store struct {
	dir string
}

func newStore(root, collection string) *store {
	return &store{dir: filepath.Join(root, collection)}
}

func (s *store) read(id string, out any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", id, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", id, err)
	}

	return true, nil
}

func (s *store) write(id string, in any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", id, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, id+".json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", id, err)
	}

	return nil
}

func (s *store) delete(id string) (bool, error) {
	err := os.Remove(filepath.Join(s.dir, id+".json"))
	if os.IsNotExist(err) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to delete %s: %w", id, err)
	}

	return true, nil
}

// ids lists every document ID in the collection.
func (s *store) ids() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}

	return ids, nil
}
