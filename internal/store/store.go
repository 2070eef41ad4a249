// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists candidate and evaluation records as one YAML file
// per record under a root directory:
//
//	<root>/candidates/<id>.yaml
//	<root>/evaluations/<candidate_id>_<evaluation_id>.yaml
//	<root>/cv_cache/<hash>.md
//
// Writes are atomic (temp file, fsync, rename; new records are linked into
// place so a name never holds partial content). Scans skip records that
// cannot be read back and log them instead of failing.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// Kind names a record collection and its directory.
type Kind string

const (
	KindCandidates  Kind = "candidates"
	KindEvaluations Kind = "evaluations"
)

const (
	cacheDir   = "cv_cache"
	recordExt  = ".yaml"
	maxIDTries = 8
)

var idPattern = regexp.MustCompile(`^[0-9a-f]{12}$`)

// newID returns 48 random bits as 12 lowercase hex characters. Tests
// replace it to force collisions.
var newID = func() string {
	u := uuid.New()
	return hex.EncodeToString(u[:6])
}

// Store is a file-per-record store rooted at a directory.
type Store struct {
	root  string
	log   *zap.Logger
	locks *keyedMutex
}

// New opens the store at root, creating its directories as needed.
func New(root string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	for _, dir := range []string{string(KindCandidates), string(KindEvaluations), cacheDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}
	return &Store{root: root, log: log, locks: newKeyedMutex()}, nil
}

// Root returns the store's root directory.
func (s *Store) Root() string { return s.root }

// Lock serializes read-modify-write sequences on one candidate. The
// returned function releases the lock.
func (s *Store) Lock(candidateID string) func() {
	return s.locks.Lock(candidateID)
}

// --- candidates ---

// CreateCandidate assigns a fresh id to c, persists it, and returns the id.
func (s *Store) CreateCandidate(c *types.Candidate) (string, error) {
	id, err := s.create(KindCandidates, func(id string) string { return id }, func(id string) any {
		c.ID = id
		return c
	})
	if err != nil {
		c.ID = ""
		return "", err
	}
	return id, nil
}

// Candidate loads one candidate. It returns an error wrapping
// types.ErrNotFound when no such record exists.
func (s *Store) Candidate(id string) (*types.Candidate, error) {
	if !idPattern.MatchString(id) {
		return nil, fmt.Errorf("candidate %q: %w", id, types.ErrNotFound)
	}
	var c types.Candidate
	if err := s.read(KindCandidates, id, &c); err != nil {
		return nil, fmt.Errorf("candidate %s: %w", id, err)
	}
	return &c, nil
}

// PutCandidate overwrites an existing candidate record.
func (s *Store) PutCandidate(c *types.Candidate) error {
	if !idPattern.MatchString(c.ID) {
		return fmt.Errorf("candidate %q: %w", c.ID, types.ErrNotFound)
	}
	if _, err := os.Stat(s.path(KindCandidates, c.ID)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("candidate %s: %w", c.ID, types.ErrNotFound)
		}
		return fmt.Errorf("stat candidate %s: %w", c.ID, err)
	}
	return s.write(KindCandidates, c.ID, c)
}

// DeleteCandidate removes a candidate and every evaluation that belongs to
// it. It reports false when the candidate does not exist.
func (s *Store) DeleteCandidate(ctx context.Context, id string) (bool, error) {
	if !idPattern.MatchString(id) {
		return false, nil
	}
	names, err := s.names(KindEvaluations, id+"_")
	if err != nil {
		return false, err
	}
	existed, err := s.remove(KindCandidates, id)
	if err != nil || !existed {
		return existed, err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		if _, err := s.remove(KindEvaluations, name); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Candidates returns every readable candidate in id order.
func (s *Store) Candidates(ctx context.Context) ([]types.Candidate, error) {
	return scan[types.Candidate](ctx, s, KindCandidates, "")
}

// --- evaluations ---

// CreateEvaluation assigns a fresh id to e, persists it under its
// candidate, and returns the id.
func (s *Store) CreateEvaluation(e *types.Evaluation) (string, error) {
	if !idPattern.MatchString(e.CandidateID) {
		return "", fmt.Errorf("candidate %q: %w", e.CandidateID, types.ErrNotFound)
	}
	prefix := e.CandidateID + "_"
	id, err := s.create(KindEvaluations, func(id string) string { return prefix + id }, func(id string) any {
		e.ID = id
		return e
	})
	if err != nil {
		e.ID = ""
		return "", err
	}
	return id, nil
}

// DeleteEvaluation removes one evaluation record. It reports false when
// the record does not exist.
func (s *Store) DeleteEvaluation(candidateID, evaluationID string) (bool, error) {
	if !idPattern.MatchString(candidateID) || !idPattern.MatchString(evaluationID) {
		return false, nil
	}
	return s.remove(KindEvaluations, candidateID+"_"+evaluationID)
}

// Evaluation loads one evaluation of a candidate.
func (s *Store) Evaluation(candidateID, evaluationID string) (*types.Evaluation, error) {
	if !idPattern.MatchString(candidateID) || !idPattern.MatchString(evaluationID) {
		return nil, fmt.Errorf("evaluation %s_%s: %w", candidateID, evaluationID, types.ErrNotFound)
	}
	var e types.Evaluation
	if err := s.read(KindEvaluations, candidateID+"_"+evaluationID, &e); err != nil {
		return nil, fmt.Errorf("evaluation %s_%s: %w", candidateID, evaluationID, err)
	}
	return &e, nil
}

// Evaluations returns every readable evaluation of one candidate.
func (s *Store) Evaluations(ctx context.Context, candidateID string) ([]types.Evaluation, error) {
	if !idPattern.MatchString(candidateID) {
		return nil, nil
	}
	return scan[types.Evaluation](ctx, s, KindEvaluations, candidateID+"_")
}

// --- converted text cache ---

// CacheText stores converted résumé text and returns the cache file path.
// The file name is derived from the content, so identical text is stored once.
func (s *Store) CacheText(text string) (string, error) {
	sum := sha256.Sum256([]byte(text))
	path := filepath.Join(s.root, cacheDir, hex.EncodeToString(sum[:])[:12]+".md")
	if err := writeAtomic(path, []byte(text)); err != nil {
		return "", fmt.Errorf("caching converted text: %w", err)
	}
	return path, nil
}

// --- generic record layer ---

func (s *Store) path(kind Kind, name string) string {
	return filepath.Join(s.root, string(kind), name+recordExt)
}

// create persists a new record under a fresh id. assign stamps the id on
// the record and returns the value to marshal. The finished file is
// hard-linked into place, so the name is claimed only with complete
// content and an existing name is never replaced.
func (s *Store) create(kind Kind, nameOf func(id string) string, assign func(id string) any) (string, error) {
	for range maxIDTries {
		id := newID()
		name := nameOf(id)
		data, err := yaml.Marshal(assign(id))
		if err != nil {
			return "", fmt.Errorf("marshaling %s/%s: %w", kind, name, err)
		}

		tmp, err := writeTemp(filepath.Join(s.root, string(kind)), data)
		if err != nil {
			return "", fmt.Errorf("writing %s/%s: %w", kind, name, err)
		}
		err = os.Link(tmp, s.path(kind, name))
		os.Remove(tmp)
		if err == nil {
			return id, nil
		}
		if os.IsExist(err) {
			s.log.Debug("id collision, regenerating", zap.String("kind", string(kind)), zap.String("id", id))
			continue
		}
		return "", fmt.Errorf("creating %s/%s: %w", kind, name, err)
	}
	return "", fmt.Errorf("no free %s id after %d attempts", kind, maxIDTries)
}

func (s *Store) read(kind Kind, name string, v any) error {
	data, err := os.ReadFile(s.path(kind, name))
	if err != nil {
		if os.IsNotExist(err) {
			return types.ErrNotFound
		}
		return fmt.Errorf("reading %s/%s: %w", kind, name, err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: %s/%s is empty", types.ErrStoreCorruption, kind, name)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s/%s: %v", types.ErrStoreCorruption, kind, name, err)
	}
	return nil
}

func (s *Store) write(kind Kind, name string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", kind, name, err)
	}
	if err := writeAtomic(s.path(kind, name), data); err != nil {
		return fmt.Errorf("writing %s/%s: %w", kind, name, err)
	}
	return nil
}

func (s *Store) remove(kind Kind, name string) (bool, error) {
	if err := os.Remove(s.path(kind, name)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("removing %s/%s: %w", kind, name, err)
	}
	return true, nil
}

// names lists record names of kind that start with prefix, in file-name order.
func (s *Store) names(kind Kind, prefix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(kind)))
	if err != nil {
		return nil, fmt.Errorf("reading %s directory: %w", kind, err)
	}
	var out []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		name = strings.TrimSuffix(name, recordExt)
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	return out, nil
}

// scan reads every record of kind whose name starts with prefix. Records
// that fail to load are logged and skipped.
func scan[T any](ctx context.Context, s *Store, kind Kind, prefix string) ([]T, error) {
	names, err := s.names(kind, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var v T
		if err := s.read(kind, name, &v); err != nil {
			if errors.Is(err, types.ErrNotFound) {
				continue
			}
			s.log.Warn("skipping unreadable record",
				zap.String("kind", string(kind)),
				zap.String("name", name),
				zap.Error(err),
			)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// syncFile flushes a temp file to disk. Tests replace it to simulate
// write failures.
var syncFile = func(f *os.File) error { return f.Sync() }

// writeTemp writes data to a synced temp file in dir and returns its path.
// The file is removed on failure.
func writeTemp(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", err
	}
	name := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = syncFile(tmp)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// writeAtomic writes data to a temp file beside path, syncs it, and renames
// it over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := writeTemp(filepath.Dir(path), data)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
