// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package hr orchestrates the talent engine data flows: résumé ingestion,
// interview evaluations, profile updates, deletion, matching and skill
// search. One Service is built per process and passed to callers.
package hr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/talent-engine/internal/convert"
	"github.com/pdiddy/talent-engine/internal/extract"
	"github.com/pdiddy/talent-engine/internal/knowledge"
	"github.com/pdiddy/talent-engine/internal/logger"
	"github.com/pdiddy/talent-engine/internal/matching"
	"github.com/pdiddy/talent-engine/internal/merge"
	"github.com/pdiddy/talent-engine/internal/scoring"
	"github.com/pdiddy/talent-engine/internal/store"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// MinEvaluationLength is the shortest interview note accepted.
const MinEvaluationLength = 10

// ErrNoIndex is returned by index operations when no retrieval backend is
// configured.
var ErrNoIndex = errors.New("no retrieval backend configured")

// Index is a retrieval backend: the local SQLite index or a LightRAG server.
type Index interface {
	Retrieve(ctx context.Context, query string, opts types.RetrieveOptions) (string, error)
	Index(ctx context.Context, doc types.Document) error
	Remove(ctx context.Context, candidateID string) error
}

// rebuilder is implemented by indexes that can replace their content in
// one step.
type rebuilder interface {
	Rebuild(ctx context.Context, docs []types.Document) (knowledge.RebuildSummary, error)
}

// Options tunes a Service.
type Options struct {
	Matching matching.Options

	// IndexTimeout bounds every best-effort index write (default 30s).
	IndexTimeout time.Duration
}

// records is the store surface the service writes through. *store.Store
// implements it.
type records interface {
	matching.Records
	Lock(candidateID string) func()
	CacheText(text string) (string, error)
	CreateCandidate(c *types.Candidate) (string, error)
	Candidate(id string) (*types.Candidate, error)
	PutCandidate(c *types.Candidate) error
	DeleteCandidate(ctx context.Context, id string) (bool, error)
	CreateEvaluation(e *types.Evaluation) (string, error)
	DeleteEvaluation(candidateID, evaluationID string) (bool, error)
}

// Service is the single writer for candidate and evaluation records.
type Service struct {
	store     records
	converter convert.Converter
	extractor *extract.Extractor
	index     Index
	engine    *matching.Engine
	opts      Options
	log       *zap.Logger
}

// New wires a Service. idx may be nil to run without retrieval.
func New(st *store.Store, conv convert.Converter, x *extract.Extractor, idx Index, opts Options, log *zap.Logger) *Service {
	log = logger.OrNop(log)
	if opts.IndexTimeout <= 0 {
		opts.IndexTimeout = 30 * time.Second
	}

	var retriever matching.Retriever
	if idx != nil {
		retriever = idx
	}
	var judge matching.Judge
	if opts.Matching.LLMJudgment && x != nil {
		judge = x
	}

	return &Service{
		store:     st,
		converter: conv,
		extractor: x,
		index:     idx,
		engine:    matching.New(st, x, judge, retriever, opts.Matching, log.Named("matching")),
		opts:      opts,
		log:       log,
	}
}

// IngestCV converts a résumé, extracts a profile from it, and stores the
// new candidate. Conversion and extraction failures are returned; indexing
// is best effort.
func (s *Service) IngestCV(ctx context.Context, path string) (*types.Candidate, convert.Metadata, error) {
	text, meta, err := convert.Document(ctx, s.converter, path)
	if err != nil {
		return nil, convert.Metadata{}, err
	}

	if cache, err := s.store.CacheText(text); err != nil {
		s.log.Warn("caching converted text failed", zap.String("file", meta.OriginalFile), zap.Error(err))
	} else {
		meta.CacheFile = cache
	}

	c, err := s.extractor.ExtractCandidate(ctx, text)
	if err != nil {
		return nil, meta, fmt.Errorf("extracting %s: %w", meta.OriginalFile, err)
	}
	if strings.TrimSpace(c.PersonalInfo.Name) == "" {
		c.PersonalInfo.Name = "Unknown"
	}
	c.SourceFile = meta.OriginalFile
	c.ExtractedAt = time.Now().UTC()
	c.DataSource = types.DataSourceCV
	c.Weight = scoring.CVWeight
	c.UpdatedAt = nil
	c.Evaluations = nil

	id, err := s.store.CreateCandidate(c)
	if err != nil {
		return nil, meta, fmt.Errorf("storing candidate: %w", err)
	}
	s.reindex(ctx, knowledge.CandidateDocument(c))

	s.log.Info("candidate ingested",
		zap.String("candidate_id", id),
		zap.String("name", c.PersonalInfo.Name),
		zap.String("file", meta.OriginalFile),
		zap.Int("technical_skills", len(c.Skills.Technical)),
	)
	return c, meta, nil
}

// AddEvaluation extracts an interview evaluation from notes, stores it, and
// appends its summary to the candidate.
func (s *Service) AddEvaluation(ctx context.Context, candidateID, notes string) (*types.Evaluation, error) {
	if n := len([]rune(strings.TrimSpace(notes))); n < MinEvaluationLength {
		return nil, types.Validationf("evaluation notes must be at least %d characters, got %d", MinEvaluationLength, n)
	}
	if _, err := s.store.Candidate(candidateID); err != nil {
		return nil, err
	}

	e, err := s.extractor.ExtractEvaluation(ctx, notes)
	if err != nil {
		return nil, fmt.Errorf("extracting evaluation: %w", err)
	}
	if !scoring.HasSignal(e) {
		s.log.Warn("evaluation has no sub-scores", zap.String("candidate_id", candidateID))
	}

	unlock := s.store.Lock(candidateID)
	defer unlock()

	c, err := s.store.Candidate(candidateID)
	if err != nil {
		return nil, err
	}

	e.CandidateID = candidateID
	e.EvaluatedAt = time.Now().UTC()
	e.Weight = scoring.InterviewWeight
	if _, err := s.store.CreateEvaluation(e); err != nil {
		return nil, fmt.Errorf("storing evaluation: %w", err)
	}

	c.Evaluations = append(c.Evaluations, scoring.Summary(e))
	if err := s.store.PutCandidate(c); err != nil {
		if _, rerr := s.store.DeleteEvaluation(candidateID, e.ID); rerr != nil {
			s.log.Error("removing orphaned evaluation failed",
				zap.String("candidate_id", candidateID),
				zap.String("evaluation_id", e.ID),
				zap.Error(rerr),
			)
		}
		return nil, fmt.Errorf("recording evaluation summary: %w", err)
	}
	s.reindex(ctx, knowledge.EvaluationDocument(e))

	s.log.Info("evaluation added",
		zap.String("candidate_id", candidateID),
		zap.String("evaluation_id", e.ID),
		zap.String("recommendation", string(e.OverallRecommendation)),
		zap.Float64("weighted_score", e.WeightedScore),
	)
	return e, nil
}

// Update merges patch into a candidate profile. Keys outside the editable
// sections are ignored and logged.
func (s *Service) Update(ctx context.Context, candidateID string, patch map[string]any, mergeLists bool) (*types.Candidate, error) {
	if len(patch) == 0 {
		return nil, types.Validationf("update patch is empty")
	}
	return s.mutate(ctx, candidateID, func(c *types.Candidate) (*types.Candidate, error) {
		updated, ignored, err := merge.Apply(c, patch, mergeLists)
		if err != nil {
			return nil, err
		}
		if len(ignored) > 0 {
			s.log.Warn("ignoring non-editable fields", zap.String("candidate_id", candidateID), zap.Strings("fields", ignored))
		}
		return updated, nil
	})
}

// AddSkills appends normalized skills that the candidate does not hold yet.
func (s *Service) AddSkills(ctx context.Context, candidateID string, technical, soft []string) (*types.Candidate, error) {
	if len(technical) == 0 && len(soft) == 0 {
		return nil, types.Validationf("no skills given")
	}
	return s.mutate(ctx, candidateID, func(c *types.Candidate) (*types.Candidate, error) {
		return merge.AddSkills(c, technical, soft), nil
	})
}

// mutate runs a locked read-modify-write of one candidate, stamps
// updated_at, and re-indexes the profile.
func (s *Service) mutate(ctx context.Context, candidateID string, fn func(*types.Candidate) (*types.Candidate, error)) (*types.Candidate, error) {
	unlock := s.store.Lock(candidateID)
	defer unlock()

	c, err := s.store.Candidate(candidateID)
	if err != nil {
		return nil, err
	}
	updated, err := fn(c)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	updated.UpdatedAt = &now
	if err := s.store.PutCandidate(updated); err != nil {
		return nil, fmt.Errorf("storing candidate: %w", err)
	}
	s.reindex(ctx, knowledge.CandidateDocument(updated))

	s.log.Info("candidate updated", zap.String("candidate_id", candidateID))
	return updated, nil
}

// Delete removes a candidate and its evaluations. It reports false when
// the candidate did not exist.
func (s *Service) Delete(ctx context.Context, candidateID string) (bool, error) {
	unlock := s.store.Lock(candidateID)
	defer unlock()

	existed, err := s.store.DeleteCandidate(ctx, candidateID)
	if err != nil {
		return existed, fmt.Errorf("deleting candidate %s: %w", candidateID, err)
	}
	if !existed {
		return false, nil
	}

	if s.index != nil {
		ictx, cancel := context.WithTimeout(ctx, s.opts.IndexTimeout)
		defer cancel()
		if err := s.index.Remove(ictx, candidateID); err != nil {
			s.log.Warn("removing candidate from index failed", zap.String("candidate_id", candidateID), zap.Error(err))
		}
	}
	s.log.Info("candidate deleted", zap.String("candidate_id", candidateID))
	return true, nil
}

// Get returns a candidate with its full evaluation records.
func (s *Service) Get(ctx context.Context, candidateID string) (*types.CandidateDetail, error) {
	c, err := s.store.Candidate(candidateID)
	if err != nil {
		return nil, err
	}
	evals, err := s.store.Evaluations(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("loading evaluations: %w", err)
	}
	return &types.CandidateDetail{Candidate: *c, EvaluationDetails: evals}, nil
}

// List returns the listing view of every candidate in id order.
func (s *Service) List(ctx context.Context) ([]types.CandidateSummary, error) {
	cands, err := s.store.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.CandidateSummary, len(cands))
	for i := range cands {
		out[i] = cands[i].Summarize()
	}
	return out, nil
}

// ListSkills returns every distinct technical and soft skill, sorted.
func (s *Service) ListSkills(ctx context.Context) ([]string, error) {
	cands, err := s.store.Candidates(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	out := []string{}
	for _, c := range cands {
		for _, sk := range append(append([]string{}, c.Skills.Technical...), c.Skills.Soft...) {
			if sk != "" && !seen[sk] {
				seen[sk] = true
				out = append(out, sk)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// Match ranks candidates against a job description.
func (s *Service) Match(ctx context.Context, description string, topK int) (*types.JobMatch, error) {
	return s.engine.Match(ctx, description, topK)
}

// SearchBySkill lists candidates holding a skill.
func (s *Service) SearchBySkill(ctx context.Context, skill string, topK int) (*types.SkillSearch, error) {
	return s.engine.SearchBySkill(ctx, skill, topK)
}

// Retrieve queries the retrieval backend directly.
func (s *Service) Retrieve(ctx context.Context, query string, opts types.RetrieveOptions) (string, error) {
	if s.index == nil {
		return "", ErrNoIndex
	}
	return s.index.Retrieve(ctx, query, opts)
}

// RebuildIndex re-indexes every stored candidate and evaluation. Backends
// without a bulk rebuild receive one Index call per document; failures
// there are logged and counted.
func (s *Service) RebuildIndex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, ErrNoIndex
	}
	cands, err := s.store.Candidates(ctx)
	if err != nil {
		return 0, err
	}
	var docs []types.Document
	for i := range cands {
		evals, err := s.store.Evaluations(ctx, cands[i].ID)
		if err != nil {
			return 0, fmt.Errorf("loading evaluations of %s: %w", cands[i].ID, err)
		}
		docs = append(docs, knowledge.Collect(&cands[i], evals)...)
	}

	if rb, ok := s.index.(rebuilder); ok {
		summary, err := rb.Rebuild(ctx, docs)
		if err != nil {
			return 0, err
		}
		return summary.Indexed, nil
	}

	indexed := 0
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return indexed, err
		}
		if err := s.index.Index(ctx, doc); err != nil {
			s.log.Warn("indexing document failed", zap.String("document_id", doc.ID), zap.Error(err))
			continue
		}
		indexed++
	}
	return indexed, nil
}

// reindex writes one document to the index. Failures are logged and
// swallowed.
func (s *Service) reindex(ctx context.Context, doc types.Document) {
	if s.index == nil {
		return
	}
	ictx, cancel := context.WithTimeout(ctx, s.opts.IndexTimeout)
	defer cancel()
	if err := s.index.Index(ictx, doc); err != nil {
		s.log.Warn("indexing failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
}
