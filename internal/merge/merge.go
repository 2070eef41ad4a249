// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge applies partial updates to candidate profiles.
//
// A patch is a generic map keyed by the candidate's JSON field names. Only
// the profile sections are patchable; identity, provenance, and evaluation
// summaries are never touched. For each patched field:
//
//   - map onto map merges keys, with the patch winning;
//   - list onto list replaces, or appends unseen items when mergeLists is set;
//   - anything else replaces the current value.
package merge

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/pdiddy/talent-engine/internal/normalize"
	"github.com/pdiddy/talent-engine/pkg/types"
)

// Patchable lists the candidate fields a patch may change.
var Patchable = map[string]bool{
	"personal_info":  true,
	"summary":        true,
	"skills":         true,
	"experience":     true,
	"education":      true,
	"certifications": true,
	"projects":       true,
}

// Apply returns a copy of c with patch applied and its skills normalized.
// The second result lists patch keys that were ignored, sorted.
func Apply(c *types.Candidate, patch map[string]any, mergeLists bool) (*types.Candidate, []string, error) {
	if len(patch) == 0 {
		return nil, nil, types.Validationf("empty update")
	}

	current, err := toMap(c)
	if err != nil {
		return nil, nil, err
	}

	var out types.Candidate
	if err := copyCandidate(c, &out); err != nil {
		return nil, nil, err
	}

	var ignored []string
	keys := make([]string, 0, len(patch))
	for key := range patch {
		if !Patchable[key] {
			ignored = append(ignored, key)
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(ignored)
	sort.Strings(keys)

	for _, key := range keys {
		merged := mergeValue(current[key], patch[key], mergeLists)
		if err := decodeSection(merged, sectionOf(&out, key)); err != nil {
			return nil, ignored, types.Validationf("update does not fit the candidate schema: %s: %v", key, err)
		}
	}

	// Identity and provenance always come from the stored record.
	out.ID = c.ID
	out.SourceFile = c.SourceFile
	out.ExtractedAt = c.ExtractedAt
	out.DataSource = c.DataSource
	out.Weight = c.Weight
	out.UpdatedAt = c.UpdatedAt
	out.Evaluations = c.Evaluations

	normalize.Candidate(&out)
	return &out, ignored, nil
}

// AddSkills returns a copy of c with the given skills normalized and
// appended, skipping ones already present.
func AddSkills(c *types.Candidate, technical, soft []string) *types.Candidate {
	out := *c
	out.Skills.Technical = normalize.Skills(append(append([]string{}, c.Skills.Technical...), technical...))
	out.Skills.Soft = normalize.Skills(append(append([]string{}, c.Skills.Soft...), soft...))
	return &out
}

func mergeValue(current, patch any, mergeLists bool) any {
	switch p := patch.(type) {
	case map[string]any:
		cur, ok := current.(map[string]any)
		if !ok {
			return p
		}
		merged := make(map[string]any, len(cur)+len(p))
		for k, v := range cur {
			merged[k] = v
		}
		for k, v := range p {
			merged[k] = mergeValue(cur[k], v, mergeLists)
		}
		return merged
	case []any:
		cur, ok := current.([]any)
		if !ok || !mergeLists {
			return p
		}
		return appendUnseen(cur, p)
	default:
		return patch
	}
}

// appendUnseen appends the items of add whose identity is not in base.
// Strings compare by value, everything else by canonical JSON.
func appendUnseen(base, add []any) []any {
	out := append([]any{}, base...)
	seen := make(map[string]bool, len(base)+len(add))
	for _, v := range base {
		seen[identity(v)] = true
	}
	for _, v := range add {
		id := identity(v)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, v)
	}
	return out
}

func identity(v any) string {
	if s, ok := v.(string); ok {
		return "s:" + s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("v:%v", v)
	}
	return "j:" + string(data)
}

func toMap(c *types.Candidate) (map[string]any, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding candidate: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding candidate: %w", err)
	}
	return m, nil
}

func copyCandidate(c, out *types.Candidate) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding candidate: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding candidate: %w", err)
	}
	return nil
}

// sectionOf returns a pointer to the patchable field named key.
func sectionOf(c *types.Candidate, key string) any {
	switch key {
	case "personal_info":
		return &c.PersonalInfo
	case "summary":
		return &c.Summary
	case "skills":
		return &c.Skills
	case "experience":
		return &c.Experience
	case "education":
		return &c.Education
	case "certifications":
		return &c.Certifications
	default:
		return &c.Projects
	}
}

// decodeSection replaces the field behind ptr with value decoded weakly,
// so numbers fit string fields and a lone string fits a list.
func decodeSection(value any, ptr any) error {
	target := reflect.ValueOf(ptr).Elem()
	fresh := reflect.New(target.Type())
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           fresh.Interface(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(value); err != nil {
		return err
	}
	target.Set(fresh.Elem())
	return nil
}
