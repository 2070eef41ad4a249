// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize canonicalizes skill strings so that equivalent
// spellings ("Node.JS", "node.js", "nodejs") resolve to one token.
package normalize

import (
	"strings"

	"github.com/pdiddy/talent-engine/pkg/types"
)

// rule rewrites a skill token that equals key, or starts with key followed
// by a space, to replacement (keeping the remainder).
type rule struct {
	key         string
	replacement string
}

// rules is evaluated in order; the first match wins and is applied once.
// More specific keys precede their prefixes. No replacement equals a key or
// starts with a key followed by a space, so Skill is idempotent.
var rules = []rule{
	{"asp.net core", "aspnet core"},
	{"asp.net", "aspnet"},
	{".net core", "dotnet core"},
	{".net framework", "dotnet framework"},
	{".net", "dotnet"},
	{"c#", "csharp"},
	{"c++", "cpp"},
	{"f#", "fsharp"},
	{"node.js", "nodejs"},
	{"node js", "nodejs"},
	{"react.js", "react"},
	{"reactjs", "react"},
	{"vue.js", "vuejs"},
	{"next.js", "nextjs"},
	{"express.js", "express"},
	{"golang", "go"},
	{"k8s", "kubernetes"},
	{"postgres", "postgresql"},
	{"js", "javascript"},
	{"ts", "typescript"},
}

// Skill returns the canonical form of raw: lowercased, trimmed, then
// rewritten by the first matching rule. Inner whitespace is kept.
func Skill(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return ""
	}
	for _, r := range rules {
		if s == r.key {
			return r.replacement
		}
		if strings.HasPrefix(s, r.key+" ") {
			return r.replacement + s[len(r.key):]
		}
	}
	return s
}

// Skills normalizes every entry, drops empties, and removes duplicates
// keeping the first occurrence. It never returns nil.
func Skills(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		s := Skill(r)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Candidate normalizes technical and soft skills and every project's
// technologies in place. Spoken languages are left as written.
func Candidate(c *types.Candidate) {
	c.Skills.Technical = Skills(c.Skills.Technical)
	c.Skills.Soft = Skills(c.Skills.Soft)
	for i := range c.Projects {
		c.Projects[i].Technologies = Skills(c.Projects[i].Technologies)
	}
}

// Job normalizes the required skills of a job in place.
func Job(j *types.JobRequirement) {
	j.RequiredSkills.MustHave = Skills(j.RequiredSkills.MustHave)
	j.RequiredSkills.NiceToHave = Skills(j.RequiredSkills.NiceToHave)
}
