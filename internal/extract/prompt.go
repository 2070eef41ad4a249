// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"text/template"
)

type promptTemplate = *template.Template

// cvPrompt asks for a candidate profile. Skill tokens are requested in
// lowercase; normalization is applied again after decoding regardless.
var cvPrompt = template.Must(template.New("cv").Parse(`You are an HR assistant that extracts structured information from résumés.
The résumé may be written in English or Vietnamese.

Rules:
1. Write every skill in lowercase (for example "python", "react", "typescript").
2. Keep proper names (people, companies, institutions) capitalized as written.
3. Use null for information that is not present.

Respond with a single JSON object with exactly this structure:
{
  "personal_info": {"name": "", "email": null, "phone": null, "location": null, "linkedin": null, "github": null},
  "summary": "",
  "skills": {"technical": ["skill"], "soft": ["skill"], "languages": ["spoken language and proficiency"]},
  "experience": [{"company": "", "role": "", "duration": "start - end", "responsibilities": [""], "achievements": [""]}],
  "education": [{"institution": "", "degree": "", "field": "", "graduation_year": ""}],
  "certifications": [{"name": "", "issuer": "", "year": "", "expiry": ""}],
  "projects": [{"name": "", "description": "", "technologies": ["skill"]}]
}

Résumé:
{{.Content}}

Return only the JSON object.`))

// evaluationPrompt asks for a structured interview evaluation with 1-10
// sub-scores.
var evaluationPrompt = template.Must(template.New("evaluation").Parse(`You are an HR assistant that structures interview feedback written by a senior interviewer.
Interview findings outweigh résumé claims when they conflict.

Respond with a single JSON object with exactly this structure (scores are numbers from 1 to 10):
{
  "interviewer": {"name": "", "role": ""},
  "technical_assessment": {"score": 7, "strengths": [""], "weaknesses": [""], "notes": ""},
  "soft_skills_assessment": {"communication": 8, "teamwork": 7, "problem_solving": 8, "leadership": 6, "adaptability": 7, "notes": ""},
  "cultural_fit": {"score": 8, "notes": ""},
  "overall_recommendation": "one of strong_hire, hire, weak_hire, no_hire",
  "recommended_level": "Junior, Mid, Senior, Lead, ...",
  "salary_range_suggestion": "",
  "key_concerns": [""],
  "follow_up_actions": [""]
}
Omit a score the interviewer did not give.

Interview feedback:
{{.Content}}

Return only the JSON object.`))

// jobPrompt asks for structured job requirements.
var jobPrompt = template.Must(template.New("job").Parse(`You are an HR assistant that analyzes job descriptions so they can be matched against candidate profiles.
Write every skill in lowercase.

Respond with a single JSON object with exactly this structure:
{
  "job_title": "",
  "department": "",
  "level": "Junior/Mid/Senior/Lead/Manager",
  "required_skills": {"must_have": ["deal-breaker skill"], "nice_to_have": ["preferred skill"]},
  "experience": {"min_years": 3, "max_years": null, "required_domains": [""]},
  "education": {"min_level": "", "preferred_fields": [""]},
  "certifications": [""],
  "responsibilities": [""],
  "benefits": [""],
  "culture_keywords": [""]
}

Job description:
{{.Content}}

Return only the JSON object.`))

// matchPrompt asks for a 0-100 fit judgment of one candidate.
var matchPrompt = template.Must(template.New("match").Parse(`You are an HR assistant evaluating how well a candidate fits a job.
Interview evaluations carry 2.5 times the weight of résumé information; prefer them when they disagree.

Respond with a single JSON object with exactly this structure:
{
  "match_score": 85,
  "skill_match": {"matched_must_have": [""], "missing_must_have": [""], "matched_nice_to_have": [""]},
  "overall_recommendation": "one of strong_match, good_match, partial_match, weak_match",
  "hiring_confidence": "one of high, medium, low",
  "strengths": [""],
  "risks": [""]
}
match_score is an overall fit from 0 to 100.

Candidate profile:
{{.Candidate}}

Job requirements:
{{.Job}}

Interview evaluations:
{{.Interviews}}

Related knowledge:
{{.Context}}

Return only the JSON object.`))

func render(tmpl promptTemplate, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
