// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentKind tells the retrieval index what a document was built from.
type DocumentKind string

const (
	DocumentCandidate  DocumentKind = "candidate"
	DocumentEvaluation DocumentKind = "evaluation"
)

// Document is a unit of text handed to the retrieval index.
type Document struct {
	// ID is unique per document: the candidate id, or
	// "<candidate_id>_<evaluation_id>" for evaluations.
	ID string `json:"id" yaml:"id"`

	Kind        DocumentKind `json:"kind" yaml:"kind"`
	CandidateID string       `json:"candidate_id" yaml:"candidate_id"`

	// Weight is the trust weight of the facts in the text.
	Weight float64 `json:"weight" yaml:"weight"`

	Text string `json:"text" yaml:"text"`
}

// RetrieveOptions tunes a retrieval query.
type RetrieveOptions struct {
	// Mode is a hint for retrievers that support several query strategies.
	Mode string

	// TopK limits the number of hits folded into the context.
	TopK int
}
