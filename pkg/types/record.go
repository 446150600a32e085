// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the screening pipeline:
// bibliographic records, reviewer decisions, and per-stage configuration.
package types

import "fmt"

// Decision is the outcome of one reviewer evaluating one record in one phase.
type Decision string

const (
	DecisionInclude   Decision = "include"
	DecisionExclude   Decision = "exclude"
	DecisionUncertain Decision = "uncertain"

	// DecisionUnset marks a record that has not been classified yet.
	DecisionUnset Decision = ""
)

// Decided reports whether the decision has been made.
func (d Decision) Decided() bool {
	return d != DecisionUnset
}

// Valid reports whether d is one of the closed decision set (or unset).
func (d Decision) Valid() bool {
	switch d {
	case DecisionInclude, DecisionExclude, DecisionUncertain, DecisionUnset:
		return true
	}
	return false
}

// ParseDecision converts a stored decision value into a Decision.
// The empty string is accepted as "not yet classified".
func ParseDecision(s string) (Decision, error) {
	d := Decision(s)
	if !d.Valid() {
		return DecisionUnset, fmt.Errorf("unknown decision value %q", s)
	}
	return d, nil
}

// Record is one candidate bibliographic entry. The ID is stable across
// phases: progress files, reconciliation, and the archive all key on it.
type Record struct {
	// ID is the stable record identifier (DOI, PMID, or export row key).
	ID string `json:"id" yaml:"id"`

	// Title is the article title.
	Title string `json:"title" yaml:"title"`

	// Authors is the author list as exported by the reference manager
	// (e.g. "Smith, J.; Doe, A.").
	Authors string `json:"authors" yaml:"authors"`

	// Abstract is the abstract text; may be empty for records whose
	// abstract could not be recovered.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Keywords holds the manual tags attached to the record.
	Keywords string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Year is the publication year (0 when unknown).
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Journal is the publication venue.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// DOI is the digital object identifier, when available.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`
}
