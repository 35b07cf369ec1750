// Package sessions implements the sequential review workflow in which an
// operator classifies each document of an uploaded archive in turn, and the
// registry that serves concurrent sessions over HTTP.
package sessions

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/JaimeStill/voidsort/internal/classifications"
	"github.com/JaimeStill/voidsort/internal/documents"
)

// State is the lifecycle state of a session.
type State string

const (
	StateReviewing  State = "reviewing"
	StateFinalizing State = "finalizing"
	StateFinished   State = "finished"
)

// Session walks an operator through an ordered document list. A Session is
// not safe for concurrent use; Manager serializes access for HTTP callers.
type Session struct {
	id      uuid.UUID
	address string
	docs    []documents.Document
	index   int
	state   State
}

// Summary is a snapshot of a session for front ends.
type Summary struct {
	ID         uuid.UUID                    `json:"id"`
	Address    string                       `json:"address"`
	Index      int                          `json:"index"`
	Total      int                          `json:"total"`
	State      State                        `json:"state"`
	Classified int                          `json:"classified"`
	Counts     map[classifications.Kind]int `json:"counts"`
	Last       bool                         `json:"last"`
}

// New starts a session over docs for the given address. The address is
// stored normalized. docs must be non-empty and in archive order; the session
// keeps its own copy of the slice.
func New(address string, docs []documents.Document) (*Session, error) {
	addr := classifications.Normalize(address)
	if addr == "" {
		return nil, ErrAddressRequired
	}
	if len(docs) == 0 {
		return nil, documents.ErrNoDocuments
	}

	return &Session{
		id:      uuid.New(),
		address: addr,
		docs:    slices.Clone(docs),
		state:   StateReviewing,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Address returns the normalized property address.
func (s *Session) Address() string { return s.address }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Len returns the number of documents under review.
func (s *Session) Len() int { return len(s.docs) }

// Current returns a copy of the document at the cursor and the cursor index.
func (s *Session) Current() (documents.Document, int) {
	return s.docs[s.index], s.index
}

// IsLast reports whether the cursor is on the last document.
func (s *Session) IsLast() bool {
	return s.index == len(s.docs)-1
}

// Documents returns a copy of the document list with current classifications.
func (s *Session) Documents() []documents.Document {
	return slices.Clone(s.docs)
}

// SetClassification validates and stores a classification on the current
// document, replacing any previous one. On error nothing changes.
func (s *Session) SetClassification(kind classifications.Kind, description string) error {
	if err := s.mutable(); err != nil {
		return err
	}

	c, err := classifications.New(kind, description)
	if err != nil {
		return err
	}

	s.docs[s.index].Classification = c
	return nil
}

// Next requires a valid classification on the current document and advances
// the cursor. On the last document it validates and stays in place.
func (s *Session) Next() error {
	if err := s.mutable(); err != nil {
		return err
	}
	if err := s.docs[s.index].Classification.Validate(); err != nil {
		return err
	}

	if !s.IsLast() {
		s.index++
	}
	return nil
}

// Prev moves the cursor back one document without validating. It is a no-op
// on the first document.
func (s *Session) Prev() error {
	if err := s.mutable(); err != nil {
		return err
	}

	if s.index > 0 {
		s.index--
	}
	return nil
}

// Finish hands the reviewed documents to fn. It requires the cursor on the
// last document with a valid classification. While fn runs the session is
// Finalizing and rejects every mutation. When fn fails the session returns to
// Reviewing unchanged and fn's error is returned.
func (s *Session) Finish(fn func([]documents.Document) error) error {
	if err := s.mutable(); err != nil {
		return err
	}
	if err := s.docs[s.index].Classification.Validate(); err != nil {
		return err
	}
	if !s.IsLast() {
		return ErrNotLast
	}

	s.state = StateFinalizing
	if err := fn(s.Documents()); err != nil {
		s.state = StateReviewing
		return err
	}

	s.state = StateFinished
	return nil
}

// Counts returns the live number of documents per assigned kind. Counts are
// for display and never drive output numbering.
func (s *Session) Counts() map[classifications.Kind]int {
	counts := make(map[classifications.Kind]int)
	for _, d := range s.docs {
		if d.Classified() {
			counts[d.Classification.Kind]++
		}
	}
	return counts
}

// Summary returns a snapshot of the session.
func (s *Session) Summary() Summary {
	counts := s.Counts()

	classified := 0
	for c := range maps.Values(counts) {
		classified += c
	}

	return Summary{
		ID:         s.id,
		Address:    s.address,
		Index:      s.index,
		Total:      len(s.docs),
		State:      s.state,
		Classified: classified,
		Counts:     counts,
		Last:       s.IsLast(),
	}
}

func (s *Session) mutable() error {
	switch s.state {
	case StateFinalizing:
		return ErrFinalizing
	case StateFinished:
		return ErrFinished
	}
	return nil
}
