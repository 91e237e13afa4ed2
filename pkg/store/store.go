// Package store holds converted configuration documents by name for the
// browse shell and the HTTP API.
package store

import (
	"fmt"
	"sync"

	"github.com/fung04/ucsconv/pkg/config"
	"github.com/fung04/ucsconv/pkg/convert"
)

// Document is one converted archive or file.
type Document struct {
	Name     string
	Tree     *config.Tree
	Failures []convert.FileError
}

// Objects returns the number of top-level objects in the document.
func (d *Document) Objects() int {
	return len(d.Tree.Objects)
}

// Store is a threadsafe collection of documents in insertion order.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*Document
	order []string
}

// New creates an empty store.
func New() *Store {
	return &Store{docs: make(map[string]*Document)}
}

// Put adds or replaces a document.
func (s *Store) Put(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.Name]; !exists {
		s.order = append(s.order, doc.Name)
	}
	s.docs[doc.Name] = doc
}

// PutResult adds a conversion result.
func (s *Store) PutResult(res *convert.Result) {
	s.Put(&Document{Name: res.Name, Tree: res.Tree, Failures: res.Failures})
}

// Get returns a document by name.
func (s *Store) Get(name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[name]
	if !ok {
		return nil, fmt.Errorf("no document %q", name)
	}
	return doc, nil
}

// Names returns the document names in insertion order.
func (s *Store) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Len returns the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
