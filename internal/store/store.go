// Package store holds TOON documents in memory, keyed by name. It is the
// data plane behind the HTTP server and the CLI: callers reach a document
// only through Update and View closures, so no document is ever touched
// without its lock held, and every successful mutation hands back the full
// re-encoded text for whole-document replication.
package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DreamStack-us/redisTOON/pkg/toon"
)

var (
	// ErrKeyNotFound reports an operation on a key the store does not hold.
	ErrKeyNotFound = errors.New("key not found")

	// ErrStoreClosed reports an operation after Close.
	ErrStoreClosed = errors.New("store is closed")
)

// Meta describes an entry's current revision. Every successful mutation
// assigns a fresh revision ID and timestamp; hosts surface the revision as
// an HTTP ETag and in listings.
type Meta struct {
	Revision  string
	UpdatedAt time.Time
}

// Record is the persisted form of one entry, exchanged with the snapshot
// layer. Body is the encoder's canonical text.
type Record struct {
	Key       string
	Body      string
	Revision  string
	UpdatedAt time.Time
}

// Stat is one row of a key listing.
type Stat struct {
	Key       string
	Revision  string
	UpdatedAt time.Time
	Tokens    int
}

type entry struct {
	mu        sync.Mutex
	doc       *toon.Document
	revision  string
	updatedAt time.Time
}

func (e *entry) touch() {
	e.revision = uuid.New().String()
	e.updatedAt = time.Now().UTC()
}

func (e *entry) meta() Meta {
	return Meta{Revision: e.revision, UpdatedAt: e.updatedAt}
}

// Store maps keys to documents. The table is guarded by an RWMutex and each
// entry by its own mutex. Entry locks are only taken while the table lock is
// held for reading, so a holder of the table write lock has exclusive access
// to every entry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
	closed  bool
}

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// Close marks the store closed. Later operations return ErrStoreClosed.
// Closing twice is harmless.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Update runs fn with exclusive access to the document at key. The entry
// receives a fresh revision only when fn returns nil; a failed fn must leave
// the tree as it found it, which every pkg/toon operation guarantees. fn
// must not retain the document.
func (s *Store) Update(key string, fn func(doc *toon.Document) error) (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Meta{}, ErrStoreClosed
	}
	e, ok := s.entries[key]
	if !ok {
		return Meta{}, ErrKeyNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.doc); err != nil {
		return Meta{}, err
	}
	e.touch()
	return e.meta(), nil
}

// View runs fn against the document at key without bumping its revision.
// The entry lock is held for the duration, so fn sees a stable tree.
func (s *Store) View(key string, fn func(doc *toon.Document) error) (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Meta{}, ErrStoreClosed
	}
	e, ok := s.entries[key]
	if !ok {
		return Meta{}, ErrKeyNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.doc); err != nil {
		return Meta{}, err
	}
	return e.meta(), nil
}

// put installs doc at key, creating the entry when absent.
func (s *Store) put(key string, doc *toon.Document, revision string, updatedAt time.Time) (Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Meta{}, ErrStoreClosed
	}
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.doc = doc
	e.revision = revision
	e.updatedAt = updatedAt
	return e.meta(), nil
}

// mutate applies fn through Update and returns the re-encoded document.
func (s *Store) mutate(key string, fn func(doc *toon.Document) error) (string, Meta, error) {
	var body string
	meta, err := s.Update(key, func(doc *toon.Document) error {
		if err := fn(doc); err != nil {
			return err
		}
		body = doc.Encode()
		return nil
	})
	if err != nil {
		return "", Meta{}, err
	}
	return body, meta, nil
}

// Set decodes text and stores it at key, replacing any existing document.
// It returns the canonical re-encoded body.
func (s *Store) Set(key, text string) (string, Meta, error) {
	doc, err := toon.Parse(text)
	if err != nil {
		return "", Meta{}, err
	}
	meta, err := s.put(key, doc, uuid.New().String(), time.Now().UTC())
	if err != nil {
		return "", Meta{}, err
	}
	return doc.Encode(), meta, nil
}

// FromJSON parses JSON and stores the converted document at key.
func (s *Store) FromJSON(key, jsonText string) (string, Meta, error) {
	doc, err := toon.ParseJSON(jsonText)
	if err != nil {
		return "", Meta{}, err
	}
	meta, err := s.put(key, doc, uuid.New().String(), time.Now().UTC())
	if err != nil {
		return "", Meta{}, err
	}
	return doc.Encode(), meta, nil
}

// Get returns the document text at key, or the encoded fragment at path
// when path is non-empty.
func (s *Store) Get(key, path string) (string, Meta, error) {
	var out string
	meta, err := s.View(key, func(doc *toon.Document) error {
		if path == "" || path == "$" {
			out = doc.Encode()
			return nil
		}
		v, err := doc.Get(path)
		if err != nil {
			return err
		}
		out = toon.Encode(v)
		return nil
	})
	if err != nil {
		return "", Meta{}, err
	}
	return out, meta, nil
}

// SetPath sets the value at path inside the document at key. Path "$"
// replaces the whole document.
func (s *Store) SetPath(key, path string, value *toon.Value) (string, Meta, error) {
	return s.mutate(key, func(doc *toon.Document) error {
		return doc.Set(path, value)
	})
}

// Del removes the key when path is empty, otherwise deletes the value at
// path and returns the re-encoded document.
func (s *Store) Del(key, path string) (string, Meta, error) {
	if path != "" && path != "$" {
		return s.mutate(key, func(doc *toon.Document) error {
			return doc.Delete(path)
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", Meta{}, ErrStoreClosed
	}
	if _, ok := s.entries[key]; !ok {
		return "", Meta{}, ErrKeyNotFound
	}
	delete(s.entries, key)
	return "", Meta{}, nil
}

// Type reports the kind name of the value at path, or of the root when path
// is empty.
func (s *Store) Type(key, path string) (string, error) {
	if path == "" {
		path = "$"
	}
	var name string
	_, err := s.View(key, func(doc *toon.Document) error {
		v, err := doc.Get(path)
		if err != nil {
			return err
		}
		name = v.Kind().String()
		return nil
	})
	if err != nil {
		return "", err
	}
	return name, nil
}

// ToJSON renders the document at key as compact JSON.
func (s *Store) ToJSON(key string) (string, Meta, error) {
	var out string
	meta, err := s.View(key, func(doc *toon.Document) error {
		var err error
		out, err = doc.ToJSON()
		return err
	})
	if err != nil {
		return "", Meta{}, err
	}
	return out, meta, nil
}

// TokenCount estimates the token cost of the document at key in TOON form
// and in equivalent JSON form.
func (s *Store) TokenCount(key string) (toonTokens, jsonTokens int, err error) {
	_, err = s.View(key, func(doc *toon.Document) error {
		var verr error
		toonTokens, jsonTokens, verr = toon.TokenSavings(doc.Root())
		return verr
	})
	if err != nil {
		return 0, 0, err
	}
	return toonTokens, jsonTokens, nil
}

// ArrAppend appends values to the array at path and returns the new length
// with the re-encoded document.
func (s *Store) ArrAppend(key, path string, values ...*toon.Value) (int, string, Meta, error) {
	var n int
	body, meta, err := s.mutate(key, func(doc *toon.Document) error {
		var err error
		n, err = doc.Append(path, values...)
		return err
	})
	if err != nil {
		return 0, "", Meta{}, err
	}
	return n, body, meta, nil
}

// ArrInsert inserts value at index in the array at path.
func (s *Store) ArrInsert(key, path string, index int, value *toon.Value) (string, Meta, error) {
	return s.mutate(key, func(doc *toon.Document) error {
		return doc.Insert(path, index, value)
	})
}

// ArrPop removes and returns the element at index in the array at path.
// Negative indexes count from the end.
func (s *Store) ArrPop(key, path string, index int) (*toon.Value, string, Meta, error) {
	var popped *toon.Value
	body, meta, err := s.mutate(key, func(doc *toon.Document) error {
		var err error
		popped, err = doc.Pop(path, index)
		return err
	})
	if err != nil {
		return nil, "", Meta{}, err
	}
	return popped, body, meta, nil
}

// ArrLen reports the element count of the array at path, or the row count
// for a tabular array.
func (s *Store) ArrLen(key, path string) (int, error) {
	var n int
	_, err := s.View(key, func(doc *toon.Document) error {
		var err error
		n, err = doc.Length(path)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Merge deep-merges the source object into the document at key.
func (s *Store) Merge(key string, source *toon.Value) (string, Meta, error) {
	return s.mutate(key, func(doc *toon.Document) error {
		return doc.Merge(source)
	})
}

// Validate checks the structural invariants of the document at key.
func (s *Store) Validate(key string) error {
	_, err := s.View(key, func(doc *toon.Document) error {
		return doc.Validate()
	})
	return err
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Len reports the number of stored documents.
func (s *Store) Len() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrStoreClosed
	}
	return len(s.entries), nil
}

// Stats returns a listing row for every key, sorted by key.
func (s *Store) Stats() ([]Stat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	stats := make([]Stat, 0, len(s.entries))
	for k, e := range s.entries {
		e.mu.Lock()
		stats = append(stats, Stat{
			Key:       k,
			Revision:  e.revision,
			UpdatedAt: e.updatedAt,
			Tokens:    e.doc.Tokens(),
		})
		e.mu.Unlock()
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Key < stats[j].Key })
	return stats, nil
}

// Export returns the persisted form of every document, sorted by key.
func (s *Store) Export() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	recs := make([]Record, 0, len(s.entries))
	for k, e := range s.entries {
		e.mu.Lock()
		recs = append(recs, Record{
			Key:       k,
			Body:      e.doc.Encode(),
			Revision:  e.revision,
			UpdatedAt: e.updatedAt,
		})
		e.mu.Unlock()
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Key < recs[j].Key })
	return recs, nil
}

// Load installs a previously exported record, keeping its revision and
// timestamp.
func (s *Store) Load(rec Record) error {
	doc, err := toon.Parse(rec.Body)
	if err != nil {
		return err
	}
	_, err = s.put(rec.Key, doc, rec.Revision, rec.UpdatedAt)
	return err
}
