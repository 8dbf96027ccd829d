package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

// JSONStore keeps the document in a single JSON file and a cached copy in
// memory. One mutex serializes every Update in the process.
type JSONStore struct {
	path string

	mu  sync.RWMutex
	doc *model.Document
}

var _ Store = (*JSONStore)(nil)

func NewJSONStore(path string) (*JSONStore, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, err
	}
	return &JSONStore{
		path: path,
		doc:  doc,
	}, nil
}

func readDocument(path string) (*model.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.NewDocument(), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return DecodeDocument(raw)
}

// DecodeDocument parses and validates a persisted document.
func DecodeDocument(raw []byte) (*model.Document, error) {
	doc := &model.Document{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, doc); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
	}
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	return doc, nil
}

func EncodeDocument(doc *model.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

func (s *JSONStore) View(ctx context.Context, fn func(doc *model.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.doc.Clone())
}

func (s *JSONStore) Update(ctx context.Context, fn func(doc *model.Document) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// write replaces the file atomically through a temp file in the same dir.
func (s *JSONStore) write(doc *model.Document) error {
	data, err := EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}
