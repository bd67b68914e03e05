package db

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// MemoryStore keeps candidates as JSON documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]map[string]any)}
}

// Insert stores c under a new UUID
func (m *MemoryStore) Insert(ctx context.Context, c *types.Candidate) (string, error) {
	id := uuid.New().String()
	if err := m.put(id, c); err != nil {
		return "", err
	}
	return id, nil
}

// Import stores c under c.ID verbatim, as records written by other tools are.
func (m *MemoryStore) Import(c *types.Candidate) error {
	if c.ID == "" {
		return fmt.Errorf("import requires an id")
	}
	return m.put(c.ID, c)
}

func (m *MemoryStore) put(id string, c *types.Candidate) error {
	doc, err := toDocument(c)
	if err != nil {
		return err
	}
	doc["id"] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.docs[id]; exists {
		return fmt.Errorf("candidate %s already exists", id)
	}
	m.docs[id] = doc
	return nil
}

// FindByID looks up the canonical UUID form of id
func (m *MemoryStore) FindByID(ctx context.Context, id string) (*types.Candidate, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	return m.get(parsed.String())
}

// FindByRawID tries the canonical form first, then id verbatim
func (m *MemoryStore) FindByRawID(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := m.FindByID(ctx, id)
	if err != nil || c != nil {
		return c, err
	}
	return m.get(id)
}

func (m *MemoryStore) get(id string) (*types.Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, nil
	}
	return fromDocument(doc)
}

// FindOne returns the first candidate whose field equals value
func (m *MemoryStore) FindOne(ctx context.Context, field string, value any) (*types.Candidate, error) {
	want, err := normalizeValue(value)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, doc := range m.docs {
		if v, ok := doc[field]; ok && reflect.DeepEqual(v, want) {
			return fromDocument(doc)
		}
	}
	return nil, nil
}

// List returns candidates newest first
func (m *MemoryStore) List(ctx context.Context, opts ListOptions) ([]types.Candidate, error) {
	m.mu.RLock()
	out := make([]types.Candidate, 0, len(m.docs))
	for _, doc := range m.docs {
		c, err := fromDocument(doc)
		if err != nil {
			m.mu.RUnlock()
			return nil, err
		}
		if opts.ApplicationStatus != "" && c.ApplicationStatus != opts.ApplicationStatus {
			continue
		}
		if opts.HiringStatus != "" && c.HiringStatus != opts.HiringStatus {
			continue
		}
		out = append(out, *c)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit := listLimit(opts); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Update applies set when every condition holds; the document is untouched otherwise.
func (m *MemoryStore) Update(ctx context.Context, id string, set, cond Fields) (bool, error) {
	patch, err := toDocument(set)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[id]
	if !ok {
		return false, nil
	}
	for field, want := range cond {
		got, present := doc[field]
		if want == nil {
			if present && got != nil && got != "" {
				return false, nil
			}
			continue
		}
		normalized, err := normalizeValue(want)
		if err != nil {
			return false, err
		}
		if !present || !reflect.DeepEqual(got, normalized) {
			return false, nil
		}
	}

	next := make(map[string]any, len(doc)+len(patch))
	for k, v := range doc {
		next[k] = v
	}
	for k, v := range patch {
		next[k] = v
	}
	m.docs[id] = next
	return true, nil
}

// Delete removes the candidate stored under id
func (m *MemoryStore) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return false, nil
	}
	delete(m.docs, id)
	return true, nil
}

// Ping always succeeds
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Snapshot returns the raw JSON document stored under id, for byte-level comparisons.
func (m *MemoryStore) Snapshot(id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("candidate %s not found", id)
	}
	return json.Marshal(doc)
}

func toDocument(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal candidate: %w", err)
	}
	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
	}
	return doc, nil
}

func fromDocument(doc map[string]any) (*types.Candidate, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var c types.Candidate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return &c, nil
}

// normalizeValue converts v to the shape it has inside a decoded JSON document.
func normalizeValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal value: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return out, nil
}
