// Package restart stores checkpoint state as a tree of named databases
// holding fixed-length float arrays, persisted as YAML files.
package restart

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrMissingDatabase = errors.New("restart database not found")
	ErrMissingKey      = errors.New("restart key not found")
	ErrArrayLength     = errors.New("restart array has the wrong length")
)

type Database interface {
	PutDoubleArray(key string, data []float64)
	GetDoubleArray(key string, n int) ([]float64, error)
	KeyExists(key string) bool
	Keys() []string
	IsDatabase(name string) bool
	GetDatabase(name string) (Database, error)
	PutDatabase(name string) Database
}

// MemoryDatabase is the in-memory Database. The exported fields are its YAML
// form.
type MemoryDatabase struct {
	Arrays    map[string][]float64       `json:"arrays,omitempty"`
	Databases map[string]*MemoryDatabase `json:"databases,omitempty"`
}

func NewMemoryDatabase() *MemoryDatabase {
	return &MemoryDatabase{
		Arrays:    make(map[string][]float64),
		Databases: make(map[string]*MemoryDatabase),
	}
}

// PutDoubleArray stores a copy of data, replacing any previous value
func (db *MemoryDatabase) PutDoubleArray(key string, data []float64) {
	if db.Arrays == nil {
		db.Arrays = make(map[string][]float64)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	db.Arrays[key] = cp
}

func (db *MemoryDatabase) GetDoubleArray(key string, n int) (data []float64, err error) {
	stored, ok := db.Arrays[key]
	if !ok {
		err = fmt.Errorf("%w: %q", ErrMissingKey, key)
		return
	}
	if len(stored) != n {
		err = fmt.Errorf("%w: %q has %d entries, want %d", ErrArrayLength, key, len(stored), n)
		return
	}
	data = make([]float64, n)
	copy(data, stored)
	return
}

func (db *MemoryDatabase) KeyExists(key string) bool {
	_, ok := db.Arrays[key]
	return ok
}

func (db *MemoryDatabase) Keys() (keys []string) {
	for key := range db.Arrays {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return
}

func (db *MemoryDatabase) IsDatabase(name string) bool {
	_, ok := db.Databases[name]
	return ok
}

func (db *MemoryDatabase) GetDatabase(name string) (Database, error) {
	child, ok := db.Databases[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMissingDatabase, name)
	}
	return child, nil
}

// PutDatabase returns the named child, creating an empty one if needed
func (db *MemoryDatabase) PutDatabase(name string) Database {
	if db.Databases == nil {
		db.Databases = make(map[string]*MemoryDatabase)
	}
	child, ok := db.Databases[name]
	if !ok {
		child = NewMemoryDatabase()
		db.Databases[name] = child
	}
	return child
}
