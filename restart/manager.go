package restart

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// Serializable is implemented by anything that writes checkpoint state
type Serializable interface {
	PutToDatabase(db Database)
}

// Manager collects checkpoint state from registered items into one database
// per file. Each item writes into a child database named after it.
type Manager struct {
	names       []string
	items       map[string]Serializable
	root        *MemoryDatabase
	fromRestart bool
}

func NewManager() *Manager {
	return &Manager{
		items: make(map[string]Serializable),
		root:  NewMemoryDatabase(),
	}
}

func (m *Manager) RegisterRestartItem(name string, item Serializable) (err error) {
	if _, ok := m.items[name]; ok {
		return fmt.Errorf("restart item %q already registered", name)
	}
	m.names = append(m.names, name)
	m.items[name] = item
	return
}

func (m *Manager) UnregisterRestartItem(name string) {
	if _, ok := m.items[name]; !ok {
		return
	}
	delete(m.items, name)
	for i, n := range m.names {
		if n == name {
			m.names = append(m.names[:i], m.names[i+1:]...)
			break
		}
	}
}

// IsFromRestart reports whether the root database was loaded from a file
func (m *Manager) IsFromRestart() bool { return m.fromRestart }

func (m *Manager) RootDatabase() Database { return m.root }

func FileName(dir string, step int) string {
	return filepath.Join(dir, fmt.Sprintf("restore.%06d.yaml", step))
}

// WriteRestartFile gathers the state of every registered item and writes it
// to dir, returning the file name
func (m *Manager) WriteRestartFile(dir string, step int) (path string, err error) {
	if dir, err = homedir.Expand(dir); err != nil {
		return
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return
	}
	db := NewMemoryDatabase()
	for _, name := range m.names {
		m.items[name].PutToDatabase(db.PutDatabase(name))
	}
	path = FileName(dir, step)
	if err = WriteFile(path, db); err != nil {
		return "", err
	}
	return
}

// OpenRestartFile loads the checkpoint for step from dir and marks the run as
// restarted
func (m *Manager) OpenRestartFile(dir string, step int) (err error) {
	if dir, err = homedir.Expand(dir); err != nil {
		return
	}
	var db *MemoryDatabase
	if db, err = ReadFile(FileName(dir, step)); err != nil {
		return
	}
	m.root = db
	m.fromRestart = true
	return
}
