package samr

import (
	"fmt"
	"sort"
	"sync"
)

// VariableDescriptor tells patches how to allocate the data behind a handle
type VariableDescriptor struct {
	Name       string
	Centering  Centering
	GhostWidth int
}

// VariableDatabase hands out integer patch data handles. Registration is
// idempotent by name and safe for concurrent use by the worker goroutines.
type VariableDatabase struct {
	mu      sync.RWMutex
	next    int
	byIndex map[int]VariableDescriptor
	byName  map[string]int
}

func NewVariableDatabase() *VariableDatabase {
	return &VariableDatabase{
		byIndex: make(map[int]VariableDescriptor),
		byName:  make(map[string]int),
	}
}

func (vdb *VariableDatabase) RegisterVariable(name string, centering Centering, ghostWidth int) (idx int, err error) {
	vdb.mu.Lock()
	defer vdb.mu.Unlock()
	if existing, ok := vdb.byName[name]; ok {
		desc := vdb.byIndex[existing]
		if desc.Centering != centering || desc.GhostWidth != ghostWidth {
			err = fmt.Errorf("variable %q already registered as %s data with ghost width %d",
				name, desc.Centering, desc.GhostWidth)
			return
		}
		return existing, nil
	}
	if ghostWidth < 0 {
		err = fmt.Errorf("variable %q: negative ghost width %d", name, ghostWidth)
		return
	}
	idx = vdb.next
	vdb.next++
	vdb.byIndex[idx] = VariableDescriptor{Name: name, Centering: centering, GhostWidth: ghostWidth}
	vdb.byName[name] = idx
	return
}

func (vdb *VariableDatabase) Lookup(idx int) (desc VariableDescriptor, ok bool) {
	vdb.mu.RLock()
	defer vdb.mu.RUnlock()
	desc, ok = vdb.byIndex[idx]
	return
}

func (vdb *VariableDatabase) IndexOf(name string) (idx int, ok bool) {
	vdb.mu.RLock()
	defer vdb.mu.RUnlock()
	idx, ok = vdb.byName[name]
	return
}

func (vdb *VariableDatabase) RemovePatchDataIndex(idx int) {
	vdb.mu.Lock()
	defer vdb.mu.Unlock()
	if desc, ok := vdb.byIndex[idx]; ok {
		delete(vdb.byName, desc.Name)
		delete(vdb.byIndex, idx)
	}
}

func (vdb *VariableDatabase) Names() (names []string) {
	vdb.mu.RLock()
	defer vdb.mu.RUnlock()
	for name := range vdb.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

func (desc VariableDescriptor) allocate(box Box) PatchData {
	switch desc.Centering {
	case SideCentered:
		return NewSideData(box, desc.GhostWidth)
	default:
		return NewCellData(box, desc.GhostWidth)
	}
}
