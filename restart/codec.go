package restart

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
)

func WriteFile(path string, db *MemoryDatabase) (err error) {
	var data []byte
	if data, err = yaml.Marshal(db); err != nil {
		return fmt.Errorf("encoding restart data for %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0644)
}

func ReadFile(path string) (db *MemoryDatabase, err error) {
	var data []byte
	if data, err = os.ReadFile(path); err != nil {
		return
	}
	db = NewMemoryDatabase()
	if err = yaml.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("decoding restart file %s: %w", path, err)
	}
	return
}
