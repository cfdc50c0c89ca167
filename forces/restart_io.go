package forces

import (
	"errors"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/ibforce/restart"
)

type restartField struct {
	prefix string
	value  func(fo *ForceObject) *r3.Vec
}

// Checkpointed current state of a body, stored as "<prefix><id>"
var restartFields = []restartField{
	{"F_", func(fo *ForceObject) *r3.Vec { return &fo.FCurrent }},
	{"T_", func(fo *ForceObject) *r3.Vec { return &fo.TCurrent }},
	{"P_", func(fo *ForceObject) *r3.Vec { return &fo.PCurrent }},
	{"L_", func(fo *ForceObject) *r3.Vec { return &fo.LCurrent }},
	{"P_box_", func(fo *ForceObject) *r3.Vec { return &fo.PBoxCurrent }},
	{"L_box_", func(fo *ForceObject) *r3.Vec { return &fo.LBoxCurrent }},
	{"X_lo_", func(fo *ForceObject) *r3.Vec { return &fo.BoxXLowerCurrent }},
	{"X_hi_", func(fo *ForceObject) *r3.Vec { return &fo.BoxXUpperCurrent }},
	{"U_box_", func(fo *ForceObject) *r3.Vec { return &fo.BoxUCurrent }},
}

func restartKey(prefix string, id int) string {
	return prefix + strconv.Itoa(id)
}

// PutToDatabase writes the current state of every body into db
func (e *Evaluator) PutToDatabase(db restart.Database) {
	for _, id := range e.StructureIDs() {
		fo := &e.bodies[id].ForceObject
		for _, rf := range restartFields {
			v := rf.value(fo)
			db.PutDoubleArray(restartKey(rf.prefix, id), []float64{v.X, v.Y, v.Z})
		}
	}
}

// getFromRestart loads the checkpointed state of fo.StructureID. The new
// state starts equal to the restored current state. fo is untouched on error.
func (e *Evaluator) getFromRestart(fo *ForceObject) (err error) {
	var (
		id  = fo.StructureID
		db  restart.Database
		buf []float64
	)
	if db, err = e.restart.RootDatabase().GetDatabase(e.Name); err != nil {
		return fmt.Errorf("%w: structure %d: %w", ErrMissingRestartData, id, err)
	}
	restored := *fo
	for _, rf := range restartFields {
		key := restartKey(rf.prefix, id)
		if buf, err = db.GetDoubleArray(key, 3); err != nil {
			if errors.Is(err, restart.ErrMissingKey) {
				return fmt.Errorf("%w: structure %d: %w", ErrMissingRestartData, id, err)
			}
			return
		}
		*rf.value(&restored) = r3.Vec{X: buf[0], Y: buf[1], Z: buf[2]}
	}
	restored.BoxXLowerNew = restored.BoxXLowerCurrent
	restored.BoxXUpperNew = restored.BoxXUpperCurrent
	restored.BoxUNew = restored.BoxUCurrent
	restored.FNew = restored.FCurrent
	restored.TNew = restored.TCurrent
	restored.PNew = restored.PCurrent
	restored.LNew = restored.LCurrent
	restored.PBoxNew = restored.PBoxCurrent
	restored.LBoxNew = restored.LBoxCurrent
	*fo = restored
	return
}
