package visual

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPropTargetCountCopySingleFolds(t *testing.T) {
	p := &Prop{ElemSize: 4, Data: make([]byte, 4), Copy: CopySingle, Reps: 6}
	assert.Equal(t, 6, p.targetCount())
}

func TestPropTargetCountCopySingleDefaultsToOneRep(t *testing.T) {
	p := &Prop{ElemSize: 4, Data: make([]byte, 4), Copy: CopySingle}
	assert.Equal(t, 1, p.targetCount())
}

func TestPropTargetCountCopyPerItem(t *testing.T) {
	p := &Prop{ElemSize: 4, Data: make([]byte, 4*5), Copy: CopyPerItem}
	assert.Equal(t, 5, p.targetCount())
}

func TestPropCountZeroElemSize(t *testing.T) {
	p := &Prop{}
	assert.Equal(t, 0, p.Count())
}
