package visual

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float32Bytes(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

func float32FromBytes(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func TestFlattenPropCopyPerItemWritesEachElement(t *testing.T) {
	src := &Source{Kind: SourceVertex, ElemSize: 8}
	src.ensureCapacity(3)

	data := make([]byte, 0, 3*4)
	for _, v := range []float32{1, 2, 3} {
		data = append(data, float32Bytes(v)...)
	}
	p := &Prop{Source: src, Offset: 4, ElemSize: 4, Data: data, Copy: CopyPerItem}

	flattenProp(src, p, 3)

	for i, want := range []float32{1, 2, 3} {
		got := float32FromBytes(src.staging[i*8+4 : i*8+8])
		assert.Equal(t, want, got)
	}
}

func TestFlattenPropCopySingleRepeatsAcrossItems(t *testing.T) {
	src := &Source{Kind: SourceVertex, ElemSize: 4}
	src.ensureCapacity(4)

	p := &Prop{Source: src, Offset: 0, ElemSize: 4, Data: float32Bytes(9), Copy: CopySingle, Reps: 4}
	flattenProp(src, p, 4)

	for i := 0; i < 4; i++ {
		got := float32FromBytes(src.staging[i*4 : i*4+4])
		assert.Equal(t, float32(9), got)
	}
}

func TestEnsureCapacityGrowsStagingOnce(t *testing.T) {
	src := &Source{ElemSize: 4}
	src.ensureCapacity(2)
	require.Len(t, src.staging, 8)
	src.ensureCapacity(2)
	assert.Len(t, src.staging, 8)
	assert.Equal(t, 2, src.Count())
}
