package visual

import "github.com/vklite/vklite"

// SourceKind is the Source.kind field (§4.10): the GPU-side container a
// Source materializes as.
type SourceKind int

const (
	SourceVertex SourceKind = iota
	SourceIndex
	SourceUniform
	SourceTexture
)

// SourceOrigin controls whether bake() stages this source at all (§4.10
// step 5): lib sources are packed by bake, user/nobake sources are left
// alone because the caller writes the backing buffer directly.
type SourceOrigin int

const (
	OriginLib SourceOrigin = iota
	OriginUser
	OriginNoBake
)

// Source is a typed GPU-side container a Visual's Props stage into,
// grounded on original_source/include/visky/visuals.h's source/prop split
// (the distillation's §4.10 names it by the same fields) and on the
// teacher's CoreBuffer, generalized from one hardcoded uniform layout to
// any of the four kinds.
type Source struct {
	Kind   SourceKind
	Origin SourceOrigin

	// ElemSize is the byte size of one struct element this source holds
	// (e.g. a vertex struct's size); ignored for SourceTexture.
	ElemSize int

	Buffer *vklite.Buffer
	Region vklite.BufferRegion
	Images *vklite.Images

	count   int    // item count, set by bake() per §4.10 step 1-2
	staging []byte // host-side flatten buffer, grown lazily by ensureCapacity
}

// Count reports the item count bake() last resized this source to.
func (s *Source) Count() int { return s.count }

// ensureCapacity grows staging, the host-side array bake() writes before
// uploading, to count items and records count; allocated lazily so a
// Source with zero Props never allocates.
func (s *Source) ensureCapacity(count int) {
	need := count * s.ElemSize
	if len(s.staging) < need {
		s.staging = make([]byte, need)
	}
	s.count = count
}

// NewVertexSource declares a vertex-buffer-backed source of elemSize bytes
// per vertex, staged by bake from Props and uploaded into buf.
func NewVertexSource(buf *vklite.Buffer, elemSize int) *Source {
	return &Source{Kind: SourceVertex, Origin: OriginLib, ElemSize: elemSize, Buffer: buf,
		Region: vklite.BufferRegion{Buffer: buf, Length: buf.Size()}}
}

// NewIndexSource declares a uint32 index-buffer-backed source.
func NewIndexSource(buf *vklite.Buffer) *Source {
	return &Source{Kind: SourceIndex, Origin: OriginLib, ElemSize: 4, Buffer: buf,
		Region: vklite.BufferRegion{Buffer: buf, Length: buf.Size()}}
}

// NewUniformSource declares a uniform-buffer-backed source of byteSize
// bytes, always a single element (§4.10 step 4: packed into one region).
func NewUniformSource(buf *vklite.Buffer, byteSize int) *Source {
	return &Source{Kind: SourceUniform, Origin: OriginLib, ElemSize: byteSize, Buffer: buf,
		Region: vklite.BufferRegion{Buffer: buf, Length: buf.Size()}}
}

// NewTextureSource wraps images as a Source that Props never stage into
// (textures are uploaded directly). Fill binds only the vertex and index
// sources, so a texture source is not bound by Fill.
func NewTextureSource(images *vklite.Images) *Source {
	return &Source{Kind: SourceTexture, Origin: OriginUser, Images: images}
}
