package visual

import "github.com/vklite/vklite"

// Visual is a user-facing bundle composed over a canvas: ordered graphics
// pipelines, an optional compute pipeline, the Sources/Props that bake()
// stages, and the Bindings each pipeline draws with (§4.10 glossary
// "Visual"), grounded on the teacher's per-instance uniform-buffer +
// descriptor-set wiring generalized from one hardcoded triangle to
// arbitrary pipeline/source/prop combinations.
type Visual struct {
	Graphics []*vklite.Pipeline
	Compute  *vklite.Pipeline
	Bindings []*vklite.Bindings // one per Graphics pipeline, same indexing

	sources map[string]*Source
	props   []*Prop

	vertexSourceKey string
	indexSourceKey  string

	onRefillNeeded func()
}

// NewVisual creates an empty Visual; call AddSource/AddProp to populate it
// before the first Bake.
func NewVisual(graphics []*vklite.Pipeline, bindings []*vklite.Bindings) *Visual {
	return &Visual{
		Graphics: graphics,
		Bindings: bindings,
		sources:  map[string]*Source{},
	}
}

// OnRefillNeeded registers the callback bake() invokes when a vertex or
// index Source's item count changed (§4.10: "the Visual signals its
// Canvas to refill"). Nothing registers a callback by default; callers pass
// Canvas.RequestRefill here themselves.
func (v *Visual) OnRefillNeeded(fn func()) { v.onRefillNeeded = fn }

// AddSource registers src under key; "vertex" and "index" are the
// conventional keys fill() looks for when binding draw state.
func (v *Visual) AddSource(key string, src *Source) {
	v.sources[key] = src
	switch src.Kind {
	case SourceVertex:
		if v.vertexSourceKey == "" {
			v.vertexSourceKey = key
		}
	case SourceIndex:
		if v.indexSourceKey == "" {
			v.indexSourceKey = key
		}
	}
}

// Source returns the source registered under key, or nil.
func (v *Visual) Source(key string) *Source { return v.sources[key] }

// AddProp attaches p to the Visual; the next Bake call will route it into
// its target Source.
func (v *Visual) AddProp(p *Prop) { v.props = append(v.props, p) }

// Bake runs the §4.10 baking protocol over every registered Prop.
func (v *Visual) Bake() error { return v.bake() }
