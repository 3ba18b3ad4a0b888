package visual

import "github.com/vklite/vklite"

// Fill builds the draw commands for this Visual into command buffer i of
// cmds: bind each graphics pipeline's vertex/index buffers and descriptor
// set, then issue a draw or draw_indexed depending on whether an index
// Source was registered (§4.10 glossary "fill"), grounded on
// setup_command/setup_commands in the teacher's instance.go generalized
// from one hardcoded pipeline to Visual.Graphics.
//
// Bindings are built with one descriptor set per swapchain image (§4.6
// dset_count), so command buffer index i doubles as the set_idx
// bind_graphics selects: image i only ever reads the descriptor set i
// last wrote, so a write to set j never races a draw still reading set k
// for a different in-flight image.
func (v *Visual) Fill(cmds *vklite.Commands, i int) {
	vertexSrc := v.sources[v.vertexSourceKey]
	indexSrc := v.sources[v.indexSourceKey]

	for pIdx, pipeline := range v.Graphics {
		cmds.BindPipeline(i, pipeline)
		if pIdx < len(v.Bindings) && v.Bindings[pIdx] != nil {
			b := v.Bindings[pIdx]
			setIdx := i % b.DsetCount()
			cmds.BindDescriptorSet(i, pipeline, b, setIdx)
		}
		if vertexSrc != nil {
			cmds.BindVertexBuffer(i, vertexSrc.Region)
		}
		if indexSrc != nil {
			cmds.BindIndexBuffer(i, indexSrc.Region)
			cmds.DrawIndexed(i, indexSrc.Count(), 1)
			continue
		}
		if vertexSrc != nil {
			cmds.Draw(i, vertexSrc.Count(), 1)
		}
	}
}
