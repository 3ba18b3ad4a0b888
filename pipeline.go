package vklite

import vk "github.com/vulkan-go/vulkan"

// VertexAttribute describes one vertex input attribute, generalizing the
// teacher's zero-attribute PipelineBuilder (it hardcoded an empty vertex
// input state for its single demo triangle) into data-driven vertex
// layouts.
type VertexAttribute struct {
	Location uint32
	Binding  uint32
	Format   vk.Format
	Offset   uint32
}

// VertexBinding describes one vertex buffer binding's stride/input-rate.
type VertexBinding struct {
	Binding uint32
	Stride  uint32
	PerInstance bool
}

// Pipeline is either a graphics or a compute pipeline plus its layout,
// grounded on the teacher's PipelineBuilder/BuildPipeline but generalized
// from one hardcoded triangle state to arbitrary vertex layouts, topology
// and descriptor-set layouts.
type Pipeline struct {
	gpu        *Gpu
	layout     vk.PipelineLayout
	handle     vk.Pipeline
	bindPoint  vk.PipelineBindPoint
}

// GraphicsPipelineDesc configures NewGraphicsPipeline.
type GraphicsPipelineDesc struct {
	Vertex, Fragment *Shader
	VertexBindings   []VertexBinding
	VertexAttributes []VertexAttribute
	Topology         vk.PrimitiveTopology
	CullMode         vk.CullModeFlagBits
	DepthTest        bool
	SetLayouts       []vk.DescriptorSetLayout
	Renderpass       *Renderpass
	Extent           vk.Extent2D
}

// NewGraphicsPipeline builds a single-subpass graphics pipeline.
func NewGraphicsPipeline(gpu *Gpu, desc GraphicsPipelineDesc) (*Pipeline, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(gpu.handle, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(desc.SetLayouts)),
		PSetLayouts:    desc.SetLayouts,
	}, nil, &layout)
	if err := checkResult(ret, "create pipeline layout"); err != nil {
		return nil, err
	}

	bindings := make([]vk.VertexInputBindingDescription, len(desc.VertexBindings))
	for i, b := range desc.VertexBindings {
		rate := vk.VertexInputRateVertex
		if b.PerInstance {
			rate = vk.VertexInputRateInstance
		}
		bindings[i] = vk.VertexInputBindingDescription{Binding: b.Binding, Stride: b.Stride, InputRate: rate}
	}
	attrs := make([]vk.VertexInputAttributeDescription, len(desc.VertexAttributes))
	for i, a := range desc.VertexAttributes {
		attrs[i] = vk.VertexInputAttributeDescription{Location: a.Location, Binding: a.Binding, Format: a.Format, Offset: a.Offset}
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attrs)),
		PVertexAttributeDescriptions:    attrs,
	}

	topology := desc.Topology
	if topology == 0 {
		topology = vk.PrimitiveTopologyTriangleList
	}
	assembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: topology,
	}

	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(desc.CullMode),
		FrontFace:   vk.FrontFaceClockwise,
		LineWidth:   1.0,
	}

	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	colorBlendAttachment := vk.PipelineColorBlendAttachmentState{
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		BlendEnable:    vk.False,
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			Width: float32(desc.Extent.Width), Height: float32(desc.Extent.Height), MaxDepth: 1.0,
		}},
		ScissorCount: 1,
		PScissors:    []vk.Rect2D{{Extent: desc.Extent}},
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.Bool32(boolToUint(desc.DepthTest)),
		DepthWriteEnable: vk.Bool32(boolToUint(desc.DepthTest)),
		DepthCompareOp:   vk.CompareOpLess,
	}

	stages := []vk.PipelineShaderStageCreateInfo{
		desc.Vertex.stageInfo("main"),
		desc.Fragment.stageInfo("main"),
	}

	info := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &assembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		Layout:              layout,
		RenderPass:          desc.Renderpass.Handle(),
	}
	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret = vk.CreateGraphicsPipelines(gpu.handle, vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{info}, nil, pipelines)
	if err := checkResult(ret, "create graphics pipeline"); err != nil {
		vk.DestroyPipelineLayout(gpu.handle, layout, nil)
		return nil, err
	}
	return &Pipeline{gpu: gpu, layout: layout, handle: pipelines[0], bindPoint: vk.PipelineBindPointGraphics}, nil
}

// NewComputePipeline builds a single-stage compute pipeline, per spec
// §4.2's "compute identity" testable property (P3).
func NewComputePipeline(gpu *Gpu, shader *Shader, setLayouts []vk.DescriptorSetLayout) (*Pipeline, error) {
	var layout vk.PipelineLayout
	ret := vk.CreatePipelineLayout(gpu.handle, &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}, nil, &layout)
	if err := checkResult(ret, "create pipeline layout"); err != nil {
		return nil, err
	}
	info := vk.ComputePipelineCreateInfo{
		SType:  vk.StructureTypeComputePipelineCreateInfo,
		Stage:  shader.stageInfo("main"),
		Layout: layout,
	}
	pipelines := []vk.Pipeline{vk.NullPipeline}
	ret = vk.CreateComputePipelines(gpu.handle, vk.NullPipelineCache, 1, []vk.ComputePipelineCreateInfo{info}, nil, pipelines)
	if err := checkResult(ret, "create compute pipeline"); err != nil {
		vk.DestroyPipelineLayout(gpu.handle, layout, nil)
		return nil, err
	}
	return &Pipeline{gpu: gpu, layout: layout, handle: pipelines[0], bindPoint: vk.PipelineBindPointCompute}, nil
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// Handle returns the underlying vk.Pipeline.
func (p *Pipeline) Handle() vk.Pipeline { return p.handle }

// Layout returns the pipeline layout (needed to bind descriptor sets).
func (p *Pipeline) Layout() vk.PipelineLayout { return p.layout }

// BindPoint reports whether this is a graphics or compute pipeline.
func (p *Pipeline) BindPoint() vk.PipelineBindPoint { return p.bindPoint }

// Destroy destroys the pipeline and its layout.
func (p *Pipeline) Destroy() {
	if p.handle != vk.NullPipeline {
		vk.DestroyPipeline(p.gpu.handle, p.handle, nil)
	}
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(p.gpu.handle, p.layout, nil)
	}
}
