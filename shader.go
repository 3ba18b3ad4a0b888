package vklite

import (
	"os"

	vk "github.com/vulkan-go/vulkan"
)

// ShaderStage names the pipeline stage a shader module targets, replacing
// the teacher's untyped int constants.
type ShaderStage int

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	StageGeometry
	StageTessControl
	StageTessEval
)

func (s ShaderStage) vk() vk.ShaderStageFlagBits {
	switch s {
	case StageVertex:
		return vk.ShaderStageVertexBit
	case StageFragment:
		return vk.ShaderStageFragmentBit
	case StageCompute:
		return vk.ShaderStageComputeBit
	case StageGeometry:
		return vk.ShaderStageGeometryBit
	case StageTessControl:
		return vk.ShaderStageTessellationControlBit
	case StageTessEval:
		return vk.ShaderStageTessellationEvaluationBit
	default:
		return 0
	}
}

// Shader is a loaded SPIR-V module bound to a single stage.
type Shader struct {
	gpu    *Gpu
	Stage  ShaderStage
	handle vk.ShaderModule
}

// LoadShader reads the SPIR-V bytecode at path and creates a shader
// module for stage. Source compilation is out of scope (§ Non-goals);
// callers supply pre-compiled .spv files.
func LoadShader(gpu *Gpu, stage ShaderStage, path string) (*Shader, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapf(ErrBackendFailure, err, "read shader %q", path)
	}
	return NewShaderFromBytes(gpu, stage, code)
}

// NewShaderFromBytes creates a shader module directly from SPIR-V bytes,
// for callers that embed or generate their shaders rather than reading
// from disk.
func NewShaderFromBytes(gpu *Gpu, stage ShaderStage, code []byte) (*Shader, error) {
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(gpu.handle, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if err := checkResult(ret, "create shader module"); err != nil {
		return nil, err
	}
	return &Shader{gpu: gpu, Stage: stage, handle: module}, nil
}

func (s *Shader) stageInfo(entry string) vk.PipelineShaderStageCreateInfo {
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  s.Stage.vk(),
		Module: s.handle,
		PName:  entry + "\x00",
	}
}

// Destroy destroys the shader module.
func (s *Shader) Destroy() {
	if s.handle != vk.NullShaderModule {
		vk.DestroyShaderModule(s.gpu.handle, s.handle, nil)
		s.handle = vk.NullShaderModule
	}
}
