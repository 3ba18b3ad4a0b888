package visual

import lin "github.com/xlab/linmath"

// VulkanProjection converts an OpenGL-style projection matrix to Vulkan's
// top-left clip space with a [0,1] depth range, adapted from the teacher's
// VulkanProjectionMat (math.go) for use staging the default uniform
// Source's view-projection matrix.
func VulkanProjection(dst *lin.Mat4x4, proj *lin.Mat4x4) {
	dst.Fill(1.0)
	dst.ScaleAniso(dst, 1.0, -1.0, 1.0)
	dst.ScaleAniso(dst, 1.0, 1.0, 0.5)
	dst.Translate(0.0, 0.0, 1.0)
	dst.Mult(dst, proj)
}
