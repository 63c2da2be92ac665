// Package assets embeds the shader sources.
package assets

import _ "embed"

// DistortShader warps image 0 by the displacement field in image 1.
//
//go:embed distort_shader.go
var DistortShader []byte
