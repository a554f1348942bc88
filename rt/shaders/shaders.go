package shaders

import (
	_ "embed"
)

//go:embed galaxy.wgsl
var GalaxyWGSL string

//go:embed text.wgsl
var TextWGSL string
