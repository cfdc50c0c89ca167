package utils

const (
	NODETOL = 1.e-12
	// MaxDim is the largest spatial dimension handled by the grid code
	MaxDim = 3
)
