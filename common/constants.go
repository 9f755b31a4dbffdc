package common

const (
	// TileSize is the edge length of one level tile in world units.
	TileSize = 1.0

	// PixelsPerUnit scales world units to viewer pixels.
	PixelsPerUnit = 24.0

	BaseWidth  = 1280
	BaseHeight = 720
)
