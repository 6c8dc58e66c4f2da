package render

// Viewport computes camera coordinates for a player's view, in tiles.
type Viewport struct {
	CamX, CamY   int // top-left world coordinate
	ViewW, ViewH int // viewport size in tiles
}

// NewViewport calculates the camera position centered on the player,
// clamped to map edges. hudRows reserves space for the HUD at the bottom.
func NewViewport(playerX, playerY, termW, termH, mapW, mapH, hudRows int) Viewport {
	viewW := termW / TileWidth
	viewH := termH - hudRows
	if viewW < 0 {
		viewW = 0
	}
	if viewH < 0 {
		viewH = 0
	}

	camX := clampCam(playerX-viewW/2, viewW, mapW)
	camY := clampCam(playerY-viewH/2, viewH, mapH)

	return Viewport{
		CamX:  camX,
		CamY:  camY,
		ViewW: viewW,
		ViewH: viewH,
	}
}

func clampCam(cam, view, size int) int {
	if cam+view > size {
		cam = size - view
	}
	if cam < 0 {
		cam = 0
	}
	return cam
}

// WorldToScreen converts world coordinates to the 0-based screen column and
// row of the tile's first cell. Returns -1,-1 outside the viewport.
func (v Viewport) WorldToScreen(wx, wy int) (int, int) {
	tx := wx - v.CamX
	ty := wy - v.CamY
	if tx < 0 || tx >= v.ViewW || ty < 0 || ty >= v.ViewH {
		return -1, -1
	}
	return tx * TileWidth, ty
}
