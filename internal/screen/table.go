package screen

// ScanlineFields is the number of registers recorded per scanline.
const ScanlineFields = 4

// Column indices of a ScanlineTable row.
const (
	FieldSCX = iota
	FieldSCY
	FieldWX // window X, already adjusted by -7
	FieldWY
)

// ScanlineTable holds one row of viewport registers per scanline, top to bottom.
type ScanlineTable [][ScanlineFields]uint8

// Shape returns (rows, columns).
func (t ScanlineTable) Shape() (rows, cols int) {
	return len(t), ScanlineFields
}

// Scroll returns the background scroll registers in effect on line y.
func (t ScanlineTable) Scroll(y int) (scx, scy uint8) {
	return t[y][FieldSCX], t[y][FieldSCY]
}

// Window returns the window position registers in effect on line y.
func (t ScanlineTable) Window(y int) (wx, wy uint8) {
	return t[y][FieldWX], t[y][FieldWY]
}
