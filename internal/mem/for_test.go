package mem

// CellsDump provides data for testing.
type CellsDump struct {
	Bases []uint
	Pages [][]Word
}

// Dump memory data for testing.
func (m *Cells) Dump() (d CellsDump) {
	d.Bases = m.bases
	d.Pages = m.pages
	return d
}
