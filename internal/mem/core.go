package mem

import (
	"fmt"
	"sort"
)

// Word is the content of a single memory cell.
type Word = int32

// DefaultPageSize provides a default for Cells.PageSize.
const DefaultPageSize = 256

// LimitError indicates that a memory operation, like load or store, exceeded a limit.
type LimitError struct {
	Addr uint
	Op   string
}

func (lim LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded by %v @%v", lim.Op, lim.Addr)
}

// Cells implements a sparse word-addressable memory made of aligned pages.
// Cells that were never stored to read as 0.
type Cells struct {
	// PageSize specifies the length of newly allocated pages; it must not
	// change after the first store.
	PageSize uint

	// Limit specifies an address, past which any load or store results in an error.
	Limit uint

	bases []uint
	pages [][]Word
}

func (m *Cells) checkLimit(end uint, op string) error {
	if limit := m.Limit; limit != 0 && end > limit {
		return LimitError{end, op}
	}
	return nil
}

func (m *Cells) pageSize() uint {
	if m.PageSize == 0 {
		return DefaultPageSize
	}
	return m.PageSize
}

// page returns the page holding addr and the offset of addr within it; the
// page is nil if it was never allocated and alloc is false.
func (m *Cells) page(addr uint, alloc bool) ([]Word, uint) {
	size := m.pageSize()
	base := addr / size * size
	i := sort.Search(len(m.bases), func(i int) bool { return m.bases[i] >= base })
	if i < len(m.bases) && m.bases[i] == base {
		return m.pages[i], addr - base
	}
	if !alloc {
		return nil, addr - base
	}

	page := make([]Word, size)
	m.bases = append(m.bases, 0)
	m.pages = append(m.pages, nil)
	copy(m.bases[i+1:], m.bases[i:])
	copy(m.pages[i+1:], m.pages[i:])
	m.bases[i] = base
	m.pages[i] = page
	return page, addr - base
}
