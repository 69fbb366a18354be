package mem

// Size returns an address one past the last cell of the last allocated page.
func (m *Cells) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns the word stored at addr.
func (m *Cells) Load(addr uint) (Word, error) {
	if err := m.checkLimit(addr+1, "load"); err != nil {
		return 0, err
	}
	page, off := m.page(addr, false)
	if page == nil {
		return 0, nil
	}
	return page[off], nil
}

// LoadInto reads len(buf) words starting at addr, zeroing the parts of buf
// that fall into unallocated pages. No partial load is done if the limit
// would be exceeded.
func (m *Cells) LoadInto(addr uint, buf []Word) error {
	if err := m.checkLimit(addr+uint(len(buf)), "load"); err != nil {
		return err
	}
	size := m.pageSize()
	for len(buf) > 0 {
		page, off := m.page(addr, false)
		n := size - off
		if n > uint(len(buf)) {
			n = uint(len(buf))
		}
		if page == nil {
			for i := range buf[:n] {
				buf[i] = 0
			}
		} else {
			copy(buf[:n], page[off:off+n])
		}
		buf = buf[n:]
		addr += n
	}
	return nil
}

// Stor stores values at consecutive cells starting at addr, allocating pages
// as needed. No partial store is done if the limit would be exceeded.
func (m *Cells) Stor(addr uint, values ...Word) error {
	if len(values) == 0 {
		return nil
	}
	if err := m.checkLimit(addr+uint(len(values)), "stor"); err != nil {
		return err
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}
	for len(values) > 0 {
		page, off := m.page(addr, true)
		n := copy(page[off:], values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}
