package trig

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jcorbin/gotrig/internal/mem"
)

// Image is a linked program: Words are the initial content of the cells from
// Base on, instructions first, then data from CodeEnd on.
type Image struct {
	Base    uint
	Entry   uint
	CodeEnd uint
	Words   []mem.Word
	Labels  map[uint]string

	instrs []uint
}

// End returns the address following the last cell of the image.
func (img *Image) End() uint { return img.Base + uint(len(img.Words)) }

// Instrs returns the addresses of all instructions, in layout order.
func (img *Image) Instrs() []uint { return img.instrs }

// Load returns the initial content of the cell at addr.
func (img *Image) Load(addr uint) mem.Word {
	if addr < img.Base || addr >= img.End() {
		return 0
	}
	return img.Words[addr-img.Base]
}

func (img *Image) label(addr uint, name string) {
	if _, have := img.Labels[addr]; !have && name != "" {
		img.Labels[addr] = name
	}
}

// Dump writes a listing of the image: every instruction decoded, then every
// data cell with its initial value.
func (img *Image) Dump(w io.Writer) error {
	var buf bytes.Buffer
	width := len(strconv.Itoa(int(img.End())))
	fmt.Fprintf(&buf, "# Image @%v entry @%v\n", img.Base, img.Entry)
	fmt.Fprintf(&buf, "# Code @%v\n", img.Base)
	for _, addr := range img.instrs {
		fmt.Fprintf(&buf, "  @%*v ", width, addr)
		img.formatInstr(&buf, addr)
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "# Data @%v\n", img.CodeEnd)
	for addr := img.CodeEnd; addr < img.End(); addr++ {
		fmt.Fprintf(&buf, "  @%*v %v = %v\n", width, addr, img.Labels[addr], img.Load(addr))
	}
	_, err := buf.WriteTo(w)
	return err
}

func (img *Image) formatInstr(buf *bytes.Buffer, addr uint) {
	if name := img.Labels[addr]; name != "" {
		buf.WriteString(name)
		buf.WriteString(": ")
	}
	ncond, nact, ok := DecodeHeader(img.Load(addr + HeaderCell))
	if !ok {
		fmt.Fprintf(buf, "!invalid header %#x", img.Load(addr+HeaderCell))
		return
	}
	field := func(i int) (op, a, v mem.Word) {
		at := addr + uint(FieldOffset(i))
		return img.Load(at), img.Load(at + 1), img.Load(at + 2)
	}
	if ncond > 0 {
		buf.WriteString("if ")
		for i := 0; i < ncond; i++ {
			if i > 0 {
				buf.WriteString(" && ")
			}
			op, a, v := field(i)
			fmt.Fprintf(buf, "%v %v %v", img.formatAddr(a), CondOp(op), v)
		}
		buf.WriteString(" then ")
	}
	for i := 0; i < nact; i++ {
		if i > 0 {
			buf.WriteString("; ")
		}
		op, d, v := field(ncond + i)
		if ActionOp(op).Indirect() {
			fmt.Fprintf(buf, "%v %v %v", img.formatAddr(d), ActionOp(op), img.formatAddr(v))
		} else {
			fmt.Fprintf(buf, "%v %v %v", img.formatAddr(d), ActionOp(op), v)
		}
	}
	if nact > 0 {
		buf.WriteByte(' ')
	}
	fmt.Fprintf(buf, "-> %v", img.formatAddr(img.Load(addr+NextCell)))
}

func (img *Image) formatAddr(a mem.Word) string {
	if a <= 0 {
		return "@" + strconv.Itoa(int(a))
	}
	if name := img.Labels[uint(a)]; name != "" {
		return fmt.Sprintf("@%v(%v)", a, name)
	}
	return "@" + strconv.Itoa(int(a))
}

// WithWords returns a copy of the image whose cells hold words instead, such
// as memory captured after running it.
func (img *Image) WithWords(words []mem.Word) *Image {
	cp := *img
	cp.Words = words
	return &cp
}
