package storage

import (
	"encoding/binary"

	"minidb/record"
)

// The functions in this file are a pure accessor layer over a raw page
// buffer: they encapsulate offsets but perform no validation beyond
// what the page-format invariants already guarantee. Reading cell i
// when i >= NumCells is a programming error, not a recoverable one.

func getNodeType(p *Page) byte { return p.Data[nodeTypeOffset] }

func setNodeType(p *Page, t byte) { p.Data[nodeTypeOffset] = t }

func isRoot(p *Page) bool { return p.Data[isRootOffset] != 0 }

func setRoot(p *Page, root bool) {
	if root {
		p.Data[isRootOffset] = 1
	} else {
		p.Data[isRootOffset] = 0
	}
}

func parentPage(p *Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[parentPageOffset : parentPageOffset+parentPageSize])
}

func setParentPage(p *Page, parent uint32) {
	binary.LittleEndian.PutUint32(p.Data[parentPageOffset:parentPageOffset+parentPageSize], parent)
}

func leafNumCells(p *Page) uint32 {
	return binary.LittleEndian.Uint32(p.Data[leafNumCellsOffset : leafNumCellsOffset+leafNumCellsSize])
}

func setLeafNumCells(p *Page, n uint32) {
	binary.LittleEndian.PutUint32(p.Data[leafNumCellsOffset:leafNumCellsOffset+leafNumCellsSize], n)
}

// leafCellOffset returns the byte offset of cell i within the page.
func leafCellOffset(i uint32) int {
	return leafHeaderSize + int(i)*leafCellSize
}

// leafCell returns the raw bytes of cell i: key followed by record.
func leafCell(p *Page, i uint32) []byte {
	off := leafCellOffset(i)
	return p.Data[off : off+leafCellSize]
}

func leafKey(p *Page, i uint32) uint32 {
	off := leafCellOffset(i)
	return binary.LittleEndian.Uint32(p.Data[off : off+leafKeySize])
}

func setLeafKey(p *Page, i uint32, key uint32) {
	off := leafCellOffset(i)
	binary.LittleEndian.PutUint32(p.Data[off:off+leafKeySize], key)
}

// leafValue returns the byte span holding cell i's encoded record.
func leafValue(p *Page, i uint32) []byte {
	off := leafCellOffset(i) + leafKeySize
	return p.Data[off : off+record.Size]
}

// initializeLeaf resets p to an empty, non-root leaf.
func initializeLeaf(p *Page) {
	setNodeType(p, NodeTypeLeaf)
	setRoot(p, false)
	setLeafNumCells(p, 0)
}
