package storage

import (
	"fmt"
	"io"

	"minidb/record"
)

// PrintLeaf writes the cell count and each (index, key) pair for the
// leaf at pageNum. Diagnostic only, not part of the stable contract.
func (t *Table) PrintLeaf(w io.Writer, pageNum uint32) error {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return err
	}
	if getNodeType(page) != NodeTypeLeaf {
		return fmt.Errorf("%w: PrintLeaf on a non-leaf page", ErrNotImplemented)
	}
	n := leafNumCells(page)
	fmt.Fprintf(w, "leaf (size %d)\n", n)
	for i := uint32(0); i < n; i++ {
		fmt.Fprintf(w, "  - %d : %d\n", i, leafKey(page, i))
	}
	return nil
}

// PrintTree writes a one-level dump of the tree: the root leaf, or —
// once the root-creation hook has promoted a split — the root's two
// children. There is no support for deeper trees in this core.
func (t *Table) PrintTree(w io.Writer) error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}
	switch getNodeType(root) {
	case NodeTypeLeaf:
		return t.PrintLeaf(w, t.rootPageNum)
	case NodeTypeInternal:
		fmt.Fprintf(w, "internal (key %d)\n", internalSeparatorKey(root))
		if err := t.PrintLeaf(w, internalLeftChild(root)); err != nil {
			return err
		}
		return t.PrintLeaf(w, internalRightChild(root))
	default:
		return fmt.Errorf("%w: unknown node type", ErrNotImplemented)
	}
}

// PrintConstants writes the layout sizes this build was compiled
// with. Diagnostic only, not part of the stable contract.
func PrintConstants(w io.Writer) {
	fmt.Fprintf(w, "ROW_SIZE: %d\n", record.Size)
	fmt.Fprintf(w, "COMMON_NODE_HEADER_SIZE: %d\n", commonHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_HEADER_SIZE: %d\n", leafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_CELL_SIZE: %d\n", leafCellSize)
	fmt.Fprintf(w, "LEAF_NODE_SPACE_FOR_CELLS: %d\n", PageSize-leafHeaderSize)
	fmt.Fprintf(w, "LEAF_NODE_MAX_CELLS: %d\n", LeafMaxCells)
}
