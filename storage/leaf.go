package storage

import "minidb/record"

// leafFind performs a binary search over [0, numCells) for key within
// the leaf at pageNum. The returned cursor points at the exact
// matching cell if key is present, otherwise at the insertion
// position: the first cell with a key greater than the target, or
// cellNum == numCells if key is greater than everything in the leaf.
func leafFind(t *Table, pageNum uint32, key uint32) (*Cursor, error) {
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}

	n := leafNumCells(page)
	lo, hi := uint32(0), n
	for lo < hi {
		mid := lo + (hi-lo)/2
		if leafKey(page, mid) >= key {
			hi = mid
		} else {
			lo = mid + 1
		}
	}

	return &Cursor{table: t, pageNum: pageNum, cellNum: lo}, nil
}

// leafInsert writes (key, rec) at cur's position, assuming the caller
// has already established via leafFind that key is absent. If the
// leaf is full, it delegates to leafSplitAndInsert.
func leafInsert(t *Table, cur *Cursor, key uint32, rec record.Record) error {
	page, err := t.pager.GetPage(cur.pageNum)
	if err != nil {
		return err
	}

	n := leafNumCells(page)
	if n >= LeafMaxCells {
		return leafSplitAndInsert(t, cur, key, rec)
	}

	for i := n; i > cur.cellNum; i-- {
		copy(leafCell(page, i), leafCell(page, i-1))
	}

	setLeafKey(page, cur.cellNum, key)
	if err := record.Encode(rec, leafValue(page, cur.cellNum)); err != nil {
		return err
	}
	setLeafNumCells(page, n+1)
	page.Dirty = true
	return nil
}

// leafSplitAndInsert divides a full leaf's max_cells+1 cells (the
// existing cells plus the one being inserted) evenly between the
// original page and a freshly allocated sibling, working right to
// left so that no cell is overwritten before it has been copied. If
// the split is at the root, it invokes the root-creation hook;
// otherwise updating the parent is out of scope for this core.
// Returns ErrTableFull rather than allocating past TableMaxPages.
func leafSplitAndInsert(t *Table, cur *Cursor, key uint32, rec record.Record) error {
	oldPage, err := t.pager.GetPage(cur.pageNum)
	if err != nil {
		return err
	}

	newPageNum := t.pager.GetUnusedPageNum()
	if newPageNum >= TableMaxPages {
		return ErrTableFull
	}
	newPage, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}
	initializeLeaf(newPage)

	newRecBuf := make([]byte, record.Size)
	if err := record.Encode(rec, newRecBuf); err != nil {
		return err
	}

	total := uint32(LeafMaxCells + 1)
	leftCount := (total + 1) / 2
	rightCount := total - leftCount

	for i := int(LeafMaxCells); i >= 0; i-- {
		idx := uint32(i)
		var dest *Page
		if idx >= leftCount {
			dest = newPage
		} else {
			dest = oldPage
		}
		destIdx := idx % leftCount

		switch {
		case idx == cur.cellNum:
			setLeafKey(dest, destIdx, key)
			copy(leafValue(dest, destIdx), newRecBuf)
		case idx > cur.cellNum:
			copy(leafCell(dest, destIdx), leafCell(oldPage, idx-1))
		default:
			copy(leafCell(dest, destIdx), leafCell(oldPage, idx))
		}
	}

	setLeafNumCells(oldPage, leftCount)
	setLeafNumCells(newPage, rightCount)
	oldPage.Dirty = true
	newPage.Dirty = true

	if isRoot(oldPage) {
		return t.createNewRoot(cur.pageNum, newPageNum, leafKey(newPage, 0))
	}
	return ErrNotImplemented
}
