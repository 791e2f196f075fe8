package storage

import "minidb/record"

// Cursor is a position within a single leaf: a (page, cell) pair plus
// an end-of-table flag. It holds a non-owning reference to its Table
// and must not outlive a mutation (insert/split) on the leaf it
// points into — callers resolve a cursor to a page view only at the
// point of use, never caching raw page bytes across calls that could
// move cells around.
type Cursor struct {
	table      *Table
	pageNum    uint32
	cellNum    uint32
	endOfTable bool
}

// Key returns the key at the cursor's current cell. Call only when
// the cursor is known to be positioned at an existing cell.
func (c *Cursor) Key() (uint32, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return 0, err
	}
	return leafKey(page, c.cellNum), nil
}

// Value decodes the record at the cursor's current cell.
func (c *Cursor) Value() (record.Record, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return record.Record{}, err
	}
	return record.Decode(leafValue(page, c.cellNum))
}

// End reports whether the cursor has advanced past the last cell.
func (c *Cursor) End() bool { return c.endOfTable }

// Advance moves to the next cell in the current leaf. Once the cell
// count of the current leaf is reached, End becomes true and stays
// true — there is no traversal across leaves via sibling pointers in
// this core (see DESIGN.md); Table.Scan walks additional leaves
// itself when the tree has grown past a single leaf.
func (c *Cursor) Advance() error {
	if c.endOfTable {
		return nil
	}
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return err
	}
	c.cellNum++
	if c.cellNum >= leafNumCells(page) {
		c.endOfTable = true
	}
	return nil
}

// atExistingKey reports whether the cursor sits on a cell whose key
// equals key (used by Insert to detect duplicates after a Find).
func (c *Cursor) atExistingKey(key uint32) (bool, error) {
	page, err := c.table.pager.GetPage(c.pageNum)
	if err != nil {
		return false, err
	}
	if c.cellNum >= leafNumCells(page) {
		return false, nil
	}
	return leafKey(page, c.cellNum) == key, nil
}
