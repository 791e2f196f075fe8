package storage

import (
	"fmt"

	"go.uber.org/zap"

	"minidb/record"
)

// Table is the root-page identity and the facade that dispatches
// find/insert/scan onto cursors. It exclusively owns the Pager.
type Table struct {
	pager       *Pager
	rootPageNum uint32
	log         *zap.Logger
}

// Open opens (creating if absent) the database file at path. A
// brand-new, empty file gets its page 0 initialized as an empty leaf
// marked root; an existing file's root is recovered as page 0 as-is.
func Open(path string, log *zap.Logger) (*Table, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pager, err := OpenPager(path, log)
	if err != nil {
		return nil, err
	}

	t := &Table{pager: pager, rootPageNum: 0, log: log}
	if pager.NumPages() == 0 {
		root, err := pager.GetPage(0)
		if err != nil {
			return nil, err
		}
		initializeLeaf(root)
		setRoot(root, true)
		root.Dirty = true
	}
	return t, nil
}

// Close flushes every resident page and closes the underlying file.
func (t *Table) Close() error {
	return t.pager.Close()
}

// Find returns a cursor positioned at key's cell if it exists,
// otherwise at the position key would be inserted at.
func (t *Table) Find(key uint32) (*Cursor, error) {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return nil, err
	}

	switch getNodeType(root) {
	case NodeTypeLeaf:
		return leafFind(t, t.rootPageNum, key)
	case NodeTypeInternal:
		child := internalChildForKey(root, key)
		childPage, err := t.pager.GetPage(child)
		if err != nil {
			return nil, err
		}
		if getNodeType(childPage) != NodeTypeLeaf {
			return nil, fmt.Errorf("%w: find below a second internal level", ErrNotImplemented)
		}
		return leafFind(t, child, key)
	default:
		return nil, fmt.Errorf("%w: unknown node type", ErrNotImplemented)
	}
}

// Insert adds key/rec to the tree. Duplicate keys are reported as
// ErrDuplicateKey rather than overwriting the existing record.
func (t *Table) Insert(key uint32, rec record.Record) error {
	cur, err := t.Find(key)
	if err != nil {
		return err
	}
	dup, err := cur.atExistingKey(key)
	if err != nil {
		return err
	}
	if dup {
		return ErrDuplicateKey
	}
	return leafInsert(t, cur, key, rec)
}

// createNewRoot is the hook invoked when a split happens at the root.
// The protocol for promoting a split root into a general, growable
// internal root is left undefined (see DESIGN.md); this core
// implements only the one fixed two-child shape needed to finish a
// single root split. The root keeps its page number: its left half is
// copied to a freshly allocated page, and the root page is rewritten
// as the internal node over that copy and newPageNum. Returns
// ErrTableFull rather than allocating past TableMaxPages.
func (t *Table) createNewRoot(oldPageNum, newPageNum, splitKey uint32) error {
	oldPage, err := t.pager.GetPage(oldPageNum)
	if err != nil {
		return err
	}
	leftNum := t.pager.GetUnusedPageNum()
	if leftNum >= TableMaxPages {
		return ErrTableFull
	}
	leftPage, err := t.pager.GetPage(leftNum)
	if err != nil {
		return err
	}
	rightPage, err := t.pager.GetPage(newPageNum)
	if err != nil {
		return err
	}

	leftPage.Data = oldPage.Data
	setRoot(leftPage, false)
	setParentPage(leftPage, oldPageNum)
	leftPage.Dirty = true

	setParentPage(rightPage, oldPageNum)
	rightPage.Dirty = true

	initializeInternalRoot(oldPage, leftNum, newPageNum, splitKey)
	oldPage.Dirty = true

	t.log.Debug("promoted split root",
		zap.Uint32("left", leftNum), zap.Uint32("right", newPageNum),
		zap.Uint32("root", oldPageNum), zap.Uint32("split_key", splitKey))
	return nil
}

// leftmostLeaf returns the page number of the first leaf in key
// order: the root itself if it is a leaf, or the fixed left child if
// the root has been promoted to the one-hook internal shape.
func (t *Table) leftmostLeaf() (uint32, error) {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return 0, err
	}
	switch getNodeType(root) {
	case NodeTypeLeaf:
		return t.rootPageNum, nil
	case NodeTypeInternal:
		return internalLeftChild(root), nil
	default:
		return 0, fmt.Errorf("%w: unknown node type", ErrNotImplemented)
	}
}

// Start returns a cursor positioned at the first row of the table, if
// any.
func (t *Table) Start() (*Cursor, error) {
	pageNum, err := t.leftmostLeaf()
	if err != nil {
		return nil, err
	}
	page, err := t.pager.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	return &Cursor{table: t, pageNum: pageNum, cellNum: 0, endOfTable: leafNumCells(page) == 0}, nil
}

// Scan visits every record in ascending key order. Because Cursor
// does not traverse across leaves on its own (see cursor.go), Scan
// itself walks each leaf of the tree in turn: just the root leaf, or
// — once the one hook hook has promoted a split — the left child
// followed by the right child.
func (t *Table) Scan(visit func(key uint32, rec record.Record) error) error {
	root, err := t.pager.GetPage(t.rootPageNum)
	if err != nil {
		return err
	}

	var leaves []uint32
	switch getNodeType(root) {
	case NodeTypeLeaf:
		leaves = []uint32{t.rootPageNum}
	case NodeTypeInternal:
		leaves = []uint32{internalLeftChild(root), internalRightChild(root)}
	default:
		return fmt.Errorf("%w: unknown node type", ErrNotImplemented)
	}

	for _, pageNum := range leaves {
		page, err := t.pager.GetPage(pageNum)
		if err != nil {
			return err
		}
		if getNodeType(page) != NodeTypeLeaf {
			return fmt.Errorf("%w: scan below a second internal level", ErrNotImplemented)
		}
		cur := &Cursor{table: t, pageNum: pageNum, cellNum: 0, endOfTable: leafNumCells(page) == 0}
		for !cur.End() {
			key, err := cur.Key()
			if err != nil {
				return err
			}
			rec, err := cur.Value()
			if err != nil {
				return err
			}
			if err := visit(key, rec); err != nil {
				return err
			}
			if err := cur.Advance(); err != nil {
				return err
			}
		}
	}
	return nil
}
