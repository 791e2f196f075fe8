package storage

import "errors"

// Error taxonomy per the engine's contract: some conditions are
// reported to the caller as ordinary values, others are fatal for the
// process. The storage package itself never calls os.Exit — it always
// returns one of these so the caller (the REPL, or the CLI's own
// top-level handler) decides whether to terminate.
var (
	// ErrDuplicateKey is returned by Table.Insert when the key already
	// exists in the tree.
	ErrDuplicateKey = errors.New("storage: duplicate key")

	// ErrTableFull is returned when an insert would need to allocate a
	// page beyond TableMaxPages.
	ErrTableFull = errors.New("storage: table full")

	// ErrCorruptFile is returned by OpenPager when the file length is
	// not a whole multiple of PageSize.
	ErrCorruptFile = errors.New("storage: corrupt file: length is not a multiple of the page size")

	// ErrPageOutOfBounds is returned when a page number at or beyond
	// TableMaxPages is requested.
	ErrPageOutOfBounds = errors.New("storage: page number out of bounds")

	// ErrEmptyPageSlot is returned by FlushPage when the requested slot
	// has never been loaded.
	ErrEmptyPageSlot = errors.New("storage: flush of an empty page slot")

	// ErrNotImplemented covers the cases this core does not handle:
	// splitting a non-root leaf (there is no parent-update path), a
	// tree deeper than the one fixed two-child internal root, an
	// unknown node type, and PrintLeaf on a non-leaf page.
	ErrNotImplemented = errors.New("storage: operation requires internal-node support, not implemented")
)
