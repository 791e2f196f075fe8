package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"minidb/record"
)

func testRecord(key uint32) record.Record {
	return record.Record{Key: key, Username: "user", Email: "user@example.com"}
}

func TestInsertFindSingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Insert(1, testRecord(1)))

	cur, err := tbl.Find(1)
	require.NoError(t, err)
	key, err := cur.Key()
	require.NoError(t, err)
	require.Equal(t, uint32(1), key)
	rec, err := cur.Value()
	require.NoError(t, err)
	require.Equal(t, testRecord(1), rec)
}

func TestInsertRejectsDuplicateKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	require.NoError(t, tbl.Insert(5, testRecord(5)))
	err = tbl.Insert(5, testRecord(5))
	require.ErrorIs(t, err, ErrDuplicateKey)

	var keys []uint32
	require.NoError(t, tbl.Scan(func(k uint32, _ record.Record) error {
		keys = append(keys, k)
		return nil
	}))
	require.Equal(t, []uint32{5}, keys)
}

func TestInsertOutOfOrderKeepsAscendingScanOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	for _, k := range []uint32{5, 1, 9, 3, 7} {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}

	var keys []uint32
	require.NoError(t, tbl.Scan(func(k uint32, _ record.Record) error {
		keys = append(keys, k)
		return nil
	}))
	require.Equal(t, []uint32{1, 3, 5, 7, 9}, keys)
}

func TestLeafFillsToMaxCellsWithoutSplitting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	for k := uint32(1); k <= LeafMaxCells; k++ {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}

	root, err := tbl.pager.GetPage(tbl.rootPageNum)
	require.NoError(t, err)
	require.Equal(t, NodeTypeLeaf, getNodeType(root))
	require.Equal(t, uint32(LeafMaxCells), leafNumCells(root))
}

func TestOneMoreThanMaxCellsSplitsRootIntoTwoLeaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	for k := uint32(1); k <= LeafMaxCells+1; k++ {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}

	root, err := tbl.pager.GetPage(tbl.rootPageNum)
	require.NoError(t, err)
	require.Equal(t, NodeTypeInternal, getNodeType(root))
	require.True(t, isRoot(root))

	leftNum := internalLeftChild(root)
	rightNum := internalRightChild(root)
	left, err := tbl.pager.GetPage(leftNum)
	require.NoError(t, err)
	right, err := tbl.pager.GetPage(rightNum)
	require.NoError(t, err)

	total := uint32(LeafMaxCells + 1)
	wantLeft := (total + 1) / 2
	wantRight := total - wantLeft
	require.Equal(t, wantLeft, leafNumCells(left))
	require.Equal(t, wantRight, leafNumCells(right))
	require.False(t, isRoot(left))
	require.False(t, isRoot(right))
	require.Equal(t, tbl.rootPageNum, parentPage(left))
	require.Equal(t, tbl.rootPageNum, parentPage(right))

	var keys []uint32
	require.NoError(t, tbl.Scan(func(k uint32, _ record.Record) error {
		keys = append(keys, k)
		return nil
	}))
	require.Len(t, keys, int(total))
	for i := 1; i < len(keys); i++ {
		require.Less(t, keys[i-1], keys[i])
	}
}

func TestFourteenInsertsThenReopenScansAllRowsInOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)

	for k := uint32(1); k <= 14; k++ {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}
	require.NoError(t, tbl.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	var got []uint32
	require.NoError(t, reopened.Scan(func(k uint32, rec record.Record) error {
		got = append(got, k)
		require.Equal(t, testRecord(k), rec)
		return nil
	}))

	want := make([]uint32, 14)
	for i := range want {
		want[i] = uint32(i + 1)
	}
	require.Equal(t, want, got)
}

func TestEmptyTableScanVisitsNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	cur, err := tbl.Start()
	require.NoError(t, err)
	require.True(t, cur.End())

	calls := 0
	require.NoError(t, tbl.Scan(func(uint32, record.Record) error {
		calls++
		return nil
	}))
	require.Equal(t, 0, calls)
}

func TestCloseWritesExactlyNumPagesTimesPageSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)

	for k := uint32(1); k <= 14; k++ {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}
	numPages := tbl.pager.NumPages()
	require.NoError(t, tbl.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(numPages)*PageSize, fi.Size())
}

// TestInsertReportsTableFullBeforeExceedingMaxPages drives a root
// split right up against TableMaxPages by pre-loading every page slot
// but the last one, so that the split the 14th insert triggers runs
// out of page numbers while promoting the new root, not while
// allocating the sibling leaf. This must surface as ErrTableFull, not
// the pager's generic ErrPageOutOfBounds.
func TestInsertReportsTableFullBeforeExceedingMaxPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.db")
	tbl, err := Open(path, nil)
	require.NoError(t, err)
	defer tbl.Close()

	for k := uint32(1); k <= LeafMaxCells; k++ {
		require.NoError(t, tbl.Insert(k, testRecord(k)))
	}

	for n := uint32(1); n < TableMaxPages-1; n++ {
		_, err := tbl.pager.GetPage(n)
		require.NoError(t, err)
	}
	require.Equal(t, uint32(TableMaxPages-1), tbl.pager.NumPages())

	err = tbl.Insert(LeafMaxCells+1, testRecord(LeafMaxCells+1))
	require.ErrorIs(t, err, ErrTableFull)
}
