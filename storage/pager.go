package storage

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

const (
	// PageSize is the fixed size of every page, in bytes.
	PageSize = 4096
	// TableMaxPages bounds the pager's page-slot array; it is the only
	// thing standing in for real memory limits in this engine.
	TableMaxPages = 100
)

// Page is one fixed-size page buffer, resident in memory once loaded.
type Page struct {
	Data  [PageSize]byte
	Dirty bool
}

// Pager is the file-backed page cache. It owns every page buffer
// exclusively; callers mutate page bytes only through the node codec
// accessors in this package. There is no eviction: a page, once
// loaded, stays resident until Close.
type Pager struct {
	file     *os.File
	pages    [TableMaxPages]*Page
	numPages int
	log      *zap.Logger
}

// OpenPager opens path for read/write, creating it if absent, and
// computes the number of pages already on disk. A file whose length
// is not a whole multiple of PageSize is reported as corrupt.
func OpenPager(path string, log *zap.Logger) (*Pager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("storage: stat %s: %w", path, err)
	}
	fileLength := fi.Size()
	if fileLength%PageSize != 0 {
		f.Close()
		log.Error("corrupt database file",
			zap.String("path", path), zap.Int64("length", fileLength))
		return nil, ErrCorruptFile
	}

	p := &Pager{
		file:     f,
		numPages: int(fileLength / PageSize),
		log:      log,
	}
	log.Debug("opened pager", zap.String("path", path), zap.Int("num_pages", p.numPages))
	return p, nil
}

// NumPages reports how many page slots are currently in play.
func (p *Pager) NumPages() uint32 { return uint32(p.numPages) }

// pagesOnDisk returns how many pages the underlying file currently
// spans, counting a non-empty trailing partial page as one more.
func (p *Pager) pagesOnDisk() (uint32, error) {
	fi, err := p.file.Stat()
	if err != nil {
		return 0, fmt.Errorf("storage: stat: %w", err)
	}
	n := fi.Size() / PageSize
	if fi.Size()%PageSize != 0 {
		n++
	}
	return uint32(n), nil
}

// GetPage returns the page buffer for n, materializing it from disk
// (or as a zero-filled buffer, if n lies beyond the on-disk extent)
// on first access. Requesting a page at or beyond TableMaxPages is
// fatal. Loading a page at or beyond the current page count extends
// the pager's page count to n+1.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if n >= TableMaxPages {
		p.log.Error("page request out of bounds", zap.Uint32("page", n), zap.Int("max", TableMaxPages))
		return nil, fmt.Errorf("%w: page %d, max %d", ErrPageOutOfBounds, n, TableMaxPages)
	}

	if p.pages[n] == nil {
		pg := &Page{}

		onDisk, err := p.pagesOnDisk()
		if err != nil {
			return nil, err
		}
		if n <= onDisk {
			if _, err := p.file.Seek(int64(n)*PageSize, io.SeekStart); err != nil {
				return nil, fmt.Errorf("storage: seek page %d: %w", n, err)
			}
			if _, err := io.ReadFull(p.file, pg.Data[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				p.log.Error("page read failed", zap.Uint32("page", n), zap.Error(err))
				return nil, fmt.Errorf("storage: read page %d: %w", n, err)
			}
		}

		p.pages[n] = pg
		if n >= uint32(p.numPages) {
			p.numPages = int(n) + 1
		}
	}
	return p.pages[n], nil
}

// GetUnusedPageNum returns the page number that the next allocation
// would use. It never mutates pager state; the page only comes into
// existence (and num_pages only grows) once something calls GetPage
// with that number, typically right before initializing the fresh node.
func (p *Pager) GetUnusedPageNum() uint32 {
	return uint32(p.numPages)
}

// FlushPage writes the full PageSize bytes of slot n to its offset in
// the file. Flushing a slot that was never loaded is fatal.
func (p *Pager) FlushPage(n uint32) error {
	pg := p.pages[n]
	if pg == nil {
		p.log.Error("flush of empty page slot", zap.Uint32("page", n))
		return fmt.Errorf("%w: page %d", ErrEmptyPageSlot, n)
	}
	if _, err := p.file.Seek(int64(n)*PageSize, io.SeekStart); err != nil {
		return fmt.Errorf("storage: seek page %d: %w", n, err)
	}
	if _, err := p.file.Write(pg.Data[:]); err != nil {
		p.log.Error("page flush failed", zap.Uint32("page", n), zap.Error(err))
		return fmt.Errorf("storage: write page %d: %w", n, err)
	}
	pg.Dirty = false
	return nil
}

// Close flushes every resident page, releases all slots, and closes
// the underlying file descriptor.
func (p *Pager) Close() error {
	for n := 0; n < p.numPages; n++ {
		if p.pages[n] == nil {
			continue
		}
		if err := p.FlushPage(uint32(n)); err != nil {
			return err
		}
		p.pages[n] = nil
	}
	p.log.Debug("closed pager", zap.Int("num_pages", p.numPages))
	return p.file.Close()
}
