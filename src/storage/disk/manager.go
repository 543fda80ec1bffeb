package disk

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/savrasov/HeapDB/src/storage"
)

// PageSize is the unit of all disk I/O. Reads and writes always transfer
// whole pages.
const PageSize = 4096

const (
	fileCreateFlags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	fileOpenFlags   = os.O_RDWR
)

// Manager creates, opens and destroys page files on an injected filesystem.
// Production wires afero.NewOsFs(); tests run on afero.NewMemMapFs().
type Manager struct {
	fs afero.Fs
}

func NewManager(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// CreatePageFile creates or truncates the named file and writes exactly one
// zeroed page.
func (m *Manager) CreatePageFile(name string) error {
	f, err := m.fs.OpenFile(filepath.Clean(name), fileCreateFlags, 0o600)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrFileNotFound, name, err)
	}
	defer f.Close()

	zero := make([]byte, PageSize)
	n, err := f.Write(zero)
	if err != nil || n != PageSize {
		return fmt.Errorf("%w: creating %s: %v", storage.ErrWriteFailed, name, err)
	}

	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", storage.ErrWriteFailed, name, err)
	}

	return nil
}

// OpenPageFile opens the named file read/write and positions the cursor on
// page 0. The page count is derived from the file size, rounded up, with a
// minimum of one page.
func (m *Manager) OpenPageFile(name string) (*FileHandle, error) {
	info, err := m.fs.Stat(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrFileNotFound, name)
	}

	f, err := m.fs.OpenFile(filepath.Clean(name), fileOpenFlags, 0o600)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", storage.ErrFileNotFound, name, err)
	}

	totalPages := int((info.Size() + PageSize - 1) / PageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	return &FileHandle{
		Name:       name,
		file:       f,
		totalPages: totalPages,
		cursor:     0,
	}, nil
}

// DestroyPageFile removes the named file.
func (m *Manager) DestroyPageFile(name string) error {
	if _, err := m.fs.Stat(name); err != nil {
		return fmt.Errorf("%w: %s", storage.ErrFileNotFound, name)
	}

	if err := m.fs.Remove(name); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrFileNotFound, name, err)
	}

	return nil
}

// FileHandle is an open page file with a current-page cursor. It owns the
// underlying stream until Close.
type FileHandle struct {
	Name       string
	file       afero.File
	totalPages int
	cursor     int
}

// TotalPages reports the page count observed through this handle.
func (h *FileHandle) TotalPages() int {
	return h.totalPages
}

// BlockPos returns the current page cursor.
func (h *FileHandle) BlockPos() int {
	return h.cursor
}

// Close flushes and closes the stream. Closing an already-closed handle is a
// no-op.
func (h *FileHandle) Close() error {
	if h == nil || h.file == nil {
		return nil
	}

	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrFileCloseFailed, h.Name, err)
	}

	if err := h.file.Close(); err != nil {
		return fmt.Errorf("%w: %s: %v", storage.ErrFileCloseFailed, h.Name, err)
	}

	h.file = nil

	return nil
}

func (h *FileHandle) validate(pageNum int, buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}
	if buf == nil || len(buf) < PageSize {
		return fmt.Errorf("%w: page buffer of %d bytes", storage.ErrInvalidParameter, len(buf))
	}
	if pageNum < 0 || pageNum >= h.totalPages {
		return fmt.Errorf(
			"%w: page %d of %d in %s",
			storage.ErrReadNonExistingPage, pageNum, h.totalPages, h.Name,
		)
	}

	return nil
}

// ReadBlock reads page pageNum into buf and moves the cursor there.
func (h *FileHandle) ReadBlock(pageNum int, buf []byte) error {
	if err := h.validate(pageNum, buf); err != nil {
		return err
	}

	n, err := h.file.ReadAt(buf[:PageSize], int64(pageNum)*PageSize)
	if err != nil && !(err == io.EOF && n == PageSize) {
		return fmt.Errorf(
			"%w: page %d of %s: %v",
			storage.ErrReadNonExistingPage, pageNum, h.Name, err,
		)
	}
	if n != PageSize {
		return fmt.Errorf(
			"%w: short read of page %d of %s",
			storage.ErrReadNonExistingPage, pageNum, h.Name,
		)
	}

	h.cursor = pageNum

	return nil
}

func (h *FileHandle) ReadFirstBlock(buf []byte) error {
	return h.ReadBlock(0, buf)
}

func (h *FileHandle) ReadPreviousBlock(buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}
	if h.cursor-1 < 0 {
		return fmt.Errorf("%w: before first page of %s", storage.ErrReadNonExistingPage, h.Name)
	}

	return h.ReadBlock(h.cursor-1, buf)
}

func (h *FileHandle) ReadCurrentBlock(buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}

	return h.ReadBlock(h.cursor, buf)
}

func (h *FileHandle) ReadNextBlock(buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}
	if h.cursor+1 >= h.totalPages {
		return fmt.Errorf("%w: past last page of %s", storage.ErrReadNonExistingPage, h.Name)
	}

	return h.ReadBlock(h.cursor+1, buf)
}

func (h *FileHandle) ReadLastBlock(buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}

	return h.ReadBlock(h.totalPages-1, buf)
}

// WriteBlock writes buf to page pageNum, flushes the stream and moves the
// cursor there.
func (h *FileHandle) WriteBlock(pageNum int, buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}
	if buf == nil || len(buf) < PageSize {
		return fmt.Errorf("%w: page buffer of %d bytes", storage.ErrInvalidParameter, len(buf))
	}
	if pageNum < 0 || pageNum >= h.totalPages {
		return fmt.Errorf(
			"%w: page %d of %d in %s",
			storage.ErrReadNonExistingPage, pageNum, h.totalPages, h.Name,
		)
	}

	n, err := h.file.WriteAt(buf[:PageSize], int64(pageNum)*PageSize)
	if err != nil || n != PageSize {
		return fmt.Errorf("%w: page %d of %s: %v", storage.ErrWriteFailed, pageNum, h.Name, err)
	}

	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", storage.ErrWriteFailed, h.Name, err)
	}

	h.cursor = pageNum

	return nil
}

// WriteCurrentBlock writes buf at the cursor.
func (h *FileHandle) WriteCurrentBlock(buf []byte) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}

	return h.WriteBlock(h.cursor, buf)
}

// AppendEmptyBlock grows the file by one zeroed page and leaves the cursor on
// it.
func (h *FileHandle) AppendEmptyBlock() error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}

	zero := make([]byte, PageSize)
	n, err := h.file.WriteAt(zero, int64(h.totalPages)*PageSize)
	if err != nil || n != PageSize {
		return fmt.Errorf("%w: appending to %s: %v", storage.ErrWriteFailed, h.Name, err)
	}

	if err := h.file.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %v", storage.ErrWriteFailed, h.Name, err)
	}

	h.totalPages++
	h.cursor = h.totalPages - 1

	return nil
}

// EnsureCapacity appends zeroed pages one at a time until the file holds at
// least numPages pages. On an intermediate failure the file keeps the pages
// that were appended successfully; TotalPages reflects exactly what is on
// disk.
func (h *FileHandle) EnsureCapacity(numPages int) error {
	if h == nil || h.file == nil {
		return storage.ErrFileHandleNotInit
	}

	for h.totalPages < numPages {
		if err := h.AppendEmptyBlock(); err != nil {
			return err
		}
	}

	return nil
}
