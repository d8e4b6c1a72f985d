// Package iomap provides the memory-mapped file lifecycle backing the
// database container: open-or-create, extend, unlink-if-temporary, and a
// close that truncates back down to the logical size (ported from
// core/io.hh/cc's mm_file, POSIX branch).
package iomap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// File is a memory-mapped, page-rounded region backing one open database.
// It is owned by exactly one chessdb.Database; copying a File duplicates
// the mapping without duplicating ownership of the underlying fd, so
// treat it as move-only, matching the C++ RAII-move intent as closely as
// Go allows — never pass a File by value once Open has succeeded.
type File struct {
	f        *os.File
	mem      []byte
	fileSize int
	memSize  int
	temp     bool
	path     string
}

// Error is an iomap failure, wrapping the underlying syscall error with
// the operation that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("iomap: %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

var pageSize = os.Getpagesize()

func roundUp(size int) int {
	return (size + pageSize - 1) &^ (pageSize - 1)
}

// Open opens (creating if necessary) path, sized to size bytes (or the
// file's current size if size is 0), and maps it read-write. If temp is
// true the path is unlinked immediately after opening, so the backing
// file disappears once every fd referencing it (including this process's)
// closes.
func Open(path string, size int, temp bool) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}

	if size == 0 {
		info, serr := f.Stat()
		if serr != nil {
			f.Close()
			return nil, &Error{Op: "stat", Err: serr}
		}
		size = int(info.Size())
	}

	memSize := roundUp(size)

	if err := unix.Fallocate(int(f.Fd()), 0, 0, int64(memSize)); err != nil {
		f.Close()
		return nil, &Error{Op: "fallocate", Err: err}
	}

	if temp {
		if err := os.Remove(path); err != nil {
			f.Close()
			return nil, &Error{Op: "unlink", Err: err}
		}
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, memSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, &Error{Op: "mmap", Err: err}
	}

	return &File{f: f, mem: mem, fileSize: size, memSize: memSize, temp: temp, path: path}, nil
}

// Bytes returns the mapped region, sized to the file's logical length
// (not the page-rounded mapping size).
func (m *File) Bytes() []byte { return m.mem[:m.fileSize] }

// Size returns the file's logical length.
func (m *File) Size() int { return m.fileSize }

// Extend grows the mapping to newSize bytes, remapping if the new size
// exceeds the current page-rounded allocation.
func (m *File) Extend(newSize int) error {
	if newSize <= m.fileSize {
		m.fileSize = newSize
		return nil
	}

	newMemSize := roundUp(newSize)
	if newMemSize > m.memSize {
		if err := unix.Fallocate(int(m.f.Fd()), 0, 0, int64(newMemSize)); err != nil {
			return &Error{Op: "fallocate", Err: err}
		}
		if err := unix.Munmap(m.mem); err != nil {
			return &Error{Op: "munmap", Err: err}
		}
		mem, err := unix.Mmap(int(m.f.Fd()), 0, newMemSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return &Error{Op: "mmap", Err: err}
		}
		m.mem = mem
		m.memSize = newMemSize
	}

	m.fileSize = newSize
	return nil
}

// Sync flushes the mapping's dirty pages to the backing file.
func (m *File) Sync() error {
	if err := unix.Msync(m.mem, unix.MS_SYNC); err != nil {
		return &Error{Op: "msync", Err: err}
	}
	return nil
}

// Close unmaps the region and truncates the backing file down to its
// logical size before closing the descriptor, matching the original's
// close()'s munmap-then-ftruncate-then-close sequence (a temporary file,
// already unlinked, is not truncated). Every step is attempted even if an
// earlier one fails; the first error encountered is returned.
func (m *File) Close() error {
	var errs []error

	if err := unix.Munmap(m.mem); err != nil {
		errs = append(errs, &Error{Op: "munmap", Err: err})
	}
	if !m.temp {
		if err := m.f.Truncate(int64(m.fileSize)); err != nil {
			errs = append(errs, &Error{Op: "ftruncate", Err: err})
		}
	}
	if err := m.f.Close(); err != nil {
		errs = append(errs, &Error{Op: "close", Err: err})
	}

	m.mem = nil
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
