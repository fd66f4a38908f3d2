//go:build windows

package mmap

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func osMap(f *os.File, size int) ([]byte, func([]byte) error, error) {
	if size == 0 {
		return nil, nil, nil
	}

	sizeHigh := uint32(uint64(size) >> 32)
	sizeLow := uint32(uint64(size) & 0xffffffff)

	h, err := windows.CreateFileMapping(windows.Handle(f.Fd()), nil, windows.PAGE_READWRITE, sizeHigh, sizeLow, nil)
	if err != nil {
		return nil, nil, err
	}
	// The view keeps its own reference to the mapping object.
	defer windows.CloseHandle(h)

	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_WRITE, 0, 0, uintptr(size))
	if err != nil {
		return nil, nil, err
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	return data, func(b []byte) error {
		return windows.UnmapViewOfFile(addr)
	}, nil
}

func osFlush(f *os.File, data []byte) error {
	addr := uintptr(unsafe.Pointer(&data[0]))
	if err := windows.FlushViewOfFile(addr, uintptr(len(data))); err != nil {
		return err
	}
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}

func osAdvise(data []byte, pattern AccessPattern) error {
	// Windows has no madvise equivalent.
	_ = data
	_ = pattern
	return nil
}
