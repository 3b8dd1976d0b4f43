package bigtiff

import (
	"errors"
	"io"
	"os"
)

// Directory chains are scattered across multi-gigabyte slide files but each
// structure is small, so metadata reads go through a modest block cache.
const minMetaBlockSize = 64 * 1024

type dataSource interface {
	Size() int64
	Slice(offset int64, length int) ([]byte, error)
	ReadAt(p []byte, offset int64) (int, error)
	Close() error
}

type blockSource struct {
	file      *os.File
	size      int64
	blockSize int
	buf       []byte
	bufStart  int64
	bufLen    int
}

func newBlockSource(f *os.File, size int64, blockSize int) *blockSource {
	if blockSize < minMetaBlockSize {
		blockSize = minMetaBlockSize
	}
	return &blockSource{file: f, size: size, blockSize: blockSize}
}

func (bs *blockSource) Size() int64 {
	return bs.size
}

func (bs *blockSource) Close() error {
	if bs.file == nil {
		return nil
	}
	err := bs.file.Close()
	bs.file = nil
	bs.buf = nil
	bs.bufLen = 0
	return err
}

func (bs *blockSource) grow(need int) {
	newSize := bs.blockSize
	if newSize == 0 {
		newSize = minMetaBlockSize
	}
	for newSize < need {
		newSize *= 2
	}
	bs.blockSize = newSize
	bs.buf = make([]byte, bs.blockSize)
	bs.bufLen = 0
	bs.bufStart = 0
}

func (bs *blockSource) ensure(offset int64, length int) error {
	if bs.file == nil {
		return io.EOF
	}
	if length > bs.blockSize {
		bs.grow(length)
	}
	if bs.buf == nil {
		bs.buf = make([]byte, bs.blockSize)
	}
	if offset >= bs.bufStart && offset+int64(length) <= bs.bufStart+int64(bs.bufLen) {
		return nil
	}
	if offset >= bs.size {
		bs.bufLen = 0
		return io.EOF
	}
	bs.bufStart = offset
	remain := bs.size - offset
	toRead := bs.blockSize
	if int64(toRead) > remain {
		toRead = int(remain)
	}
	if toRead <= 0 {
		bs.bufLen = 0
		return io.EOF
	}
	n, err := bs.file.ReadAt(bs.buf[:toRead], offset)
	if n < toRead && err == nil {
		err = io.EOF
	}
	if err != nil && !errors.Is(err, io.EOF) {
		bs.bufLen = 0
		return err
	}
	bs.bufLen = n
	if bs.bufLen == 0 {
		return io.EOF
	}
	return err
}

func (bs *blockSource) Slice(offset int64, length int) ([]byte, error) {
	if length <= 0 {
		return []byte{}, nil
	}
	if offset < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if offset >= bs.size {
		return nil, io.EOF
	}
	err := bs.ensure(offset, length)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if bs.bufLen == 0 {
		return nil, io.EOF
	}
	start := int(offset - bs.bufStart)
	if start < 0 || start >= bs.bufLen {
		return nil, io.ErrUnexpectedEOF
	}
	end := start + length
	if end > bs.bufLen {
		end = bs.bufLen
	}
	view := bs.buf[start:end]
	if len(view) < length {
		return view, io.EOF
	}
	return view, err
}

func (bs *blockSource) ReadAt(p []byte, offset int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	view, err := bs.Slice(offset, len(p))
	n := copy(p, view)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// bytesSource adapts an in-memory replacement blob to the dataSource
// interface so the same reader handles both slide files and blobs.
type bytesSource struct {
	data []byte
}

func (b *bytesSource) Size() int64 {
	return int64(len(b.data))
}

func (b *bytesSource) Slice(offset int64, length int) ([]byte, error) {
	if length <= 0 {
		return []byte{}, nil
	}
	if offset < 0 {
		return nil, io.ErrUnexpectedEOF
	}
	if offset >= int64(len(b.data)) {
		return nil, io.EOF
	}
	end := offset + int64(length)
	if end > int64(len(b.data)) {
		return b.data[offset:], io.EOF
	}
	return b.data[offset:end], nil
}

func (b *bytesSource) ReadAt(p []byte, offset int64) (int, error) {
	view, err := b.Slice(offset, len(p))
	n := copy(p, view)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *bytesSource) Close() error {
	b.data = nil
	return nil
}

// sliceExact returns exactly length bytes at offset or a TruncatedDataError.
func sliceExact(src dataSource, offset int64, length int, what string) ([]byte, error) {
	view, err := src.Slice(offset, length)
	if len(view) < length {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, &TruncatedDataError{Offset: offset, Need: length, What: what}
	}
	return view[:length], nil
}
