package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Zip central directory layout constants (PKWARE APPNOTE.TXT)
const (
	eocdSignature      uint32 = 0x06054b50
	eocd64Signature    uint32 = 0x06064b50
	eocd64LocSignature uint32 = 0x07064b50
	centralSignature   uint32 = 0x02014b50

	eocdLen          = 22
	eocd64Len        = 56
	eocd64LocLen     = 20
	centralHeaderLen = 46
	maxCommentLen    = 0xffff
)

// readInternalAttrs returns the internal file attribute word of every central
// directory entry, in central directory order. archive/zip walks the same
// records but discards this field, so it is recovered here; the result is
// index-aligned with zip.Reader.File.
func readInternalAttrs(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()

	eocd, eocdOff, err := findEOCD(f, size)
	if err != nil {
		return nil, err
	}

	entries := int64(binary.LittleEndian.Uint16(eocd[10:12]))
	dirSize := int64(binary.LittleEndian.Uint32(eocd[12:16]))
	dirOffset := int64(binary.LittleEndian.Uint32(eocd[16:20]))

	// Sentinel values mean the real numbers live in the zip64 record
	recOff := eocdOff
	if entries == 0xffff || dirSize == 0xffffffff || dirOffset == 0xffffffff {
		rec, off, err := findEOCD64(f, eocdOff)
		if err != nil {
			return nil, err
		}
		entries = int64(binary.LittleEndian.Uint64(rec[32:40]))
		dirSize = int64(binary.LittleEndian.Uint64(rec[40:48]))
		dirOffset = int64(binary.LittleEndian.Uint64(rec[48:56]))
		recOff = off
	}

	// Self-extracting archives prepend data, shifting every stored offset
	base := recOff - dirSize - dirOffset
	if base < 0 {
		base = 0
	}
	if dirSize < 0 || base+dirOffset+dirSize > size {
		return nil, errors.New("central directory out of bounds")
	}
	if entries < 0 || entries > dirSize/centralHeaderLen {
		return nil, errors.New("central directory entry count inconsistent")
	}

	buf := make([]byte, dirSize)
	if _, err := f.ReadAt(buf, base+dirOffset); err != nil {
		return nil, fmt.Errorf("failed to read central directory: %w", err)
	}

	attrs := make([]uint16, 0, entries)
	off := 0
	for i := int64(0); i < entries; i++ {
		if off+centralHeaderLen > len(buf) {
			return nil, errors.New("central directory truncated")
		}
		rec := buf[off:]
		if binary.LittleEndian.Uint32(rec[0:4]) != centralSignature {
			return nil, errors.New("bad central directory record signature")
		}

		nameLen := int(binary.LittleEndian.Uint16(rec[28:30]))
		extraLen := int(binary.LittleEndian.Uint16(rec[30:32]))
		commentLen := int(binary.LittleEndian.Uint16(rec[32:34]))
		attrs = append(attrs, binary.LittleEndian.Uint16(rec[36:38]))

		off += centralHeaderLen + nameLen + extraLen + commentLen
	}

	return attrs, nil
}

// findEOCD locates the end-of-central-directory record by scanning backward
// through the longest possible trailing comment. It returns the fixed-size
// record and its offset in the file.
func findEOCD(f *os.File, size int64) ([]byte, int64, error) {
	tail := int64(eocdLen + maxCommentLen)
	if tail > size {
		tail = size
	}
	if tail < eocdLen {
		return nil, 0, errors.New("file too small to be a zip archive")
	}

	start := size - tail
	buf := make([]byte, tail)
	if _, err := f.ReadAt(buf, start); err != nil {
		return nil, 0, err
	}

	for i := len(buf) - eocdLen; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) != eocdSignature {
			continue
		}
		commentLen := int64(binary.LittleEndian.Uint16(buf[i+20 : i+22]))
		if start+int64(i)+eocdLen+commentLen <= size {
			return buf[i : i+eocdLen], start + int64(i), nil
		}
	}

	return nil, 0, errors.New("end of central directory not found")
}

// findEOCD64 reads the zip64 end-of-central-directory record through the
// locator that sits directly before the classic record.
func findEOCD64(f *os.File, eocdOff int64) ([]byte, int64, error) {
	if eocdOff < eocd64LocLen {
		return nil, 0, errors.New("zip64 locator not found")
	}

	loc := make([]byte, eocd64LocLen)
	if _, err := f.ReadAt(loc, eocdOff-eocd64LocLen); err != nil {
		return nil, 0, err
	}
	if binary.LittleEndian.Uint32(loc[0:4]) != eocd64LocSignature {
		return nil, 0, errors.New("zip64 locator not found")
	}

	recOff := int64(binary.LittleEndian.Uint64(loc[8:16]))
	rec := make([]byte, eocd64Len)
	if _, err := f.ReadAt(rec, recOff); err != nil {
		return nil, 0, err
	}
	if binary.LittleEndian.Uint32(rec[0:4]) != eocd64Signature {
		return nil, 0, errors.New("bad zip64 end of central directory signature")
	}

	return rec, recOff, nil
}
