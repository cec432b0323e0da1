package intake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrDurationUnavailable 表示无法从容器中提取时长。
var ErrDurationUnavailable = errors.New("duration unavailable")

// ProbeMP4Duration 从 MP4/MOV 容器的 moov/mvhd box 中读取视频时长（秒）。
// 仅支持 ISO BMFF 系容器；其他格式返回 ErrDurationUnavailable，
// 调用方将时长视为 best-effort 元数据。
func ProbeMP4Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat file: %w", err)
	}

	moovOffset, moovSize, err := findBox(f, 0, info.Size(), "moov")
	if err != nil {
		return 0, err
	}
	mvhdOffset, mvhdSize, err := findBox(f, moovOffset, moovSize, "mvhd")
	if err != nil {
		return 0, err
	}
	return readMvhdDuration(f, mvhdOffset, mvhdSize)
}

// findBox 在 [start, start+limit) 范围内线性扫描顶层 box，返回目标 box 的 payload 偏移与长度。
func findBox(r io.ReaderAt, start, limit int64, name string) (int64, int64, error) {
	offset := start
	end := start + limit
	header := make([]byte, 16)
	for offset+8 <= end {
		if _, err := r.ReadAt(header[:8], offset); err != nil {
			return 0, 0, ErrDurationUnavailable
		}
		size := int64(binary.BigEndian.Uint32(header[:4]))
		boxType := string(header[4:8])
		headerLen := int64(8)
		switch size {
		case 0:
			// box extends to end of range
			size = end - offset
		case 1:
			if _, err := r.ReadAt(header[8:16], offset+8); err != nil {
				return 0, 0, ErrDurationUnavailable
			}
			size = int64(binary.BigEndian.Uint64(header[8:16]))
			headerLen = 16
		}
		if size < headerLen {
			return 0, 0, ErrDurationUnavailable
		}
		if boxType == name {
			return offset + headerLen, size - headerLen, nil
		}
		offset += size
	}
	return 0, 0, ErrDurationUnavailable
}

func readMvhdDuration(r io.ReaderAt, offset, size int64) (float64, error) {
	buf := make([]byte, 32)
	if size < 24 {
		return 0, ErrDurationUnavailable
	}
	if _, err := r.ReadAt(buf, offset); err != nil {
		return 0, ErrDurationUnavailable
	}

	version := buf[0]
	var timescale uint32
	var duration uint64
	switch version {
	case 0:
		// version(1) flags(3) creation(4) modification(4) timescale(4) duration(4)
		timescale = binary.BigEndian.Uint32(buf[12:16])
		duration = uint64(binary.BigEndian.Uint32(buf[16:20]))
	case 1:
		// version(1) flags(3) creation(8) modification(8) timescale(4) duration(8)
		timescale = binary.BigEndian.Uint32(buf[20:24])
		duration = binary.BigEndian.Uint64(buf[24:32])
	default:
		return 0, ErrDurationUnavailable
	}
	if timescale == 0 {
		return 0, ErrDurationUnavailable
	}
	return float64(duration) / float64(timescale), nil
}
