//go:build windows

package menu

import (
	"bytes"
	"encoding/binary"
	"image/png"

	"github.com/example/panbox/internal/logging"
)

// icoHeader is ICONDIR followed by a single ICONDIRENTRY.
type icoHeader struct {
	Reserved   uint16
	Type       uint16
	Count      uint16
	Width      uint8
	Height     uint8
	Colors     uint8
	Reserved2  uint8
	Planes     uint16
	BitCount   uint16
	BytesInRes uint32
	Offset     uint32
}

const icoHeaderSize = 6 + 16

// platformNormalizeIcon wraps the PNG tray icon in an ICO container, which
// is the only format the Windows notification area accepts.
func platformNormalizeIcon(data []byte) []byte {
	if isICO(data) {
		return data
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		logging.Debugf("failed to decode tray icon png: %v", err)
		return nil
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		logging.Debugf("tray icon image has invalid bounds: %dx%d", cfg.Width, cfg.Height)
		return nil
	}

	hdr := icoHeader{
		Type:       1,
		Count:      1,
		Width:      icoDimension(cfg.Width),
		Height:     icoDimension(cfg.Height),
		Planes:     1,
		BitCount:   32,
		BytesInRes: uint32(len(data)),
		Offset:     icoHeaderSize,
	}
	buf := bytes.NewBuffer(make([]byte, 0, icoHeaderSize+len(data)))
	if err := binary.Write(buf, binary.LittleEndian, hdr); err != nil {
		logging.Debugf("failed to write ico header: %v", err)
		return nil
	}
	buf.Write(data)
	return buf.Bytes()
}

// icoDimension encodes 256 and larger as 0, per the ICO format.
func icoDimension(v int) uint8 {
	if v <= 0 || v >= 256 {
		return 0
	}
	return uint8(v)
}

func isICO(data []byte) bool {
	return len(data) >= 4 && data[0] == 0x00 && data[1] == 0x00 && data[2] == 0x01 && data[3] == 0x00
}
