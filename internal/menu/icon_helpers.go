package menu

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

const iconSize = 32

var (
	defaultIconData = renderIcon(color.RGBA{R: 0x1f, G: 0x6f, B: 0xb5, A: 0xff})
	offlineIconData = renderIcon(color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff})
)

// renderIcon draws the padlock tray icon in fill.
func renderIcon(fill color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	// body
	for y := 14; y < 29; y++ {
		for x := 6; x < 26; x++ {
			img.SetRGBA(x, y, fill)
		}
	}
	// shackle: upper half ring around (16,14)
	for y := 3; y < 14; y++ {
		for x := 6; x < 26; x++ {
			dx, dy := x-16, y-14
			d := dx*dx + dy*dy
			if d <= 9*9 && d >= 6*6 {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	// keyhole
	for y := 19; y < 25; y++ {
		img.SetRGBA(15, y, color.RGBA{})
		img.SetRGBA(16, y, color.RGBA{})
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}

func trayIcon(connected bool) []byte {
	if connected {
		return cloneIcon(defaultIconData)
	}
	return cloneIcon(offlineIconData)
}

func cloneDefaultIcon() []byte {
	return cloneIcon(defaultIconData)
}

func cloneIcon(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp
}

func normalizedIcon(data []byte) []byte {
	if len(data) == 0 {
		return cloneDefaultIcon()
	}
	normalized := platformNormalizeIcon(data)
	if len(normalized) == 0 {
		return cloneDefaultIcon()
	}
	return cloneIcon(normalized)
}
