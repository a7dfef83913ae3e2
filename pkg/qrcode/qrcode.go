package qr

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
	"github.com/skip2/go-qrcode"
)

type Config struct {
	Content       string
	Logo          image.Image // Optional logo drawn in the centre
	Size          int
	LogoScale     float64 // Logo diameter relative to Size
	Background    color.Color
	Foreground    color.Color
	RecoveryLevel int
	QuietZone     int     // Margin around the code in pixels
	LogoBorder    float64 // Width of the background ring around the logo
}

// Generate creates a QR code with the given configuration and returns it as PNG bytes.
func (c Config) Generate() ([]byte, error) {
	if c.Content == "" {
		return nil, errors.New("qr content is empty")
	}
	if c.Size <= 0 {
		return nil, errors.New("qr size must be positive")
	}

	code, err := qrcode.New(c.Content, qrcode.RecoveryLevel(c.RecoveryLevel))
	if err != nil {
		return nil, err
	}
	code.DisableBorder = true
	code.BackgroundColor = c.Background
	code.ForegroundColor = c.Foreground

	totalSize := c.Size + 2*c.QuietZone

	dc := gg.NewContext(totalSize, totalSize)
	dc.SetColor(c.Background)
	dc.Clear()
	dc.DrawImage(code.Image(c.Size), c.QuietZone, c.QuietZone)

	if c.Logo != nil {
		c.drawLogo(dc, totalSize)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, dc.Image()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// drawLogo places the logo in a round badge at the centre of dc.
// High recovery levels keep the covered modules readable.
func (c Config) drawLogo(dc *gg.Context, totalSize int) {
	logoSize := int(float64(c.Size) * c.LogoScale)
	if logoSize <= 0 {
		return
	}
	center := float64(totalSize) / 2
	radius := float64(logoSize) / 2

	dc.SetColor(c.Background)
	dc.DrawCircle(center, center, radius+c.LogoBorder)
	dc.Fill()

	resized := resize.Thumbnail(uint(logoSize), uint(logoSize), c.Logo, resize.Lanczos3)

	dc.Push()
	dc.DrawCircle(center, center, radius)
	dc.Clip()
	dc.DrawImageAnchored(resized, int(center), int(center), 0.5, 0.5)
	dc.Pop()
}
