package qr

import "image/color"

// Directory is the style of club QR codes: dark modules on white with a round logo badge.
var Directory = Config{
	Size:          512,
	LogoScale:     0.22,
	Background:    color.RGBA{R: 255, G: 255, B: 255, A: 255},
	Foreground:    color.RGBA{R: 17, G: 38, B: 60, A: 255},
	RecoveryLevel: 3,
	QuietZone:     16,
	LogoBorder:    6,
}
