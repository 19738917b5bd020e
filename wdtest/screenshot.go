// Copyright 2013 Federico Sogaro. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wdtest

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
)

// ScreenshotSize is the size of the images returned by the screenshot
// command.
const ScreenshotSize = 8

func pngImage() []byte {
	img := image.NewRGBA(image.Rect(0, 0, ScreenshotSize, ScreenshotSize))
	for y := 0; y < ScreenshotSize; y++ {
		for x := 0; x < ScreenshotSize; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 0x80, A: 0xff})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func pngBase64() string {
	return base64.StdEncoding.EncodeToString(pngImage())
}
