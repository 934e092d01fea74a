// Package qr turns product identifiers into scannable verification codes
// and reads them back out of rendered images.
package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"net/url"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	qrSize  = 500
	padding = 40
)

// Codec renders and reads verification QR codes. BaseURL is the public
// verification frontend, e.g. https://verify.example.com.
type Codec struct {
	BaseURL string
}

// Encode returns a PNG holding the QR matrix for the verification URL with
// the identifier printed beneath in 4-digit groups. The highest error
// correction level keeps partially damaged prints scannable.
func (c *Codec) Encode(productID string) ([]byte, error) {
	verifyURL := fmt.Sprintf("%s/verify?pid=%s", strings.TrimRight(c.BaseURL, "/"), productID)

	code, err := qrcode.New(verifyURL, qrcode.Highest)
	if err != nil {
		return nil, fmt.Errorf("could not build qr code: %w", err)
	}

	qrImg := code.Image(qrSize)

	width := qrSize + padding*2
	height := qrSize + 120
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	qrX := (width - qrSize) / 2
	draw.Draw(canvas,
		image.Rect(qrX, padding, qrX+qrSize, padding+qrSize),
		qrImg, qrImg.Bounds().Min, draw.Src)

	label := "Product ID: " + GroupDigits(productID)
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.Black,
		Face: basicfont.Face7x13,
	}
	labelWidth := d.MeasureString(label)
	d.Dot = fixed.Point26_6{
		X: fixed.I(width)/2 - labelWidth/2,
		Y: fixed.I(padding + qrSize + 35),
	}
	d.DrawString(label)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("could not encode qr png: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads the QR matrix out of a rendered PNG and returns the
// identifier carried in the embedded URL's pid parameter.
func (c *Codec) Decode(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("could not decode image: %w", err)
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("could not binarize image: %w", err)
	}

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("could not read qr code: %w", err)
	}

	embedded, err := url.Parse(result.GetText())
	if err != nil {
		return "", fmt.Errorf("qr payload is not a url: %w", err)
	}

	pid := embedded.Query().Get("pid")
	if pid == "" {
		return "", fmt.Errorf("qr payload has no pid parameter: %s", result.GetText())
	}
	return pid, nil
}

// GroupDigits splits an identifier into space-separated 4-digit clusters
// for the human-readable label.
func GroupDigits(s string) string {
	var groups []string
	for len(s) > 4 {
		groups = append(groups, s[:4])
		s = s[4:]
	}
	groups = append(groups, s)
	return strings.Join(groups, " ")
}
