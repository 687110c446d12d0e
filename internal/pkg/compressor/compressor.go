package compressor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp"
)

var (
	ErrDecode        = errors.New("Erro ao carregar imagem. Tente com outra imagem.")
	ErrDecodeTimeout = errors.New("Timeout ao processar imagem. Tente com uma imagem menor.")
	ErrEncode        = errors.New("Não foi possível comprimir a imagem")
)

const (
	defaultMaxWidth      = 1920
	defaultQuality       = 90
	defaultDecodeTimeout = 30 * time.Second
)

type Compressor struct {
	maxWidth      int
	quality       int
	decodeTimeout time.Duration
}

// Compressed is the replacement file produced by one compression run.
// The name always carries a .jpg extension regardless of the input format.
type Compressed struct {
	Data           []byte
	Name           string
	Width          int
	Height         int
	OriginalWidth  int
	OriginalHeight int
}

func New(maxWidth, quality int, decodeTimeout time.Duration) *Compressor {
	if maxWidth <= 0 {
		maxWidth = defaultMaxWidth
	}
	if quality <= 0 || quality > 100 {
		quality = defaultQuality
	}
	if decodeTimeout <= 0 {
		decodeTimeout = defaultDecodeTimeout
	}
	return &Compressor{
		maxWidth:      maxWidth,
		quality:       quality,
		decodeTimeout: decodeTimeout,
	}
}

// Compress decodes data, downscales it to maxWidth preserving aspect ratio,
// flattens transparency onto white and re-encodes as JPEG. A single failure
// is terminal; there are no retries.
func (c *Compressor) Compress(ctx context.Context, data []byte, originalName string) (*Compressed, error) {
	img, err := c.decode(ctx, data)
	if err != nil {
		return nil, err
	}

	origWidth := img.Bounds().Dx()
	origHeight := img.Bounds().Dy()

	width, height := origWidth, origHeight
	if width > c.maxWidth {
		height = int(math.Round(float64(origHeight) * float64(c.maxWidth) / float64(origWidth)))
		width = c.maxWidth
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}

	// White background so transparency never flattens to black in JPEG.
	flat := imaging.New(width, height, color.White)
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.JPEG, imaging.JPEGQuality(c.quality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}

	return &Compressed{
		Data:           buf.Bytes(),
		Name:           jpegName(originalName),
		Width:          width,
		Height:         height,
		OriginalWidth:  origWidth,
		OriginalHeight: origHeight,
	}, nil
}

// decode races the image decode against an internal ceiling so a corrupt or
// pathological file can never hang the caller.
func (c *Compressor) decode(ctx context.Context, data []byte) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.decodeTimeout)
	defer cancel()

	type decoded struct {
		img image.Image
		err error
	}
	done := make(chan decoded, 1)

	go func() {
		img, err := imaging.Decode(bytes.NewReader(data))
		done <- decoded{img: img, err: err}
	}()

	select {
	case d := <-done:
		if d.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, d.err)
		}
		return d.img, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrDecodeTimeout
		}
		return nil, ctx.Err()
	}
}

func jpegName(name string) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext) + ".jpg"
}
