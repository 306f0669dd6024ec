package imaging

import (
	"PDFReduce/internal/pkgerror"
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedEncode is returned when an image decodes but its format has no
// encoder; the file is left untouched.
var ErrUnsupportedEncode = errors.New("no encoder for format")

// Options bound the output dimensions and set the re-encode quality.
type Options struct {
	MaxWidth  int
	MaxHeight int
	Quality   int // 0-100, JPEG only
}

// Result describes what happened to one file.
type Result struct {
	Path          string
	Format        string
	Width, Height int // before
	NewW, NewH    int // after
	Resized       bool
}

// FitWithin returns the dimensions of a w x h image scaled by
// min(maxW/w, maxH/h) when either side exceeds its bound. Images already inside
// the bounds are returned unchanged; nothing is ever upscaled.
func FitWithin(w, h, maxW, maxH int) (nw, nh int, resized bool) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h, false
	}
	if w <= maxW && h <= maxH {
		return w, h, false
	}

	ratio := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw = int(math.Floor(float64(w)*ratio + 1e-9))
	nh = int(math.Floor(float64(h)*ratio + 1e-9))

	nw = min(max(nw, 1), maxW)
	nh = min(max(nh, 1), maxH)
	return nw, nh, true
}

// Normalize scales img to fit opts using Catmull-Rom resampling. The source is
// returned as is when it already fits.
func Normalize(img image.Image, opts Options) image.Image {
	b := img.Bounds()
	nw, nh, resized := FitWithin(b.Dx(), b.Dy(), opts.MaxWidth, opts.MaxHeight)
	if !resized {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// NormalizeFile decodes path, fits it within opts and writes it back in its
// original format. The rewrite goes through a temp file in the same directory
// so a failed encode never leaves a truncated image behind.
func NormalizeFile(path string, opts Options) (Result, error) {
	res := Result{Path: path}

	img, format, err := decodeFile(path)
	if err != nil {
		return res, pkgerror.NewDecode(path, err)
	}
	b := img.Bounds()
	res.Format = format
	res.Width, res.Height = b.Dx(), b.Dy()

	out := Normalize(img, opts)
	res.NewW, res.NewH = out.Bounds().Dx(), out.Bounds().Dy()
	res.Resized = res.NewW != res.Width || res.NewH != res.Height

	enc, ok := encoders[format]
	if !ok {
		return res, pkgerror.NewDecode(path, fmt.Errorf("%w: %s", ErrUnsupportedEncode, format))
	}

	if err := writeAtomic(path, func(w io.Writer) error { return enc(w, out, opts) }); err != nil {
		return res, pkgerror.NewDecode(path, err)
	}
	return res, nil
}

func decodeFile(path string) (image.Image, string, error) {
	f, err := os.Open(path) // #nosec G304 -- path comes from our own scratch dir
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = f.Close()
	}()

	return image.Decode(bufio.NewReader(f))
}

type encodeFunc func(w io.Writer, img image.Image, opts Options) error

var encoders = map[string]encodeFunc{
	"jpeg": func(w io.Writer, img image.Image, opts Options) error {
		return jpeg.Encode(w, img, &jpeg.Options{Quality: clampQuality(opts.Quality)})
	},
	"png": func(w io.Writer, img image.Image, _ Options) error {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	},
	"gif": func(w io.Writer, img image.Image, _ Options) error {
		return gif.Encode(w, img, nil)
	},
	"tiff": func(w io.Writer, img image.Image, _ Options) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	},
	"bmp": func(w io.Writer, img image.Image, _ Options) error {
		return bmp.Encode(w, img)
	},
}

func clampQuality(q int) int {
	switch {
	case q < 1:
		return 1
	case q > 100:
		return 100
	default:
		return q
	}
}

func writeAtomic(path string, write func(w io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".normalize-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
