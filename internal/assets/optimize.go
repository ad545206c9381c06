// Package assets prepares and serves the background image in several
// encodings.
package assets

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// Options tune Optimize. Zero values select the defaults.
type Options struct {
	// Name is the base name of the outputs. It defaults to the base name
	// of the source without its extension.
	Name string
	// MaxWidth caps the width of the full-size outputs.
	MaxWidth int
	// Quality is the lossy quality of the WebP and JPEG outputs.
	Quality int
	// PlaceholderWidth is the width of the blurred placeholder.
	PlaceholderWidth int
	// BlurSigma is the Gaussian blur strength of the placeholder.
	BlurSigma float64
}

// Defaults.
const (
	DefaultMaxWidth         = 1920
	DefaultQuality          = 80
	DefaultPlaceholderWidth = 32
	DefaultBlurSigma        = 2.5
)

func (o Options) withDefaults() Options {
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	if o.PlaceholderWidth <= 0 {
		o.PlaceholderWidth = DefaultPlaceholderWidth
	}
	if o.BlurSigma <= 0 {
		o.BlurSigma = DefaultBlurSigma
	}
	return o
}

// Result lists the files written by Optimize.
type Result struct {
	WebP        string
	JPEG        string
	Placeholder string
}

// Optimize writes <name>.webp, <name>.jpg and <name>-blur.jpg into outDir.
func Optimize(src, outDir string, opts Options) (Result, error) {
	opts = opts.withDefaults()

	img, err := imaging.Open(src, imaging.AutoOrientation(true))
	if err != nil {
		return Result{}, fmt.Errorf("assets: open %s: %w", src, err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("assets: mkdir: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	}
	res := Result{
		WebP:        filepath.Join(outDir, name+".webp"),
		JPEG:        filepath.Join(outDir, name+".jpg"),
		Placeholder: filepath.Join(outDir, name+"-blur.jpg"),
	}

	full := img
	if img.Bounds().Dx() > opts.MaxWidth {
		full = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, full, &webp.Options{Quality: float32(opts.Quality)}); err != nil {
		return Result{}, fmt.Errorf("assets: encode webp: %w", err)
	}
	if err := writeAtomic(res.WebP, buf.Bytes()); err != nil {
		return Result{}, err
	}

	if err := writeJPEG(res.JPEG, full, opts.Quality); err != nil {
		return Result{}, err
	}

	small := imaging.Resize(img, opts.PlaceholderWidth, 0, imaging.Linear)
	if err := writeJPEG(res.Placeholder, imaging.Blur(small, opts.BlurSigma), 60); err != nil {
		return Result{}, err
	}
	return res, nil
}

func writeJPEG(path string, img image.Image, quality int) error {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return fmt.Errorf("assets: encode jpeg: %w", err)
	}
	return writeAtomic(path, buf.Bytes())
}

// writeAtomic writes content: tmp file → fsync → rename.
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".folio-tmp-*")
	if err != nil {
		return fmt.Errorf("assets: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("assets: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("assets: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("assets: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("assets: rename: %w", err)
	}
	success = true
	return nil
}
