package scanning

import (
	"context"
	"errors"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const tesseractMissing = "Tesseract OCR is not installed or not found in PATH. " +
	"Install it with one of: brew install tesseract | apt-get install tesseract-ocr | conda install -c conda-forge tesseract, " +
	"or pass --tesseract (BILLS_OCR_TESSERACT) with the path to the tesseract binary"

// TesseractConfig configures the tesseract engine.
type TesseractConfig struct {
	Binary      string // resolved path; empty means tesseract was not found
	Lang        string // default "eng"
	PSM         int    // page segmentation mode, 6 suits a uniform block of text
	TessdataDir string
	Timeout     time.Duration
	Enhance     bool
}

// Tesseract runs the tesseract command line tool.
type Tesseract struct {
	cfg    TesseractConfig
	runner Runner
}

// NewTesseract creates a Tesseract engine that shells out to the binary.
func NewTesseract(cfg TesseractConfig) *Tesseract {
	return NewTesseractWithRunner(cfg, cliRunner{engine: "tesseract"})
}

// NewTesseractWithRunner creates a Tesseract engine with a custom command runner for testing
func NewTesseractWithRunner(cfg TesseractConfig, runner Runner) *Tesseract {
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Tesseract{cfg: cfg, runner: runner}
}

// Recognize writes img to a temporary PNG and runs tesseract on it.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if t.cfg.Binary == "" {
		return "", newError("tesseract", ErrEngineUnavailable, nil, tesseractMissing)
	}

	if t.cfg.Enhance {
		img = Enhance(img)
	}
	data, err := encodePNG(img)
	if err != nil {
		return "", newError("tesseract", ErrRecognition, err, "")
	}

	tmpDir, err := os.MkdirTemp("", "bills-ocr-*")
	if err != nil {
		return "", newError("tesseract", ErrRecognition, err, "creating temp dir")
	}
	defer os.RemoveAll(tmpDir)

	in := filepath.Join(tmpDir, "page.png")
	if err := os.WriteFile(in, data, 0600); err != nil {
		return "", newError("tesseract", ErrRecognition, err, "writing temp image")
	}

	ctx, cancel := context.WithTimeout(ctx, t.cfg.Timeout)
	defer cancel()

	out, errb, err := t.runner.Run(ctx, t.cfg.Binary, t.args(in)...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", newError("tesseract", ErrEngineUnavailable, err, tesseractMissing)
		}
		return "", newError("tesseract", ErrRecognition, err, strings.TrimSpace(clip(string(errb), 512)))
	}
	return string(out), nil
}

// tesseract <file> stdout -l <lang> [--psm n] [--tessdata-dir d]
func (t *Tesseract) args(in string) []string {
	args := []string{in, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return args
}

// Close is a no-op; tesseract runs as a fresh process per image.
func (t *Tesseract) Close() error {
	return nil
}
