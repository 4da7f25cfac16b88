// 指示: miu200521358
package mreport

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
)

func TestSaveChartImagePng(t *testing.T) {
	img := RenderDecimationChart(newRecorderSteps(), ChartOptions{Width: 160, Height: 120, Supersample: 1})
	path := filepath.Join(t.TempDir(), "report.png")

	if err := SaveChartImage(path, img); err != nil {
		t.Fatalf("png save should succeed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file should exist: %v", err)
	}
	decoded, err := png.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("saved png should decode: %v", err)
	}
	if decoded.Bounds().Dx() != 160 || decoded.Bounds().Dy() != 120 {
		t.Fatalf("decoded size mismatch: %v", decoded.Bounds())
	}
}

func TestSaveChartImageWebp(t *testing.T) {
	img := RenderDecimationChart(newRecorderSteps(), ChartOptions{Width: 160, Height: 120, Supersample: 1})
	path := filepath.Join(t.TempDir(), "report.webp")

	if err := SaveChartImage(path, img); err != nil {
		t.Fatalf("webp save should succeed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file should exist: %v", err)
	}
	if len(b) < 12 || string(b[:4]) != "RIFF" || string(b[8:12]) != "WEBP" {
		t.Fatalf("webp container header mismatch: %v", b[:12])
	}
}

func TestSaveChartImageTga(t *testing.T) {
	img := RenderDecimationChart(newRecorderSteps(), ChartOptions{Width: 64, Height: 48, Supersample: 1})
	path := filepath.Join(t.TempDir(), "report.tga")

	if err := SaveChartImage(path, img); err != nil {
		t.Fatalf("tga save should succeed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("saved tga should be non-empty: %v", err)
	}
}

func TestSaveChartImageRejectsUnknownExtension(t *testing.T) {
	img := RenderDecimationChart(nil, ChartOptions{Width: 64, Height: 48, Supersample: 1})
	err := SaveChartImage(filepath.Join(t.TempDir(), "report.gif"), img)
	if !errors.Is(err, io_common.ErrExtInvalid) {
		t.Fatalf("unknown extension should be rejected: %v", err)
	}
}

func TestSaveChartImageRejectsNilImage(t *testing.T) {
	if err := SaveChartImage(filepath.Join(t.TempDir(), "report.png"), nil); err == nil {
		t.Fatalf("nil image should fail")
	}
}
