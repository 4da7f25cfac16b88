// 指示: miu200521358
package mreport

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
)

// SaveChartImage はチャート画像を拡張子に応じた形式で書き出す。
// .png / .webp / .tga に対応する。
func SaveChartImage(path string, img image.Image) error {
	if img == nil {
		return fmt.Errorf("保存対象画像が未設定です")
	}

	buffer := &bytes.Buffer{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		if err := png.Encode(buffer, img); err != nil {
			return io_common.NewIoWriteFailed(path, err)
		}
	case ".webp":
		if err := nativewebp.Encode(buffer, img, nil); err != nil {
			return io_common.NewIoWriteFailed(path, err)
		}
	case ".tga":
		if err := tga.Encode(buffer, img); err != nil {
			return io_common.NewIoWriteFailed(path, err)
		}
	default:
		return io_common.NewIoExtInvalid(path, nil)
	}

	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return io_common.NewIoWriteFailed(path, err)
	}
	return nil
}
