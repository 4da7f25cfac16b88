// 指示: miu200521358
package mreport

import (
	"fmt"
	"image"
	"image/color"
	"sort"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"gonum.org/v1/gonum/stat"
)

const (
	chartDefaultWidth       = 960
	chartDefaultHeight      = 540
	chartDefaultSupersample = 2

	// chartRatioCap は誤差/予算比の描画上限。予算超過は上限へ張り付かせる。
	chartRatioCap = 2.0

	chartDefaultTitle = "keyframe decimation report"
)

var (
	chartBackgroundColor  = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	chartBorderColor      = color.NRGBA{R: 0x78, G: 0x78, B: 0x78, A: 0xff}
	chartBudgetColor      = color.NRGBA{R: 0xdc, G: 0x3c, B: 0x3c, A: 0xff}
	chartRejectedColor    = color.NRGBA{R: 0xa0, G: 0x3c, B: 0xa0, A: 0xff}
	chartBarColor         = color.NRGBA{R: 0x46, G: 0x78, B: 0xdc, A: 0xff}
	chartBarRestColor     = color.NRGBA{R: 0xe1, G: 0xe1, B: 0xe4, A: 0xff}
	chartTextColor        = color.NRGBA{R: 0x28, G: 0x28, B: 0x28, A: 0xff}
	chartTranslationColor = color.NRGBA{R: 0x46, G: 0x78, B: 0xdc, A: 0xff}
	chartRotationColor    = color.NRGBA{R: 0xdc, G: 0x8c, B: 0x32, A: 0xff}
	chartScaleColor       = color.NRGBA{R: 0x5a, G: 0xaa, B: 0x5a, A: 0xff}
)

// ChartOptions はチャート描画の設定を表す。ゼロ値は既定値で補完される。
type ChartOptions struct {
	Width       int
	Height      int
	Supersample int
	Title       string
}

// withDefaults は未設定の項目を既定値で補完した設定を返す。
func (options ChartOptions) withDefaults() ChartOptions {
	if options.Width <= 0 {
		options.Width = chartDefaultWidth
	}
	if options.Height <= 0 {
		options.Height = chartDefaultHeight
	}
	if options.Supersample <= 0 {
		options.Supersample = chartDefaultSupersample
	}
	if options.Title == "" {
		options.Title = chartDefaultTitle
	}
	return options
}

// chartLayout はチャート内の配置を表す。座標は最終解像度基準。
type chartLayout struct {
	title   image.Point
	stats   image.Point
	scatter image.Rectangle
	bars    image.Rectangle
}

// buildChartLayout は上段に誤差散布図、下段に関節別削減バーを置く配置を返す。
func buildChartLayout(width, height int) chartLayout {
	top := 56
	barsHeight := (height - top - 24) * 2 / 5
	scatterBottom := height - 24 - barsHeight - 28
	return chartLayout{
		title:   image.Pt(16, 24),
		stats:   image.Pt(16, 44),
		scatter: image.Rect(56, top, width-16, scatterBottom),
		bars:    image.Rect(56, scatterBottom+28, width-16, height-24),
	}
}

// RenderDecimationChart は間引き評価記録を1枚のレポート画像へ描画する。
// 図形は設定倍率で上描きしてから縮小し、文字は最終解像度で重ねる。
// 関節名はASCII外の文字を描画できないため j00 形式のインデックスで示す。
func RenderDecimationChart(steps []minteractor.DecimationStep, options ChartOptions) *image.NRGBA {
	options = options.withDefaults()
	layout := buildChartLayout(options.Width, options.Height)
	reductions := SummarizeDecimationSteps(steps)

	scale := options.Supersample
	shapes := image.NewNRGBA(image.Rect(0, 0, options.Width*scale, options.Height*scale))
	fillChartRect(shapes, shapes.Bounds(), chartBackgroundColor)

	barRows := buildChartBarRows(layout.bars, reductions)
	if len(steps) > 0 {
		drawChartScatter(shapes, scaleChartRect(layout.scatter, scale), steps, scale)
		drawChartBars(shapes, barRows, scale)
	}

	img := shapes
	if scale > 1 {
		img = downscaleChart(shapes, options.Width, options.Height)
	}

	drawChartLabel(img, layout.title.X, layout.title.Y, options.Title, chartTextColor)
	drawChartLabel(img, layout.stats.X, layout.stats.Y, chartStatsLine(steps, reductions), chartTextColor)
	if len(steps) == 0 {
		return img
	}

	drawChartLabel(img, layout.scatter.Min.X, layout.scatter.Min.Y-6,
		"error/target ratio per evaluation (budget line = 1.0, cap 2.0)", chartTextColor)
	drawChartLabel(img, layout.bars.Min.X, layout.bars.Min.Y-6,
		"keys removed per joint", chartTextColor)
	drawChartLegend(img, options.Width-16, layout.stats.Y)
	for _, row := range barRows {
		if row.bounds.Dy() < 11 {
			continue
		}
		label := fmt.Sprintf("j%02d %d->%d", row.reduction.Joint,
			row.reduction.KeysBefore, row.reduction.KeysAfter)
		drawChartLabel(img, row.bounds.Min.X+4, row.bounds.Min.Y+row.bounds.Dy()/2+4, label, chartTextColor)
	}
	return img
}

// chartBarRow は削減バー1行分の配置と集計を表す。
type chartBarRow struct {
	bounds    image.Rectangle
	reduction JointReduction
}

// buildChartBarRows はパネルへ収まる分だけ関節別のバー行を割り付ける。
func buildChartBarRows(panel image.Rectangle, reductions []JointReduction) []chartBarRow {
	if len(reductions) == 0 {
		return nil
	}
	rowHeight := panel.Dy() / len(reductions)
	if rowHeight > 24 {
		rowHeight = 24
	}
	if rowHeight < 4 {
		rowHeight = 4
	}
	rows := make([]chartBarRow, 0, len(reductions))
	for i, reduction := range reductions {
		y := panel.Min.Y + i*rowHeight
		if y+rowHeight > panel.Max.Y {
			break
		}
		rows = append(rows, chartBarRow{
			bounds:    image.Rect(panel.Min.X, y+1, panel.Max.X, y+rowHeight-1),
			reduction: reduction,
		})
	}
	return rows
}

// drawChartScatter は評価ごとの誤差/予算比を時系列で打点する。
func drawChartScatter(img *image.NRGBA, panel image.Rectangle, steps []minteractor.DecimationStep, scale int) {
	drawChartRectOutline(img, panel, scale, chartBorderColor)

	budgetY := panel.Max.Y - panel.Dy()/2
	fillChartRect(img, image.Rect(panel.Min.X, budgetY, panel.Max.X, budgetY+scale), chartBudgetColor)

	count := len(steps)
	radius := 2 * scale
	for i, step := range steps {
		x := panel.Min.X + (2*i+1)*panel.Dx()/(2*count)
		ratio := chartErrorRatio(step)
		y := panel.Max.Y - int(ratio/chartRatioCap*float64(panel.Dy()))
		if y < panel.Min.Y {
			y = panel.Min.Y
		}
		if y > panel.Max.Y {
			y = panel.Max.Y
		}
		pointColor := chartTrackColor(step.Track)
		if step.OptimizationDelta < 0 {
			pointColor = chartRejectedColor
		}
		fillChartRect(img, image.Rect(x-radius, y-radius, x+radius, y+radius), pointColor)
	}
}

// drawChartBars は関節別の削減割合を横バーで描く。
func drawChartBars(img *image.NRGBA, rows []chartBarRow, scale int) {
	for _, row := range rows {
		bounds := scaleChartRect(row.bounds, scale)
		fillChartRect(img, bounds, chartBarRestColor)
		before := row.reduction.KeysBefore
		if before <= 0 {
			continue
		}
		removed := before - row.reduction.KeysAfter
		filled := bounds.Dx() * removed / before
		fillChartRect(img, image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Min.X+filled, bounds.Max.Y), chartBarColor)
	}
}

// drawChartLegend はトラック種別の凡例を右肩に描く。
func drawChartLegend(img *image.NRGBA, right, baseline int) {
	entries := []struct {
		label string
		col   color.NRGBA
	}{
		{motion.TRACK_TYPE_TRANSLATION.String(), chartTranslationColor},
		{motion.TRACK_TYPE_ROTATION.String(), chartRotationColor},
		{motion.TRACK_TYPE_SCALE.String(), chartScaleColor},
	}
	x := right
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		x -= len(entry.label) * 7
		drawChartLabel(img, x, baseline, entry.label, chartTextColor)
		x -= 12
		fillChartRect(img, image.Rect(x, baseline-8, x+8, baseline), entry.col)
		x -= 14
	}
}

// chartStatsLine は評価全体の要約1行を組み立てる。
func chartStatsLine(steps []minteractor.DecimationStep, reductions []JointReduction) string {
	if len(steps) == 0 {
		return "no decimation steps"
	}
	accepted, rejected := 0, 0
	ratios := make([]float64, 0, len(steps))
	for _, step := range steps {
		if step.OptimizationDelta >= 0 {
			accepted++
		} else {
			rejected++
		}
		ratios = append(ratios, chartErrorRatio(step))
	}
	sort.Float64s(ratios)
	mean := stat.Mean(ratios, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, ratios, nil)

	keysBefore, keysAfter := 0, 0
	for _, reduction := range reductions {
		keysBefore += reduction.KeysBefore
		keysAfter += reduction.KeysAfter
	}
	return fmt.Sprintf("steps=%d accepted=%d rejected=%d ratio mean=%.3f p95=%.3f keys=%d->%d",
		len(steps), accepted, rejected, mean, p95, keysBefore, keysAfter)
}

// chartErrorRatio は誤差/予算比を描画範囲へ丸めて返す。予算が零以下なら上限扱い。
func chartErrorRatio(step minteractor.DecimationStep) float64 {
	if step.TargetError <= 0 {
		return chartRatioCap
	}
	ratio := step.OwnError / step.TargetError
	if ratio > chartRatioCap {
		ratio = chartRatioCap
	}
	if ratio < 0 {
		ratio = 0
	}
	return ratio
}

// chartTrackColor はトラック種別の打点色を返す。
func chartTrackColor(trackType motion.TrackType) color.NRGBA {
	switch trackType {
	case motion.TRACK_TYPE_ROTATION:
		return chartRotationColor
	case motion.TRACK_TYPE_SCALE:
		return chartScaleColor
	}
	return chartTranslationColor
}

// downscaleChart は上描き画像を最終解像度へ縮小する。
// 背景が不透明なのでアルファ前乗算なしで縮小できる。
func downscaleChart(src *image.NRGBA, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// drawChartLabel は基準点(x, y)をベースラインとしてラベルを描く。
func drawChartLabel(img *image.NRGBA, x, y int, label string, col color.NRGBA) {
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(label)
}

// fillChartRect は矩形を塗りつぶす。範囲は画像内へ切り詰める。
func fillChartRect(img *image.NRGBA, rect image.Rectangle, col color.NRGBA) {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, col)
		}
	}
}

// drawChartRectOutline は矩形の枠線を描く。
func drawChartRectOutline(img *image.NRGBA, rect image.Rectangle, thickness int, col color.NRGBA) {
	fillChartRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thickness), col)
	fillChartRect(img, image.Rect(rect.Min.X, rect.Max.Y-thickness, rect.Max.X, rect.Max.Y), col)
	fillChartRect(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thickness, rect.Max.Y), col)
	fillChartRect(img, image.Rect(rect.Max.X-thickness, rect.Min.Y, rect.Max.X, rect.Max.Y), col)
}

// scaleChartRect は最終解像度の矩形を上描き解像度へ拡大する。
func scaleChartRect(rect image.Rectangle, scale int) image.Rectangle {
	return image.Rect(rect.Min.X*scale, rect.Min.Y*scale, rect.Max.X*scale, rect.Max.Y*scale)
}
