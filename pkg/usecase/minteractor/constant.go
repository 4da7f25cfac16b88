// 指示: miu200521358
package minteractor

import (
	"fmt"
	"math"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/tiendc/go-deepcopy"
)

const (
	// defaultConstantTranslationTolerance は一定値判定の既定移動許容誤差(メートル)。
	defaultConstantTranslationTolerance = 1e-5
	// defaultConstantRotationDegree は一定値判定の既定回転許容角(度)。
	defaultConstantRotationDegree = 0.1
	// defaultConstantScaleTolerance は一定値判定の既定拡縮許容誤差。
	defaultConstantScaleTolerance = 1e-5
)

// AnimationConstantOptimizer は一定値トラックを時刻0の単一キーへ畳み込む。
// 骨格階層には依存せず、各トラックを独立に判定する。
type AnimationConstantOptimizer struct {
	// TranslationTolerance は移動キーの許容誤差(メートル)。
	TranslationTolerance float64
	// RotationTolerance は回転キーの許容誤差(許容角の半分のコサイン)。
	RotationTolerance float64
	// ScaleTolerance は拡縮キーの許容誤差。
	ScaleTolerance float64
}

// NewAnimationConstantOptimizer は既定許容誤差の一定値最適化器を生成する。
func NewAnimationConstantOptimizer() *AnimationConstantOptimizer {
	return &AnimationConstantOptimizer{
		TranslationTolerance: defaultConstantTranslationTolerance,
		RotationTolerance:    math.Cos(mmath.DegToRad(defaultConstantRotationDegree) / 2.0),
		ScaleTolerance:       defaultConstantScaleTolerance,
	}
}

// Optimize は全キーが先頭キーと一致とみなせるトラックを単一キーへ置き換えた
// 新しいアニメーションを返す。入力が不正な場合は空のアニメーションとエラーを返す。
func (optimizer *AnimationConstantOptimizer) Optimize(input *motion.RawAnimation) (*motion.RawAnimation, error) {
	if input == nil {
		return motion.NewRawAnimation(), fmt.Errorf("入力アニメーションが未設定です")
	}
	if err := input.Validate(); err != nil {
		return motion.NewRawAnimation(), fmt.Errorf("入力アニメーションが不正です: %w", err)
	}

	output := motion.NewRawAnimation()
	if err := deepcopy.Copy(output, input); err != nil {
		return motion.NewRawAnimation(), fmt.Errorf("出力アニメーションの複製に失敗しました: %w", err)
	}

	for i := range output.Tracks {
		track := &output.Tracks[i]
		if isConstantTranslation(track.Translations, optimizer.TranslationTolerance) {
			track.Translations = []motion.TranslationKey{{Time: 0, Value: track.Translations[0].Value}}
		}
		if isConstantRotation(track.Rotations, optimizer.RotationTolerance) {
			track.Rotations = []motion.RotationKey{{Time: 0, Value: track.Rotations[0].Value}}
		}
		if isConstantScale(track.Scales, optimizer.ScaleTolerance) {
			track.Scales = []motion.ScaleKey{{Time: 0, Value: track.Scales[0].Value}}
		}
	}
	return output, nil
}

// isConstantTranslation は全移動キーが先頭キーの許容誤差内にあるかを返す。
func isConstantTranslation(keys []motion.TranslationKey, tolerance float64) bool {
	if len(keys) == 0 {
		return false
	}
	first := keys[0].Value
	for _, key := range keys[1:] {
		if key.Value.Distance(first) > tolerance {
			return false
		}
	}
	return true
}

// isConstantRotation は全回転キーが先頭キーの許容角内にあるかを返す。
// cosTolerance は許容角の半分のコサインで、内積の絶対値と比較する。
func isConstantRotation(keys []motion.RotationKey, cosTolerance float64) bool {
	if len(keys) == 0 {
		return false
	}
	first := keys[0].Value
	for _, key := range keys[1:] {
		if math.Abs(key.Value.Dot(first)) < cosTolerance {
			return false
		}
	}
	return true
}

// isConstantScale は全拡縮キーが先頭キーの許容誤差内にあるかを返す。
func isConstantScale(keys []motion.ScaleKey, tolerance float64) bool {
	if len(keys) == 0 {
		return false
	}
	first := keys[0].Value
	for _, key := range keys[1:] {
		if key.Value.Distance(first) > tolerance {
			return false
		}
	}
	return true
}
