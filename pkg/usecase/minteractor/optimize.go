// 指示: miu200521358
package minteractor

import (
	"fmt"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/tiendc/go-deepcopy"
)

// trackShareCount は関節予算を移動・回転・拡縮へ等分する数。
const trackShareCount = 3

// AnimationOptimizer は骨格階層の誤差予算に基づいてキーフレームを間引く。
// 祖先関節が消費した誤差予算を子孫の予算から差し引くことで、
// どの関節でも経路上で最も厳しい許容誤差を超えないことを保証する。
type AnimationOptimizer struct {
	// Setting は全関節に適用する既定設定。
	Setting Setting
	// JointsSettingOverride は関節別の設定上書き。
	JointsSettingOverride JointsSetting
	// DecimationReporter は候補評価ごとの通知先。nil のときは通知しない。
	DecimationReporter IDecimationReporter
}

// NewAnimationOptimizer は既定設定の最適化器を生成する。
func NewAnimationOptimizer() *AnimationOptimizer {
	return &AnimationOptimizer{
		Setting:               NewSetting(),
		JointsSettingOverride: JointsSetting{},
	}
}

// Optimize は入力アニメーションを間引いた新しいアニメーションを返す。
// 入力が不正な場合は空のアニメーションとエラーを返す。通知先が中断を
// 要求した場合は、その時点までの有効な結果を返す(エラーにはならない)。
func (optimizer *AnimationOptimizer) Optimize(input *motion.RawAnimation, skeleton *motion.Skeleton) (*motion.RawAnimation, error) {
	if err := validateOptimizeInput(input, skeleton, optimizer.Setting, optimizer.JointsSettingOverride); err != nil {
		return motion.NewRawAnimation(), err
	}

	output := motion.NewRawAnimation()
	if err := deepcopy.Copy(output, input); err != nil {
		return motion.NewRawAnimation(), fmt.Errorf("出力アニメーションの複製に失敗しました: %w", err)
	}

	budgets := buildJointBudgets(input, skeleton, optimizer.Setting, optimizer.JointsSettingOverride)
	spent := make([]float64, skeleton.JointCount())

	for i := 0; i < skeleton.JointCount(); i++ {
		parentSpent := 0.0
		if parent := skeleton.Joints[i].Parent; parent != motion.ROOT_PARENT_INDEX {
			parentSpent = spent[parent]
		}
		budget := budgets[i].minTolerance - parentSpent
		if budget < 0 {
			budget = 0
		}
		target := budget / trackShareCount

		hierarchyRatio := 0.0
		if budgets[i].minTolerance > 0 {
			hierarchyRatio = parentSpent / budgets[i].minTolerance
		}

		track := &input.Tracks[i]
		template := DecimationStep{
			Joint:               i,
			JointName:           track.Name,
			TargetError:         target,
			Distance:            budgets[i].setting.Distance,
			OwnTolerance:        budgets[i].setting.Tolerance,
			HierarchyErrorRatio: hierarchyRatio,
		}

		ownError := 0.0

		template.Track = motion.TRACK_TYPE_TRANSLATION
		template.OriginalSize = len(track.Translations)
		result := decimate(
			translationDecimationTrack{keys: track.Translations, scale: budgets[i].parentScale},
			target, template, optimizer.DecimationReporter)
		output.Tracks[i].Translations = pickKeys(track.Translations, result.kept)
		ownError += result.worst
		if result.aborted {
			return output, nil
		}

		template.Track = motion.TRACK_TYPE_ROTATION
		template.OriginalSize = len(track.Rotations)
		result = decimate(
			rotationDecimationTrack{keys: track.Rotations, lever: budgets[i].lever},
			target, template, optimizer.DecimationReporter)
		output.Tracks[i].Rotations = pickKeys(track.Rotations, result.kept)
		ownError += result.worst
		if result.aborted {
			return output, nil
		}

		template.Track = motion.TRACK_TYPE_SCALE
		template.OriginalSize = len(track.Scales)
		result = decimate(
			scaleDecimationTrack{keys: track.Scales, lever: budgets[i].lever},
			target, template, optimizer.DecimationReporter)
		output.Tracks[i].Scales = pickKeys(track.Scales, result.kept)
		ownError += result.worst
		if result.aborted {
			return output, nil
		}

		spent[i] = parentSpent + ownError
	}
	return output, nil
}

// validateOptimizeInput は最適化入力の妥当性を検証する。
func validateOptimizeInput(input *motion.RawAnimation, skeleton *motion.Skeleton, setting Setting, overrides JointsSetting) error {
	if input == nil {
		return fmt.Errorf("入力アニメーションが未設定です")
	}
	if skeleton == nil {
		return fmt.Errorf("骨格が未設定です")
	}
	if err := input.Validate(); err != nil {
		return fmt.Errorf("入力アニメーションが不正です: %w", err)
	}
	if err := skeleton.Validate(); err != nil {
		return fmt.Errorf("骨格が不正です: %w", err)
	}
	if len(input.Tracks) != skeleton.JointCount() {
		return fmt.Errorf("トラック数と関節数が一致しません: tracks=%d joints=%d",
			len(input.Tracks), skeleton.JointCount())
	}
	if err := setting.Validate(); err != nil {
		return fmt.Errorf("全体設定が不正です: %w", err)
	}
	if err := overrides.Validate(skeleton.JointCount()); err != nil {
		return err
	}
	return nil
}
