// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"

// jointBudget は関節1つ分の誤差予算計算の前計算値を表す。
type jointBudget struct {
	// setting は上書き・継承・全体設定を解決した有効設定。
	setting Setting
	// accScale は自身までの累積最大スケール。
	accScale float64
	// parentScale は親までの累積最大スケール。
	parentScale float64
	// lever は自身の回転・拡縮が影響する最大到達半径(ワールド換算)。
	lever float64
	// minTolerance はルートから自身までの経路上で最も厳しい許容誤差。
	minTolerance float64
}

// buildJointBudgets は骨格とアニメーションから関節別予算の前計算を行う。
// 前向き走査で設定の継承と累積スケールを、後ろ向き走査で到達半径を確定する。
func buildJointBudgets(animation *motion.RawAnimation, skeleton *motion.Skeleton, global Setting, overrides JointsSetting) []jointBudget {
	count := skeleton.JointCount()
	budgets := make([]jointBudget, count)

	for i := 0; i < count; i++ {
		parent := skeleton.Joints[i].Parent
		setting := global
		parentScale := 1.0
		minTolerance := setting.Tolerance
		if parent != motion.ROOT_PARENT_INDEX {
			setting = budgets[parent].setting
			parentScale = budgets[parent].accScale
			minTolerance = budgets[parent].minTolerance
		}
		if override, ok := overrides[i]; ok {
			setting = override
		}
		if setting.Tolerance < minTolerance || parent == motion.ROOT_PARENT_INDEX {
			minTolerance = setting.Tolerance
		}
		budgets[i] = jointBudget{
			setting:      setting,
			accScale:     parentScale * maxScaleComponent(animation.Tracks[i].Scales),
			parentScale:  parentScale,
			minTolerance: minTolerance,
		}
	}

	// 子は親より後ろに並ぶため、逆順走査で子の到達半径を親へ畳み込める。
	for i := count - 1; i >= 0; i-- {
		own := budgets[i].setting.Distance * budgets[i].accScale
		if own > budgets[i].lever {
			budgets[i].lever = own
		}
		parent := skeleton.Joints[i].Parent
		if parent == motion.ROOT_PARENT_INDEX {
			continue
		}
		reach := maxTranslationLength(animation.Tracks[i].Translations)*budgets[parent].accScale + budgets[i].lever
		if reach > budgets[parent].lever {
			budgets[parent].lever = reach
		}
	}
	return budgets
}

// maxScaleComponent は拡縮キー列の最大絶対成分を返す。キーが無いときは1。
func maxScaleComponent(keys []motion.ScaleKey) float64 {
	if len(keys) == 0 {
		return 1.0
	}
	max := 0.0
	for _, key := range keys {
		if component := key.Value.Abs().MaxComponent(); component > max {
			max = component
		}
	}
	return max
}

// maxTranslationLength は移動キー列の最大ベクトル長を返す。キーが無いときは0。
func maxTranslationLength(keys []motion.TranslationKey) float64 {
	max := 0.0
	for _, key := range keys {
		if length := key.Value.Length(); length > max {
			max = length
		}
	}
	return max
}
