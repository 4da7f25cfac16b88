// 指示: miu200521358
package motion

import (
	"sort"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
)

// SampleTranslation は移動トラックを時刻で線形補間する。キーが無いときは零ベクトルを返す。
func SampleTranslation(keys []TranslationKey, time float64) mmath.Vec3 {
	if len(keys) == 0 {
		return mmath.ZERO_VEC3
	}
	prev, next, ratio := sampleSpan(len(keys), time, func(i int) float64 { return keys[i].Time })
	return keys[prev].Value.Lerped(keys[next].Value, ratio)
}

// SampleRotation は回転トラックを時刻で球面線形補間する。キーが無いときは単位回転を返す。
func SampleRotation(keys []RotationKey, time float64) mmath.Quaternion {
	if len(keys) == 0 {
		return mmath.NewQuaternion()
	}
	prev, next, ratio := sampleSpan(len(keys), time, func(i int) float64 { return keys[i].Time })
	return keys[prev].Value.Slerped(keys[next].Value, ratio)
}

// SampleScale は拡縮トラックを時刻で線形補間する。キーが無いときは等倍を返す。
func SampleScale(keys []ScaleKey, time float64) mmath.Vec3 {
	if len(keys) == 0 {
		return mmath.ONE_VEC3
	}
	prev, next, ratio := sampleSpan(len(keys), time, func(i int) float64 { return keys[i].Time })
	return keys[prev].Value.Lerped(keys[next].Value, ratio)
}

// sampleSpan は補間に使うキー区間と補間係数を返す。区間外の時刻は端のキーへ丸める。
func sampleSpan(count int, time float64, timeAt func(int) float64) (int, int, float64) {
	if time <= timeAt(0) {
		return 0, 0, 0
	}
	if time >= timeAt(count-1) {
		return count - 1, count - 1, 0
	}
	next := sort.Search(count, func(i int) bool { return timeAt(i) >= time })
	prev := next - 1
	span := timeAt(next) - timeAt(prev)
	if span <= 0 {
		return prev, next, 0
	}
	return prev, next, (time - timeAt(prev)) / span
}
