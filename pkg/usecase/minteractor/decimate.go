// 指示: miu200521358
package minteractor

import (
	"math"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
)

// scaleReferenceEpsilon は拡縮の相対誤差計算で基準値が零に近いときの下限。
const scaleReferenceEpsilon = 1e-8

// decimationTrack は間引き対象キー列の評価契約を表す。
type decimationTrack interface {
	// Len はキー数を返す。
	Len() int
	// SegmentError はキー left と right のみを残したとき、
	// 元キー sample を補間で再構成した誤差(位置換算・メートル)を返す。
	SegmentError(left, right, sample int) float64
}

// decimationResult は1トラック分の間引き結果を表す。
type decimationResult struct {
	// kept は残したキーのインデックス(昇順)。
	kept []int
	// worst は残したキーだけで全元キーを再構成したときの最大誤差。
	worst float64
	// aborted は通知先が中断を要求したかどうか。
	aborted bool
}

// decimate は両端キーを固定したまま、許容誤差内で再構成できる中間キーを取り除く。
// 候補は元キー順の作業キューから取り出し、候補を除いた区間内の全元キー時刻で
// 誤差を検証する。棄却された候補は固定され、再評価されない。
func decimate(track decimationTrack, tolerance float64, template DecimationStep, reporter IDecimationReporter) decimationResult {
	length := track.Len()
	if length <= 2 || tolerance <= 0 {
		return decimationResult{kept: sequentialIndexes(length)}
	}

	prev := make([]int, length)
	next := make([]int, length)
	removed := make([]bool, length)
	for i := 0; i < length; i++ {
		prev[i] = i - 1
		next[i] = i + 1
	}

	worklist := make([]int, 0, length-2)
	for i := 1; i < length-1; i++ {
		worklist = append(worklist, i)
	}

	keptCount := length
	iteration := 0
	aborted := false
	for len(worklist) > 0 {
		candidate := worklist[0]
		worklist = worklist[1:]

		left := prev[candidate]
		right := next[candidate]
		worst := 0.0
		for sample := left + 1; sample < right; sample++ {
			if err := track.SegmentError(left, right, sample); err > worst {
				worst = err
			}
		}

		iteration++
		step := template
		step.Iteration = iteration
		step.ValidatedSize = keptCount
		step.CandidateSize = keptCount - 1
		step.OwnError = worst
		step.OptimizationDelta = tolerance - worst
		if !reportDecimationStep(reporter, step) {
			aborted = true
			break
		}

		if worst <= tolerance {
			removed[candidate] = true
			next[left] = right
			prev[right] = left
			keptCount--
		}
	}

	kept := make([]int, 0, keptCount)
	for i := 0; i < length; i++ {
		if !removed[i] {
			kept = append(kept, i)
		}
	}
	return decimationResult{kept: kept, worst: reconstructionError(track, kept), aborted: aborted}
}

// reconstructionError は残したキーだけで全元キーを再構成したときの最大誤差を返す。
func reconstructionError(track decimationTrack, kept []int) float64 {
	worst := 0.0
	for i := 0; i+1 < len(kept); i++ {
		left := kept[i]
		right := kept[i+1]
		for sample := left + 1; sample < right; sample++ {
			if err := track.SegmentError(left, right, sample); err > worst {
				worst = err
			}
		}
	}
	return worst
}

// sequentialIndexes は 0 から length-1 までの連番を返す。
func sequentialIndexes(length int) []int {
	indexes := make([]int, length)
	for i := range indexes {
		indexes[i] = i
	}
	return indexes
}

// pickKeys は残すインデックスのキーだけを集めた新しい列を返す。
func pickKeys[T any](keys []T, kept []int) []T {
	picked := make([]T, 0, len(kept))
	for _, index := range kept {
		picked = append(picked, keys[index])
	}
	return picked
}

// interpolationRatio は区間 [leftTime, rightTime] 内の時刻の補間係数を返す。
func interpolationRatio(leftTime, rightTime, sampleTime float64) float64 {
	span := rightTime - leftTime
	if span <= 0 {
		return 0
	}
	return (sampleTime - leftTime) / span
}

// translationDecimationTrack は移動キー列を親までの累積スケール換算で評価する。
type translationDecimationTrack struct {
	keys []motion.TranslationKey
	// scale は親までの累積最大スケール。移動は親のスケールで増幅される。
	scale float64
}

// Len はキー数を返す。
func (track translationDecimationTrack) Len() int {
	return len(track.keys)
}

// SegmentError は線形補間による再構成誤差を返す。
func (track translationDecimationTrack) SegmentError(left, right, sample int) float64 {
	leftKey := track.keys[left]
	rightKey := track.keys[right]
	sampleKey := track.keys[sample]
	ratio := interpolationRatio(leftKey.Time, rightKey.Time, sampleKey.Time)
	reconstructed := leftKey.Value.Lerped(rightKey.Value, ratio)
	return reconstructed.Distance(sampleKey.Value) * track.scale
}

// rotationDecimationTrack は回転キー列をレバー長での弦長換算で評価する。
type rotationDecimationTrack struct {
	keys []motion.RotationKey
	// lever は回転誤差を位置誤差へ換算する最大到達半径。
	lever float64
}

// Len はキー数を返す。
func (track rotationDecimationTrack) Len() int {
	return len(track.keys)
}

// SegmentError は球面線形補間による再構成誤差を返す。
// 誤差角 θ に対して弦長 2·lever·sin(θ/2) を位置誤差とする。
func (track rotationDecimationTrack) SegmentError(left, right, sample int) float64 {
	leftKey := track.keys[left]
	rightKey := track.keys[right]
	sampleKey := track.keys[sample]
	ratio := interpolationRatio(leftKey.Time, rightKey.Time, sampleKey.Time)
	reconstructed := leftKey.Value.Slerped(rightKey.Value, ratio)
	cosHalf := math.Abs(reconstructed.Dot(sampleKey.Value))
	if cosHalf > 1 {
		cosHalf = 1
	}
	sinHalf := math.Sqrt(1 - cosHalf*cosHalf)
	return 2.0 * track.lever * sinHalf
}

// scaleDecimationTrack は拡縮キー列を相対誤差×レバー長で評価する。
type scaleDecimationTrack struct {
	keys []motion.ScaleKey
	// lever は拡縮誤差を位置誤差へ換算する最大到達半径。
	lever float64
}

// Len はキー数を返す。
func (track scaleDecimationTrack) Len() int {
	return len(track.keys)
}

// SegmentError は線形補間による再構成誤差を返す。
func (track scaleDecimationTrack) SegmentError(left, right, sample int) float64 {
	leftKey := track.keys[left]
	rightKey := track.keys[right]
	sampleKey := track.keys[sample]
	ratio := interpolationRatio(leftKey.Time, rightKey.Time, sampleKey.Time)
	reconstructed := leftKey.Value.Lerped(rightKey.Value, ratio)
	reference := sampleKey.Value.Length()
	if reference < scaleReferenceEpsilon {
		reference = scaleReferenceEpsilon
	}
	return reconstructed.Distance(sampleKey.Value) / reference * track.lever
}
