// 指示: miu200521358
package mreport

import (
	"sort"
	"sync"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
)

// RecordingDecimationReporter は間引き評価を順に記録する通知先。中断は要求しない。
type RecordingDecimationReporter struct {
	mu    sync.Mutex
	steps []minteractor.DecimationStep
}

// NewRecordingDecimationReporter はRecordingDecimationReporterを生成する。
func NewRecordingDecimationReporter() *RecordingDecimationReporter {
	return &RecordingDecimationReporter{}
}

// ReportDecimationStep は評価記録を追加し、常に処理継続を返す。
func (r *RecordingDecimationReporter) ReportDecimationStep(step minteractor.DecimationStep) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
	return true
}

// Steps は記録済み評価のコピーを返す。
func (r *RecordingDecimationReporter) Steps() []minteractor.DecimationStep {
	r.mu.Lock()
	defer r.mu.Unlock()
	steps := make([]minteractor.DecimationStep, len(r.steps))
	copy(steps, r.steps)
	return steps
}

// Len は記録済み評価の件数を返す。
func (r *RecordingDecimationReporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Reset は記録済み評価を破棄する。
func (r *RecordingDecimationReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = nil
}

// JointReduction は1関節分の間引き集計を表す。
type JointReduction struct {
	// Joint は関節インデックス。
	Joint int
	// JointName は関節名。
	JointName string
	// KeysBefore は評価対象トラックの間引き前キー数合計。
	KeysBefore int
	// KeysAfter は間引き後キー数合計。
	KeysAfter int
	// Accepted は採用(削除)された候補数。
	Accepted int
	// Rejected は棄却された候補数。
	Rejected int
}

// SummarizeDecimationSteps は評価記録を関節単位に集計する。
// キー数が少なく評価されなかったトラックは集計に含まれない。
func SummarizeDecimationSteps(steps []minteractor.DecimationStep) []JointReduction {
	type jointAgg struct {
		name      string
		originals map[motion.TrackType]int
		accepted  int
		rejected  int
	}
	aggs := map[int]*jointAgg{}
	for _, step := range steps {
		agg, ok := aggs[step.Joint]
		if !ok {
			agg = &jointAgg{name: step.JointName, originals: map[motion.TrackType]int{}}
			aggs[step.Joint] = agg
		}
		if _, seen := agg.originals[step.Track]; !seen {
			agg.originals[step.Track] = step.OriginalSize
		}
		if step.OptimizationDelta >= 0 {
			agg.accepted++
		} else {
			agg.rejected++
		}
	}

	joints := make([]int, 0, len(aggs))
	for joint := range aggs {
		joints = append(joints, joint)
	}
	sort.Ints(joints)

	reductions := make([]JointReduction, 0, len(joints))
	for _, joint := range joints {
		agg := aggs[joint]
		before := 0
		for _, original := range agg.originals {
			before += original
		}
		reductions = append(reductions, JointReduction{
			Joint:      joint,
			JointName:  agg.name,
			KeysBefore: before,
			KeysAfter:  before - agg.accepted,
			Accepted:   agg.accepted,
			Rejected:   agg.rejected,
		})
	}
	return reductions
}

var _ minteractor.IDecimationReporter = (*RecordingDecimationReporter)(nil)
