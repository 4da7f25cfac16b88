// 指示: miu200521358
package mreport

import (
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
)

func newRecorderSteps() []minteractor.DecimationStep {
	return []minteractor.DecimationStep{
		{Iteration: 1, Joint: 0, JointName: "センター", Track: motion.TRACK_TYPE_TRANSLATION,
			TargetError: 1e-3, OriginalSize: 10, ValidatedSize: 10, CandidateSize: 9,
			OwnError: 2e-4, OptimizationDelta: 8e-4},
		{Iteration: 2, Joint: 0, JointName: "センター", Track: motion.TRACK_TYPE_TRANSLATION,
			TargetError: 1e-3, OriginalSize: 10, ValidatedSize: 9, CandidateSize: 8,
			OwnError: 2e-3, OptimizationDelta: -1e-3},
		{Iteration: 1, Joint: 0, JointName: "センター", Track: motion.TRACK_TYPE_ROTATION,
			TargetError: 1e-3, OriginalSize: 8, ValidatedSize: 8, CandidateSize: 7,
			OwnError: 5e-4, OptimizationDelta: 5e-4},
		{Iteration: 1, Joint: 2, JointName: "左腕", Track: motion.TRACK_TYPE_SCALE,
			TargetError: 2e-4, OriginalSize: 5, ValidatedSize: 5, CandidateSize: 4,
			OwnError: 9e-4, OptimizationDelta: -7e-4},
	}
}

func TestRecordingReporterKeepsStepsInOrder(t *testing.T) {
	reporter := NewRecordingDecimationReporter()
	for _, step := range newRecorderSteps() {
		if !reporter.ReportDecimationStep(step) {
			t.Fatalf("recording reporter must never abort")
		}
	}
	if reporter.Len() != 4 {
		t.Fatalf("step count mismatch: %d", reporter.Len())
	}

	steps := reporter.Steps()
	if steps[1].OptimizationDelta >= 0 || steps[1].Iteration != 2 {
		t.Fatalf("steps should keep arrival order: %+v", steps[1])
	}

	// 返り値のコピーを書き換えても内部記録は変わらない。
	steps[0].JointName = "書き換え"
	if reporter.Steps()[0].JointName != "センター" {
		t.Fatalf("Steps should return a copy")
	}

	reporter.Reset()
	if reporter.Len() != 0 {
		t.Fatalf("reset should drop records: %d", reporter.Len())
	}
}

func TestSummarizeDecimationStepsAggregatesPerJoint(t *testing.T) {
	reductions := SummarizeDecimationSteps(newRecorderSteps())
	if len(reductions) != 2 {
		t.Fatalf("joint count mismatch: %+v", reductions)
	}

	first := reductions[0]
	if first.Joint != 0 || first.JointName != "センター" {
		t.Fatalf("joints should be sorted by index: %+v", first)
	}
	// 移動10キー + 回転8キー、採用2件。
	if first.KeysBefore != 18 || first.KeysAfter != 16 {
		t.Fatalf("key totals mismatch: %+v", first)
	}
	if first.Accepted != 2 || first.Rejected != 1 {
		t.Fatalf("accept counts mismatch: %+v", first)
	}

	second := reductions[1]
	if second.Joint != 2 || second.KeysBefore != 5 || second.KeysAfter != 5 {
		t.Fatalf("rejected-only joint should keep all keys: %+v", second)
	}
}

func TestSummarizeDecimationStepsEmpty(t *testing.T) {
	if reductions := SummarizeDecimationSteps(nil); len(reductions) != 0 {
		t.Fatalf("empty steps should produce no reductions: %+v", reductions)
	}
}
