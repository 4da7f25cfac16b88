// 指示: miu200521358
package mreport

import (
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
)

type stubDecimationReporter struct {
	calls    int
	carryOn  bool
	lastStep minteractor.DecimationStep
}

func (s *stubDecimationReporter) ReportDecimationStep(step minteractor.DecimationStep) bool {
	s.calls++
	s.lastStep = step
	return s.carryOn
}

func TestCompositeReporterNotifiesAllDelegates(t *testing.T) {
	first := &stubDecimationReporter{carryOn: true}
	second := &stubDecimationReporter{carryOn: true}
	composite := NewCompositeDecimationReporter(first, nil, second)

	step := minteractor.DecimationStep{Iteration: 7, JointName: "センター"}
	if !composite.ReportDecimationStep(step) {
		t.Fatalf("all delegates continue, composite must continue")
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("delegates should each be notified once: %d, %d", first.calls, second.calls)
	}
	if second.lastStep.Iteration != 7 {
		t.Fatalf("step should pass through unchanged: %+v", second.lastStep)
	}
}

func TestCompositeReporterAbortsWhenAnyDelegateAborts(t *testing.T) {
	aborting := &stubDecimationReporter{carryOn: false}
	trailing := &stubDecimationReporter{carryOn: true}
	composite := NewCompositeDecimationReporter(aborting, trailing)

	if composite.ReportDecimationStep(minteractor.DecimationStep{}) {
		t.Fatalf("composite should abort when a delegate aborts")
	}
	if trailing.calls != 1 {
		t.Fatalf("later delegates should still be notified: %d", trailing.calls)
	}
}

func TestCompositeReporterWithoutDelegates(t *testing.T) {
	composite := NewCompositeDecimationReporter()
	if !composite.ReportDecimationStep(minteractor.DecimationStep{}) {
		t.Fatalf("empty composite should continue")
	}
}
