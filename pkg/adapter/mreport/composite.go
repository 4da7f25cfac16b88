// 指示: miu200521358
package mreport

import "github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"

// CompositeDecimationReporter は複数の通知先へ評価を配送する。
// いずれかが中断を要求しても全員へ通知したうえで中断を返す。
type CompositeDecimationReporter struct {
	reporters []minteractor.IDecimationReporter
}

// NewCompositeDecimationReporter はnilを除いた通知先の合成を生成する。
func NewCompositeDecimationReporter(reporters ...minteractor.IDecimationReporter) *CompositeDecimationReporter {
	kept := make([]minteractor.IDecimationReporter, 0, len(reporters))
	for _, reporter := range reporters {
		if reporter != nil {
			kept = append(kept, reporter)
		}
	}
	return &CompositeDecimationReporter{reporters: kept}
}

// ReportDecimationStep は全通知先へ配送し、全員が継続を返したときのみ継続を返す。
func (c *CompositeDecimationReporter) ReportDecimationStep(step minteractor.DecimationStep) bool {
	carryOn := true
	for _, reporter := range c.reporters {
		if !reporter.ReportDecimationStep(step) {
			carryOn = false
		}
	}
	return carryOn
}

var _ minteractor.IDecimationReporter = (*CompositeDecimationReporter)(nil)
