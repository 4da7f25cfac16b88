// 指示: miu200521358
package mreport

import (
	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
)

// LogDecimationReporter は間引き評価を冗長ログチャネルへ流す通知先。中断は要求しない。
type LogDecimationReporter struct{}

// NewLogDecimationReporter はLogDecimationReporterを生成する。
func NewLogDecimationReporter() *LogDecimationReporter {
	return &LogDecimationReporter{}
}

// ReportDecimationStep は評価1件を冗長ログへ出力し、常に処理継続を返す。
func (r *LogDecimationReporter) ReportDecimationStep(step minteractor.DecimationStep) bool {
	logging.DefaultLogger().Verbose(logging.VERBOSE_INDEX_DECIMATION,
		"間引き評価: joint=%s track=%s iteration=%d keys=%d->%d error=%.6f target=%.6f delta=%.6f hierarchy=%.3f",
		step.JointName, step.Track, step.Iteration, step.ValidatedSize, step.CandidateSize,
		step.OwnError, step.TargetError, step.OptimizationDelta, step.HierarchyErrorRatio)
	return true
}

var _ minteractor.IDecimationReporter = (*LogDecimationReporter)(nil)
