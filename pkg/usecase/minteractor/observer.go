// 指示: miu200521358
package minteractor

import "github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"

// DecimationStep は間引き候補1件分の評価記録を表す。
type DecimationStep struct {
	// Iteration はトラック内の評価回数(1始まり)。
	Iteration int
	// Joint は対象関節のインデックス。
	Joint int
	// JointName は対象関節の名前。
	JointName string
	// Track は対象トラックの種別。
	Track motion.TrackType
	// TargetError はこのトラックに割り当てられた位置誤差予算(メートル)。
	TargetError float64
	// Distance は対象関節の有効な評価半径(メートル)。
	Distance float64
	// OriginalSize は間引き前のキー数。
	OriginalSize int
	// ValidatedSize は候補評価時点で残っているキー数。
	ValidatedSize int
	// CandidateSize は候補を取り除いた場合のキー数。
	CandidateSize int
	// OwnTolerance は対象関節の有効な許容誤差(メートル)。
	OwnTolerance float64
	// OwnError は候補区間の最大再構成誤差(位置換算・メートル)。
	OwnError float64
	// HierarchyErrorRatio は祖先が消費した誤差予算の割合。
	HierarchyErrorRatio float64
	// OptimizationDelta は予算に対する余裕。負のとき候補は棄却される。
	OptimizationDelta float64
}

// IDecimationReporter は間引き候補評価の通知契約を表す。
type IDecimationReporter interface {
	// ReportDecimationStep は候補評価を通知し、処理を継続する場合に true を返す。
	ReportDecimationStep(step DecimationStep) bool
}

// reportDecimationStep は reporter が nil のときも安全に通知し、継続可否を返す。
func reportDecimationStep(reporter IDecimationReporter, step DecimationStep) bool {
	if reporter == nil {
		return true
	}
	return reporter.ReportDecimationStep(step)
}
