// 指示: miu200521358
package minteractor

import (
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

// MotionData は最適化対象アニメーションを表す。
type MotionData = motion.RawAnimation

// SkeletonData は最適化対象骨格を表す。
type SkeletonData = motion.Skeleton

// SaveOptions は保存時オプションを表す。
type SaveOptions = moutput.SaveOptions

// OptimizeProgressEventType は最適化処理の進捗イベント種別を表す。
type OptimizeProgressEventType string

const (
	// OptimizeProgressEventTypeInputValidated は入力検証完了イベントを表す。
	OptimizeProgressEventTypeInputValidated OptimizeProgressEventType = "input_validated"
	// OptimizeProgressEventTypeSkeletonLoaded は骨格読み込み完了イベントを表す。
	OptimizeProgressEventTypeSkeletonLoaded OptimizeProgressEventType = "skeleton_loaded"
	// OptimizeProgressEventTypeMotionLoaded はモーション読み込み完了イベントを表す。
	OptimizeProgressEventTypeMotionLoaded OptimizeProgressEventType = "motion_loaded"
	// OptimizeProgressEventTypeConstantCollapsed は一定値トラック畳み込み完了イベントを表す。
	OptimizeProgressEventTypeConstantCollapsed OptimizeProgressEventType = "constant_collapsed"
	// OptimizeProgressEventTypeJointsOptimized は関節別間引き完了イベントを表す。
	OptimizeProgressEventTypeJointsOptimized OptimizeProgressEventType = "joints_optimized"
	// OptimizeProgressEventTypeOutputSaved は出力保存完了イベントを表す。
	OptimizeProgressEventTypeOutputSaved OptimizeProgressEventType = "output_saved"
)

// OptimizeProgressEvent は最適化処理の進捗イベントを表す。
type OptimizeProgressEvent struct {
	Type       OptimizeProgressEventType
	JointCount int
	KeysBefore int
	KeysAfter  int
}

// IOptimizeProgressReporter は最適化処理の進捗通知契約を表す。
type IOptimizeProgressReporter interface {
	// ReportOptimizeProgress は最適化処理進捗を通知する。
	ReportOptimizeProgress(event OptimizeProgressEvent)
}

// reportOptimizeProgress は reporter が nil のときも安全に進捗を通知する。
func reportOptimizeProgress(reporter IOptimizeProgressReporter, event OptimizeProgressEvent) {
	if reporter == nil {
		return
	}
	reporter.ReportOptimizeProgress(event)
}

// OptimizeRequest はモーション最適化要求を表す。
type OptimizeRequest struct {
	InputPath    string
	OutputPath   string
	SkeletonPath string

	// MotionData と SkeletonData が設定済みの場合、読み込みを省略する。
	MotionData   *MotionData
	SkeletonData *SkeletonData

	Reader         moutput.IMotionReader
	Writer         moutput.IMotionWriter
	SkeletonReader moutput.ISkeletonReader
	SaveOptions    SaveOptions

	Setting               Setting
	JointsSettingOverride JointsSetting

	// ConstantFirst は階層間引きの前に一定値トラックを畳み込む。
	ConstantFirst bool
	// ConstantOnly は一定値トラックの畳み込みのみを行う。
	ConstantOnly bool
	// ConstantSetting は一定値判定の許容誤差。nil のときは既定値を使う。
	ConstantSetting *AnimationConstantOptimizer

	ProgressReporter   IOptimizeProgressReporter
	DecimationReporter IDecimationReporter
}

// OptimizeResult はモーション最適化結果を表す。
type OptimizeResult struct {
	Motion     *MotionData
	OutputPath string
	KeysBefore int
	KeysAfter  int
}
