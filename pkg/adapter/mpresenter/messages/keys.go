// 指示: miu200521358
// Package messages はCLI表示に使うメッセージ文字列を提供する。
package messages

import (
	"fmt"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
)

// メッセージ一覧。
const (
	MessageOptimizeStart    = "[mu_motion_optimizer] 最適化開始: %s"
	MessageOptimizeComplete = "[mu_motion_optimizer] 最適化完了: %s (キー数 %d -> %d)"
	MessageRulesApplied     = "[mu_motion_optimizer] 上書き規則: %d関節へ適用"
	MessageReportSaved      = "[mu_motion_optimizer] レポート出力: %s"
	MessageBatchStart       = "[mu_motion_optimizer] 一括最適化開始: %d件"
	MessageBatchComplete    = "[mu_motion_optimizer] 一括最適化完了: 成功 %d / 失敗 %d"
	MessageBatchEntryFailed = "  失敗: %s: %s"
	MessageManifestSaved    = "[mu_motion_optimizer] 一括結果出力: %s"
	MessageWarningLine      = "  警告: %s"

	WarningUnknownJointDropped       = "骨格に無い関節のトラックを破棄しました"
	WarningDuplicateFrameOverwritten = "同一時刻の重複キーを上書きしました"
	WarningDuplicateTrackOverwritten = "同名トラックを後の定義で上書きしました"
)

// WarningText は警告を表示文へ変換する。未知のIDはそのまま表示する。
func WarningText(warning motion.Warning) string {
	text := warning.ID
	switch warning.ID {
	case motion.WarningUnknownJointDropped:
		text = WarningUnknownJointDropped
	case motion.WarningDuplicateFrameOverwritten:
		text = WarningDuplicateFrameOverwritten
	case motion.WarningDuplicateTrackOverwritten:
		text = WarningDuplicateTrackOverwritten
	}
	if warning.Joint != "" {
		text = fmt.Sprintf("%s: %s", text, warning.Joint)
	}
	if warning.Detail != "" {
		text = fmt.Sprintf("%s (%s)", text, warning.Detail)
	}
	return text
}
