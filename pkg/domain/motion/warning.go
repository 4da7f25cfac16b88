// 指示: miu200521358
package motion

// 読み込み時に検出する非致命の問題の警告ID。
const (
	// WarningUnknownJointDropped は骨格に存在しない関節トラックの破棄警告。
	WarningUnknownJointDropped = "MotionWarningUnknownJointDropped"
	// WarningDuplicateFrameOverwritten は同一時刻キーの後勝ち上書き警告。
	WarningDuplicateFrameOverwritten = "MotionWarningDuplicateFrameOverwritten"
	// WarningDuplicateTrackOverwritten は同名トラックの後勝ち上書き警告。
	WarningDuplicateTrackOverwritten = "MotionWarningDuplicateTrackOverwritten"
)

// Warning は読み込み時に検出した非致命の問題を表す。保存対象には含めない。
type Warning struct {
	ID     string
	Joint  string
	Detail string
}

// AddWarning は警告を追記する。
func (animation *RawAnimation) AddWarning(id string, joint string, detail string) {
	animation.Warnings = append(animation.Warnings, Warning{ID: id, Joint: joint, Detail: detail})
}
