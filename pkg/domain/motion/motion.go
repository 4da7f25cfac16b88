// 指示: miu200521358
package motion

import (
	"fmt"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
)

// TrackType は関節トラックの種別を表す。
type TrackType int

const (
	// TRACK_TYPE_TRANSLATION は移動トラックを表す。
	TRACK_TYPE_TRANSLATION TrackType = iota
	// TRACK_TYPE_ROTATION は回転トラックを表す。
	TRACK_TYPE_ROTATION
	// TRACK_TYPE_SCALE は拡縮トラックを表す。
	TRACK_TYPE_SCALE
)

// String はトラック種別名を返す。
func (t TrackType) String() string {
	switch t {
	case TRACK_TYPE_TRANSLATION:
		return "translation"
	case TRACK_TYPE_ROTATION:
		return "rotation"
	case TRACK_TYPE_SCALE:
		return "scale"
	}
	return "unknown"
}

// TranslationKey は移動キーを表す。
type TranslationKey struct {
	Time  float64
	Value mmath.Vec3
}

// RotationKey は回転キーを表す。
type RotationKey struct {
	Time  float64
	Value mmath.Quaternion
}

// ScaleKey は拡縮キーを表す。
type ScaleKey struct {
	Time  float64
	Value mmath.Vec3
}

// JointTrack は1関節分の移動・回転・拡縮キー列を表す。各列の長さは独立している。
type JointTrack struct {
	Name         string
	Translations []TranslationKey
	Rotations    []RotationKey
	Scales       []ScaleKey
}

// KeyCount は関節トラック内の総キー数を返す。
func (track *JointTrack) KeyCount() int {
	return len(track.Translations) + len(track.Rotations) + len(track.Scales)
}

// RawAnimation は編集可能なキーフレームアニメーションを表す。
type RawAnimation struct {
	Name     string
	Duration float64
	Tracks   []JointTrack
	Warnings []Warning
}

// NewRawAnimation は空のアニメーションを返す。
func NewRawAnimation() *RawAnimation {
	return &RawAnimation{}
}

// TotalKeys は全関節の総キー数を返す。
func (animation *RawAnimation) TotalKeys() int {
	total := 0
	for i := range animation.Tracks {
		total += animation.Tracks[i].KeyCount()
	}
	return total
}

// Validate はアニメーションが編集可能な形式として妥当かを検証する。
func (animation *RawAnimation) Validate() error {
	if animation == nil {
		return fmt.Errorf("アニメーションが未設定です")
	}
	if animation.Duration <= 0 {
		return fmt.Errorf("モーション長は正の値である必要があります: duration=%f", animation.Duration)
	}
	for i := range animation.Tracks {
		track := &animation.Tracks[i]
		if err := validateKeyTimes(track.Name, TRACK_TYPE_TRANSLATION, translationTimes(track.Translations), animation.Duration); err != nil {
			return err
		}
		if err := validateKeyTimes(track.Name, TRACK_TYPE_ROTATION, rotationTimes(track.Rotations), animation.Duration); err != nil {
			return err
		}
		if err := validateKeyTimes(track.Name, TRACK_TYPE_SCALE, scaleTimes(track.Scales), animation.Duration); err != nil {
			return err
		}
	}
	return nil
}

// validateKeyTimes はキー時刻列が狭義単調増加かつ区間内であるかを検証する。
func validateKeyTimes(jointName string, trackType TrackType, times []float64, duration float64) error {
	for i, time := range times {
		if time < 0 || time > duration {
			return fmt.Errorf("キー時刻がモーション長の範囲外です: joint=%s track=%s index=%d time=%f duration=%f",
				jointName, trackType, i, time, duration)
		}
		if i > 0 && times[i-1] >= time {
			return fmt.Errorf("キー時刻が昇順ではありません: joint=%s track=%s index=%d time=%f prev=%f",
				jointName, trackType, i, time, times[i-1])
		}
	}
	return nil
}

// translationTimes は移動キーの時刻列を返す。
func translationTimes(keys []TranslationKey) []float64 {
	times := make([]float64, len(keys))
	for i := range keys {
		times[i] = keys[i].Time
	}
	return times
}

// rotationTimes は回転キーの時刻列を返す。
func rotationTimes(keys []RotationKey) []float64 {
	times := make([]float64, len(keys))
	for i := range keys {
		times[i] = keys[i].Time
	}
	return times
}

// scaleTimes は拡縮キーの時刻列を返す。
func scaleTimes(keys []ScaleKey) []float64 {
	times := make([]float64, len(keys))
	for i := range keys {
		times[i] = keys[i].Time
	}
	return times
}
