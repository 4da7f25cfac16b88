// 指示: miu200521358
package minteractor

import "fmt"

const (
	// defaultTolerance は既定の許容誤差(メートル)。1mm。
	defaultTolerance = 1e-3
	// defaultDistance は既定の評価半径(メートル)。10cm。
	defaultDistance = 1e-1
)

// Setting は関節1つ分の許容誤差と評価半径の組を表す。
type Setting struct {
	// Tolerance は許容する位置誤差(メートル)。
	Tolerance float64
	// Distance は誤差を評価する関節からの半径(メートル)。
	Distance float64
}

// NewSetting は既定値(許容誤差1mm、評価半径10cm)の設定を返す。
func NewSetting() Setting {
	return Setting{Tolerance: defaultTolerance, Distance: defaultDistance}
}

// Validate は設定値が評価可能かを検証する。
func (setting Setting) Validate() error {
	if setting.Tolerance < 0 {
		return fmt.Errorf("許容誤差は0以上である必要があります: tolerance=%f", setting.Tolerance)
	}
	if setting.Distance < 0 {
		return fmt.Errorf("評価半径は0以上である必要があります: distance=%f", setting.Distance)
	}
	return nil
}

// JointsSetting は関節インデックスごとの設定上書きを表す。
// 上書きの無い関節は最も近い祖先の上書き、どの祖先にも無ければ全体設定を継承する。
type JointsSetting map[int]Setting

// Validate は全上書き設定が評価可能かを検証する。
func (settings JointsSetting) Validate(jointCount int) error {
	for index, setting := range settings {
		if index < 0 || index >= jointCount {
			return fmt.Errorf("上書き対象の関節インデックスが範囲外です: index=%d joints=%d", index, jointCount)
		}
		if err := setting.Validate(); err != nil {
			return fmt.Errorf("関節 %d の上書き設定が不正です: %w", index, err)
		}
	}
	return nil
}
