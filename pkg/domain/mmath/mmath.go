// 指示: miu200521358
package mmath

import "math"

// DegToRad は度をラジアンへ変換する。
func DegToRad(degree float64) float64 {
	return degree * math.Pi / 180.0
}

// RadToDeg はラジアンを度へ変換する。
func RadToDeg(radian float64) float64 {
	return radian * 180.0 / math.Pi
}
