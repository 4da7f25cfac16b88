// 指示: miu200521358
package mmath

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 は3次元ベクトルを表す。
type Vec3 struct {
	r3.Vec
}

var (
	// ZERO_VEC3 は零ベクトルを表す。
	ZERO_VEC3 = Vec3{}
	// ONE_VEC3 は全成分1のベクトルを表す。
	ONE_VEC3 = Vec3{Vec: r3.Vec{X: 1, Y: 1, Z: 1}}
	// UNIT_X_VEC3 はX軸単位ベクトルを表す。
	UNIT_X_VEC3 = Vec3{Vec: r3.Vec{X: 1}}
	// UNIT_Y_VEC3 はY軸単位ベクトルを表す。
	UNIT_Y_VEC3 = Vec3{Vec: r3.Vec{Y: 1}}
	// UNIT_Z_VEC3 はZ軸単位ベクトルを表す。
	UNIT_Z_VEC3 = Vec3{Vec: r3.Vec{Z: 1}}
)

// Added は加算結果を返す。
func (v Vec3) Added(other Vec3) Vec3 {
	return Vec3{Vec: r3.Add(v.Vec, other.Vec)}
}

// Subed は減算結果を返す。
func (v Vec3) Subed(other Vec3) Vec3 {
	return Vec3{Vec: r3.Sub(v.Vec, other.Vec)}
}

// Muled は成分ごとの乗算結果を返す。
func (v Vec3) Muled(other Vec3) Vec3 {
	return Vec3{Vec: r3.Vec{X: v.X * other.X, Y: v.Y * other.Y, Z: v.Z * other.Z}}
}

// MuledScalar はスカラー倍の結果を返す。
func (v Vec3) MuledScalar(scalar float64) Vec3 {
	return Vec3{Vec: r3.Scale(scalar, v.Vec)}
}

// DivedScalar はスカラー除算の結果を返す。
func (v Vec3) DivedScalar(scalar float64) Vec3 {
	return Vec3{Vec: r3.Scale(1.0/scalar, v.Vec)}
}

// Dot は内積を返す。
func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(v.Vec, other.Vec)
}

// Cross は外積を返す。
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{Vec: r3.Cross(v.Vec, other.Vec)}
}

// Length はベクトル長を返す。
func (v Vec3) Length() float64 {
	return r3.Norm(v.Vec)
}

// Distance は他ベクトルとの距離を返す。
func (v Vec3) Distance(other Vec3) float64 {
	return v.Subed(other).Length()
}

// Normalized は正規化結果を返す。零ベクトルは零ベクトルのまま返す。
func (v Vec3) Normalized() Vec3 {
	length := v.Length()
	if length < 1e-12 {
		return ZERO_VEC3
	}
	return v.DivedScalar(length)
}

// Abs は各成分の絶対値を持つベクトルを返す。
func (v Vec3) Abs() Vec3 {
	return Vec3{Vec: r3.Vec{X: math.Abs(v.X), Y: math.Abs(v.Y), Z: math.Abs(v.Z)}}
}

// MaxComponent は最大成分値を返す。
func (v Vec3) MaxComponent() float64 {
	return math.Max(v.X, math.Max(v.Y, v.Z))
}

// Lerped は線形補間結果を返す。
func (v Vec3) Lerped(other Vec3, t float64) Vec3 {
	return v.Added(other.Subed(v).MuledScalar(t))
}

// NearEquals は各成分が許容誤差内で一致するかを返す。
func (v Vec3) NearEquals(other Vec3, epsilon float64) bool {
	return math.Abs(v.X-other.X) <= epsilon &&
		math.Abs(v.Y-other.Y) <= epsilon &&
		math.Abs(v.Z-other.Z) <= epsilon
}
