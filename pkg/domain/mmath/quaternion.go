// 指示: miu200521358
package mmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/spatial/r3"
)

// Quaternion は回転を表すクォータニオン。
type Quaternion struct {
	mgl64.Quat
}

// NewQuaternion は単位クォータニオンを返す。
func NewQuaternion() Quaternion {
	return Quaternion{Quat: mgl64.QuatIdent()}
}

// NewQuaternionByValues は成分値からクォータニオンを生成する。
func NewQuaternionByValues(x, y, z, w float64) Quaternion {
	return Quaternion{Quat: mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}}
}

// NewQuaternionFromDegrees はXYZ順のオイラー角(度)からクォータニオンを生成する。
func NewQuaternionFromDegrees(xDegree, yDegree, zDegree float64) Quaternion {
	return Quaternion{Quat: mgl64.AnglesToQuat(
		DegToRad(xDegree), DegToRad(yDegree), DegToRad(zDegree), mgl64.XYZ)}
}

// Muled は回転の合成結果を返す。
func (q Quaternion) Muled(other Quaternion) Quaternion {
	return Quaternion{Quat: q.Quat.Mul(other.Quat)}
}

// MulVec3 はベクトルへ回転を適用した結果を返す。
func (q Quaternion) MulVec3(v Vec3) Vec3 {
	rotated := q.Quat.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
	return Vec3{Vec: r3.Vec{X: rotated[0], Y: rotated[1], Z: rotated[2]}}
}

// Dot は内積を返す。
func (q Quaternion) Dot(other Quaternion) float64 {
	return q.Quat.Dot(other.Quat)
}

// Normalized は正規化結果を返す。零クォータニオンは単位クォータニオンへ置き換える。
func (q Quaternion) Normalized() Quaternion {
	length := q.Quat.Len()
	if length < 1e-12 {
		return NewQuaternion()
	}
	return Quaternion{Quat: q.Quat.Scale(1.0 / length)}
}

// Inverted は逆回転を返す。
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{Quat: q.Quat.Inverse()}
}

// Slerped は最短経路の球面線形補間結果を返す。
func (q Quaternion) Slerped(other Quaternion, t float64) Quaternion {
	target := other.Quat
	if q.Quat.Dot(target) < 0 {
		target = target.Scale(-1)
	}
	return Quaternion{Quat: mgl64.QuatSlerp(q.Quat, target, t)}
}

// NearEquals は各成分が許容誤差内で一致するかを返す。
func (q Quaternion) NearEquals(other Quaternion, epsilon float64) bool {
	return math.Abs(q.W-other.W) <= epsilon &&
		math.Abs(q.X()-other.X()) <= epsilon &&
		math.Abs(q.Y()-other.Y()) <= epsilon &&
		math.Abs(q.Z()-other.Z()) <= epsilon
}
