// 指示: miu200521358
package motion

import (
	"math"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestSampleTranslationInterpolatesLinearly(t *testing.T) {
	keys := []TranslationKey{
		{Time: 0, Value: mmath.Vec3{Vec: r3.Vec{X: 0, Y: 0, Z: 0}}},
		{Time: 1, Value: mmath.Vec3{Vec: r3.Vec{X: 2, Y: 4, Z: -2}}},
	}

	got := SampleTranslation(keys, 0.25)
	want := mmath.Vec3{Vec: r3.Vec{X: 0.5, Y: 1, Z: -0.5}}
	if !got.NearEquals(want, 1e-12) {
		t.Fatalf("linear interpolation mismatch: %+v", got)
	}
}

func TestSampleTranslationClampsOutsideRange(t *testing.T) {
	keys := []TranslationKey{
		{Time: 0.2, Value: mmath.Vec3{Vec: r3.Vec{X: 1}}},
		{Time: 0.8, Value: mmath.Vec3{Vec: r3.Vec{X: 3}}},
	}

	if got := SampleTranslation(keys, 0); !got.NearEquals(keys[0].Value, 0) {
		t.Fatalf("time before the first key should clamp: %+v", got)
	}
	if got := SampleTranslation(keys, 1); !got.NearEquals(keys[1].Value, 0) {
		t.Fatalf("time after the last key should clamp: %+v", got)
	}
}

func TestSampleTranslationEmptyTrackReturnsZero(t *testing.T) {
	if got := SampleTranslation(nil, 0.5); !got.NearEquals(mmath.ZERO_VEC3, 0) {
		t.Fatalf("empty track should sample to zero: %+v", got)
	}
}

func TestSampleRotationInterpolatesShortestArc(t *testing.T) {
	keys := []RotationKey{
		{Time: 0, Value: mmath.NewQuaternion()},
		{Time: 1, Value: mmath.NewQuaternionFromDegrees(0, 90, 0)},
	}

	got := SampleRotation(keys, 0.5)
	want := mmath.NewQuaternionFromDegrees(0, 45, 0)
	if !got.NearEquals(want, 1e-9) {
		t.Fatalf("slerp midpoint mismatch: %+v", got)
	}
}

func TestSampleRotationEmptyTrackReturnsIdentity(t *testing.T) {
	got := SampleRotation(nil, 0.5)
	if math.Abs(got.W-1) > 1e-12 {
		t.Fatalf("empty track should sample to identity: %+v", got)
	}
}

func TestSampleScaleEmptyTrackReturnsOne(t *testing.T) {
	if got := SampleScale(nil, 0.5); !got.NearEquals(mmath.ONE_VEC3, 0) {
		t.Fatalf("empty track should sample to unit scale: %+v", got)
	}
}

func TestSampleScaleAtExactKeyTime(t *testing.T) {
	keys := []ScaleKey{
		{Time: 0, Value: mmath.ONE_VEC3},
		{Time: 0.5, Value: mmath.Vec3{Vec: r3.Vec{X: 2, Y: 2, Z: 2}}},
		{Time: 1, Value: mmath.ONE_VEC3},
	}

	if got := SampleScale(keys, 0.5); !got.NearEquals(keys[1].Value, 1e-12) {
		t.Fatalf("sampling at a key time should return the key value: %+v", got)
	}
}
