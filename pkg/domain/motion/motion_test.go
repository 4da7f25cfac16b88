// 指示: miu200521358
package motion

import (
	"strings"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"gonum.org/v1/gonum/spatial/r3"
)

// newTestAnimation は検証用の2関節アニメーションを生成する。
func newTestAnimation() *RawAnimation {
	return &RawAnimation{
		Name:     "test_motion",
		Duration: 2.0,
		Tracks: []JointTrack{
			{
				Name: "センター",
				Translations: []TranslationKey{
					{Time: 0, Value: mmath.ZERO_VEC3},
					{Time: 1, Value: mmath.Vec3{Vec: r3.Vec{X: 1}}},
					{Time: 2, Value: mmath.Vec3{Vec: r3.Vec{X: 2}}},
				},
				Rotations: []RotationKey{
					{Time: 0, Value: mmath.NewQuaternion()},
					{Time: 2, Value: mmath.NewQuaternionFromDegrees(0, 90, 0)},
				},
			},
			{
				Name: "上半身",
				Scales: []ScaleKey{
					{Time: 0.5, Value: mmath.ONE_VEC3},
				},
			},
		},
	}
}

func TestValidateAcceptsWellFormedAnimation(t *testing.T) {
	animation := newTestAnimation()

	if err := animation.Validate(); err != nil {
		t.Fatalf("well formed animation should pass validation: %v", err)
	}
}

func TestValidateRejectsNonPositiveDuration(t *testing.T) {
	animation := newTestAnimation()
	animation.Duration = -1

	if err := animation.Validate(); err == nil {
		t.Fatalf("negative duration should fail validation")
	}

	animation.Duration = 0
	if err := animation.Validate(); err == nil {
		t.Fatalf("zero duration should fail validation")
	}
}

func TestValidateRejectsUnsortedKeyTimes(t *testing.T) {
	animation := newTestAnimation()
	animation.Tracks[0].Translations[1].Time = 1.5
	animation.Tracks[0].Translations[2].Time = 1.5

	err := animation.Validate()

	if err == nil {
		t.Fatalf("duplicate key times should fail validation")
	}
	if !strings.Contains(err.Error(), "昇順") {
		t.Fatalf("unexpected validation message: %v", err)
	}
}

func TestValidateRejectsKeyTimeOutOfRange(t *testing.T) {
	animation := newTestAnimation()
	animation.Tracks[1].Scales[0].Time = 2.5

	if err := animation.Validate(); err == nil {
		t.Fatalf("key time beyond duration should fail validation")
	}

	animation.Tracks[1].Scales[0].Time = -0.1
	if err := animation.Validate(); err == nil {
		t.Fatalf("negative key time should fail validation")
	}
}

func TestTotalKeysCountsEverySequence(t *testing.T) {
	animation := newTestAnimation()

	if got := animation.TotalKeys(); got != 6 {
		t.Fatalf("total keys mismatch: %d != 6", got)
	}
	if got := animation.Tracks[0].KeyCount(); got != 5 {
		t.Fatalf("joint key count mismatch: %d != 5", got)
	}
}

func TestNewRawAnimationIsEmpty(t *testing.T) {
	animation := NewRawAnimation()

	if animation.Duration != 0 {
		t.Fatalf("new animation duration should be 0, got %f", animation.Duration)
	}
	if len(animation.Tracks) != 0 {
		t.Fatalf("new animation should have no tracks, got %d", len(animation.Tracks))
	}
}

func TestTrackTypeStringNames(t *testing.T) {
	cases := []struct {
		trackType TrackType
		want      string
	}{
		{TRACK_TYPE_TRANSLATION, "translation"},
		{TRACK_TYPE_ROTATION, "rotation"},
		{TRACK_TYPE_SCALE, "scale"},
		{TrackType(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.trackType.String(); got != c.want {
			t.Fatalf("track type name mismatch: %s != %s", got, c.want)
		}
	}
}
