// 指示: miu200521358
package io_motion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// newVmdFixture はVMDの往復に使う骨格とアニメーションを生成する。
// キー時刻はフレーム番号から算出し、保存時の丸めで変化しない値にする。
func newVmdFixture() (*motion.RawAnimation, *motion.Skeleton) {
	skeleton := &motion.Skeleton{
		Name: "テストモデル",
		Joints: []motion.Joint{
			{Name: "センター", Parent: motion.ROOT_PARENT_INDEX},
			{Name: "上半身", Parent: 0},
		},
	}

	frameTimes := []float64{0, 10.0 / vmdFps, 30.0 / vmdFps}
	animation := &motion.RawAnimation{
		Name:     "テストモーション",
		Duration: 1,
		Tracks:   make([]motion.JointTrack, 2),
	}
	for i := range animation.Tracks {
		animation.Tracks[i].Name = skeleton.Joints[i].Name
	}
	for k, time := range frameTimes {
		animation.Tracks[0].Translations = append(animation.Tracks[0].Translations, motion.TranslationKey{
			Time:  time,
			Value: mmath.Vec3{Vec: r3.Vec{X: 0.25 * float64(k), Y: 1.5, Z: -2.75}},
		})
		animation.Tracks[0].Rotations = append(animation.Tracks[0].Rotations, motion.RotationKey{
			Time:  time,
			Value: mmath.NewQuaternionFromDegrees(0, 30*float64(k), 0),
		})
		animation.Tracks[1].Rotations = append(animation.Tracks[1].Rotations, motion.RotationKey{
			Time:  time,
			Value: mmath.NewQuaternionFromDegrees(15*float64(k), 0, 0),
		})
	}
	return animation, skeleton
}

func TestVmdRoundTripPreservesKeys(t *testing.T) {
	animation, skeleton := newVmdFixture()
	repository := NewVmdRepository()
	path := filepath.Join(t.TempDir(), "dance.vmd")

	if err := repository.Save(path, animation, skeleton, moutput.SaveOptions{ModelName: "テストモデル"}); err != nil {
		t.Fatalf("save should succeed: %v", err)
	}
	loaded, err := repository.Load(path, skeleton)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}

	if loaded.Duration != 1 {
		t.Fatalf("duration should equal the last frame time: %f", loaded.Duration)
	}
	if len(loaded.Tracks) != skeleton.JointCount() {
		t.Fatalf("track count should match the skeleton: %d", len(loaded.Tracks))
	}
	for i := range loaded.Tracks {
		if loaded.Tracks[i].Name != skeleton.Joints[i].Name {
			t.Fatalf("track %d name mismatch: %s", i, loaded.Tracks[i].Name)
		}
	}

	want := animation.Tracks[0]
	got := loaded.Tracks[0]
	if len(got.Translations) != len(want.Translations) || len(got.Rotations) != len(want.Rotations) {
		t.Fatalf("key counts changed in round trip: %d/%d", len(got.Translations), len(got.Rotations))
	}
	for k := range want.Translations {
		if got.Translations[k].Time != want.Translations[k].Time {
			t.Fatalf("translation time changed: %f != %f", got.Translations[k].Time, want.Translations[k].Time)
		}
		if !got.Translations[k].Value.NearEquals(want.Translations[k].Value, 1e-6) {
			t.Fatalf("translation value drifted: %+v != %+v", got.Translations[k].Value, want.Translations[k].Value)
		}
	}
	for k := range want.Rotations {
		if !got.Rotations[k].Value.NearEquals(want.Rotations[k].Value, 1e-6) {
			t.Fatalf("rotation value drifted: %+v != %+v", got.Rotations[k].Value, want.Rotations[k].Value)
		}
	}

	// 回転しか持たない関節も、VMDでは位置と回転が同じフレームに載る。
	if len(loaded.Tracks[1].Rotations) != 3 || len(loaded.Tracks[1].Translations) != 3 {
		t.Fatalf("bone frames should carry both channels: %d/%d",
			len(loaded.Tracks[1].Rotations), len(loaded.Tracks[1].Translations))
	}
	for k := range loaded.Tracks[1].Translations {
		if !loaded.Tracks[1].Translations[k].Value.NearEquals(mmath.ZERO_VEC3, 1e-6) {
			t.Fatalf("missing translation should sample to zero: %+v", loaded.Tracks[1].Translations[k])
		}
	}
}

func TestVmdSaveLayout(t *testing.T) {
	animation, skeleton := newVmdFixture()
	repository := NewVmdRepository()
	path := filepath.Join(t.TempDir(), "layout.vmd")

	if err := repository.Save(path, animation, skeleton, moutput.SaveOptions{}); err != nil {
		t.Fatalf("save should succeed: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file should exist: %v", err)
	}

	// track0は3フレーム、track1も3フレーム。
	wantFrames := 6
	wantLength := vmdHeaderLength + vmdModelNameLength + 4 + wantFrames*vmdBoneFrameLength + 5*4
	if len(b) != wantLength {
		t.Fatalf("file length mismatch: %d != %d", len(b), wantLength)
	}
	if string(b[:len(vmdSignature)]) != vmdSignature {
		t.Fatalf("signature mismatch: %q", b[:len(vmdSignature)])
	}
	for _, trailing := range b[len(b)-20:] {
		if trailing != 0 {
			t.Fatalf("tail sections must be empty: %v", b[len(b)-20:])
		}
	}
}

func TestVmdLoadSkipsUnknownBones(t *testing.T) {
	animation, skeleton := newVmdFixture()
	animation.Tracks[1].Name = "謎ボーン"
	repository := NewVmdRepository()
	path := filepath.Join(t.TempDir(), "unknown.vmd")

	if err := repository.Save(path, animation, nil, moutput.SaveOptions{}); err != nil {
		t.Fatalf("save should succeed: %v", err)
	}
	loaded, err := repository.Load(path, skeleton)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}

	if len(loaded.Tracks) != skeleton.JointCount() {
		t.Fatalf("tracks should follow the skeleton: %d", len(loaded.Tracks))
	}
	if len(loaded.Tracks[0].Translations) != 3 {
		t.Fatalf("known bone keys should survive: %d", len(loaded.Tracks[0].Translations))
	}
	if len(loaded.Tracks[1].Translations) != 0 || len(loaded.Tracks[1].Rotations) != 0 {
		t.Fatalf("unmatched joint should stay empty: %+v", loaded.Tracks[1])
	}
	if len(loaded.Warnings) != 1 {
		t.Fatalf("warning count mismatch: %+v", loaded.Warnings)
	}
	if loaded.Warnings[0].ID != motion.WarningUnknownJointDropped || loaded.Warnings[0].Joint != "謎ボーン" {
		t.Fatalf("warning mismatch: %+v", loaded.Warnings[0])
	}
}

func TestVmdLoadDuplicateFramesLastWins(t *testing.T) {
	skeleton := &motion.Skeleton{
		Name:   "single",
		Joints: []motion.Joint{{Name: "センター", Parent: motion.ROOT_PARENT_INDEX}},
	}
	interpolation := defaultBoneInterpolation()
	first := vmdBoneFrame{name: "センター", frame: 5,
		position: mmath.Vec3{Vec: r3.Vec{X: 1}}, rotation: mmath.NewQuaternion()}
	second := vmdBoneFrame{name: "センター", frame: 5,
		position: mmath.Vec3{Vec: r3.Vec{X: 2}}, rotation: mmath.NewQuaternion()}

	b := appendVmdHeader(nil, "dup")
	b = appendUint32(b, 2)
	b = appendVmdBoneFrame(b, &first, interpolation)
	b = appendVmdBoneFrame(b, &second, interpolation)

	path := filepath.Join(t.TempDir(), "dup.vmd")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	loaded, err := NewVmdRepository().Load(path, skeleton)
	if err != nil {
		t.Fatalf("load should succeed: %v", err)
	}
	keys := loaded.Tracks[0].Translations
	if len(keys) != 1 {
		t.Fatalf("duplicate frames should merge: %d keys", len(keys))
	}
	if keys[0].Value.X != 2 {
		t.Fatalf("last frame should win: %+v", keys[0])
	}
	if len(loaded.Warnings) != 1 || loaded.Warnings[0].ID != motion.WarningDuplicateFrameOverwritten {
		t.Fatalf("duplicate warning mismatch: %+v", loaded.Warnings)
	}
}

func TestVmdLoadStopsAtMissingTailSections(t *testing.T) {
	skeleton := &motion.Skeleton{
		Name:   "single",
		Joints: []motion.Joint{{Name: "センター", Parent: motion.ROOT_PARENT_INDEX}},
	}
	interpolation := defaultBoneInterpolation()
	frame := vmdBoneFrame{name: "センター", frame: 3,
		position: mmath.Vec3{Vec: r3.Vec{Y: 0.5}}, rotation: mmath.NewQuaternion()}

	// ボーンフレームで終わる(末尾セクションなし)古い形式。
	b := appendVmdHeader(nil, "old")
	b = appendUint32(b, 1)
	b = appendVmdBoneFrame(b, &frame, interpolation)

	path := filepath.Join(t.TempDir(), "old.vmd")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}

	loaded, err := NewVmdRepository().Load(path, skeleton)
	if err != nil {
		t.Fatalf("old layout should load: %v", err)
	}
	if len(loaded.Tracks[0].Translations) != 1 {
		t.Fatalf("bone frame should survive: %+v", loaded.Tracks[0])
	}
}

func TestVmdLoadRejectsBrokenFiles(t *testing.T) {
	skeleton := &motion.Skeleton{
		Name:   "single",
		Joints: []motion.Joint{{Name: "センター", Parent: motion.ROOT_PARENT_INDEX}},
	}
	repository := NewVmdRepository()
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.vmd")
	if err := os.WriteFile(garbage, []byte("this is not a motion file padded to length"), 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	if _, err := repository.Load(garbage, skeleton); !errors.Is(err, io_common.ErrParseFailed) {
		t.Fatalf("broken signature should be a parse failure: %v", err)
	}

	v1 := filepath.Join(dir, "v1.vmd")
	header := make([]byte, vmdHeaderLength)
	copy(header, vmdSignatureV1)
	if err := os.WriteFile(v1, header, 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	if _, err := repository.Load(v1, skeleton); !errors.Is(err, io_common.ErrFormatNotSupported) {
		t.Fatalf("v1 signature should be unsupported: %v", err)
	}

	truncated := filepath.Join(dir, "truncated.vmd")
	b := appendVmdHeader(nil, "broken")
	b = appendUint32(b, 3)
	if err := os.WriteFile(truncated, b, 0o644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	if _, err := repository.Load(truncated, skeleton); !errors.Is(err, io_common.ErrParseFailed) {
		t.Fatalf("truncated frames should be a parse failure: %v", err)
	}
}

func TestVmdLoadMissingFile(t *testing.T) {
	skeleton := &motion.Skeleton{
		Name:   "single",
		Joints: []motion.Joint{{Name: "センター", Parent: motion.ROOT_PARENT_INDEX}},
	}
	_, err := NewVmdRepository().Load(filepath.Join(t.TempDir(), "missing.vmd"), skeleton)
	if !errors.Is(err, io_common.ErrFileNotFound) {
		t.Fatalf("missing file should report not found: %v", err)
	}
}

func TestVmdCanLoadChecksExtension(t *testing.T) {
	repository := NewVmdRepository()
	if !repository.CanLoad("dance.vmd") || !repository.CanLoad("DANCE.VMD") {
		t.Fatalf("vmd extension should be loadable")
	}
	if repository.CanLoad("dance.txt") {
		t.Fatalf("other extensions must be rejected")
	}
	if _, err := repository.Load("dance.txt", nil); !errors.Is(err, io_common.ErrExtInvalid) {
		t.Fatalf("load with a wrong extension should fail: %v", err)
	}
}

func TestVmdLoadReportsProgress(t *testing.T) {
	animation, skeleton := newVmdFixture()
	repository := NewVmdRepository()
	path := filepath.Join(t.TempDir(), "progress.vmd")
	if err := repository.Save(path, animation, skeleton, moutput.SaveOptions{}); err != nil {
		t.Fatalf("save should succeed: %v", err)
	}

	events := []LoadProgressEvent{}
	repository.SetLoadProgressReporter(func(event LoadProgressEvent) {
		events = append(events, event)
	})
	if _, err := repository.Load(path, skeleton); err != nil {
		t.Fatalf("load should succeed: %v", err)
	}

	want := []LoadProgressEventType{
		LoadProgressEventTypeFileReadComplete,
		LoadProgressEventTypeHeaderParsed,
		LoadProgressEventTypeFramesParsed,
		LoadProgressEventTypeCompleted,
	}
	if len(events) != len(want) {
		t.Fatalf("progress event count mismatch: %d", len(events))
	}
	for i := range want {
		if events[i].Type != want[i] {
			t.Fatalf("progress event order mismatch at %d: %+v", i, events[i])
		}
	}
	last := events[len(events)-1]
	if last.BoneFrameCount != 6 || last.KeyCount == 0 {
		t.Fatalf("completed event should carry counts: %+v", last)
	}
}

func TestDefaultBoneInterpolationLayout(t *testing.T) {
	block := defaultBoneInterpolation()
	want := [vmdInterpolationLength]byte{
		20, 20, 0, 0, 20, 20, 20, 20, 107, 107, 107, 107, 107, 107, 107, 107,
		20, 20, 20, 20, 20, 20, 20, 107, 107, 107, 107, 107, 107, 107, 107, 0,
		20, 20, 20, 20, 20, 20, 107, 107, 107, 107, 107, 107, 107, 107, 0, 0,
		20, 20, 20, 20, 20, 107, 107, 107, 107, 107, 107, 107, 107, 0, 0, 0,
	}
	if block != want {
		t.Fatalf("interpolation layout mismatch:\n%v\n%v", block, want)
	}
}

func TestEncodeShiftJISNameRoundTrip(t *testing.T) {
	encoded, truncated := encodeShiftJISName("センター", vmdBoneNameLength)
	if truncated {
		t.Fatalf("short name must not be truncated")
	}
	if len(encoded) != vmdBoneNameLength {
		t.Fatalf("encoded name must be fixed length: %d", len(encoded))
	}
	decoded, err := decodeShiftJISName(encoded)
	if err != nil {
		t.Fatalf("decode should succeed: %v", err)
	}
	if decoded != "センター" {
		t.Fatalf("name round trip mismatch: %s", decoded)
	}

	_, truncated = encodeShiftJISName("とても長い名前のボーンですこれは", vmdBoneNameLength)
	if !truncated {
		t.Fatalf("long name should report truncation")
	}
}

func TestUnionKeyTimesMergesAndDedupes(t *testing.T) {
	track := &motion.JointTrack{
		Translations: []motion.TranslationKey{{Time: 0}, {Time: 0.5}},
		Rotations:    []motion.RotationKey{{Time: 0}, {Time: 0.25}, {Time: 0.5}},
	}
	got := unionKeyTimes(track)
	want := []float64{0, 0.25, 0.5}
	if len(got) != len(want) {
		t.Fatalf("union length mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("union times mismatch: %v", got)
		}
	}
}
