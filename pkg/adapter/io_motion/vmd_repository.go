// 指示: miu200521358
package io_motion

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// LoadProgressEventType はVMD読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeHeaderParsed はヘッダ解析完了イベントを表す。
	LoadProgressEventTypeHeaderParsed LoadProgressEventType = "header_parsed"
	// LoadProgressEventTypeFramesParsed はボーンフレーム解析完了イベントを表す。
	LoadProgressEventTypeFramesParsed LoadProgressEventType = "frames_parsed"
	// LoadProgressEventTypeCompleted はVMD読込完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はVMD読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type           LoadProgressEventType
	FileSizeBytes  int
	BoneFrameCount int
	TrackCount     int
	KeyCount       int
}

// VmdRepository はVMDモーションの入出力契約を表す。
type VmdRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewVmdRepository はVmdRepositoryを生成する。
func NewVmdRepository() *VmdRepository {
	return &VmdRepository{}
}

// SetLoadProgressReporter はVMD読込進捗受信コールバックを設定する。
func (r *VmdRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VmdRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vmd")
}

// CanSave は拡張子に応じて保存可否を判定する。
func (r *VmdRepository) CanSave(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vmd")
}

// InferName はパスから表示名を推定する。
func (r *VmdRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	if ext == "" {
		return base
	}
	return strings.TrimSuffix(base, ext)
}

// Load はVMDを読み込み、骨格の関節順に並んだアニメーションを返す。
// 骨格に存在しないボーンのフレームは読み飛ばす。
func (r *VmdRepository) Load(path string, skeleton *motion.Skeleton) (*motion.RawAnimation, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	if skeleton == nil {
		return nil, fmt.Errorf("骨格が未設定です")
	}
	loadTargetName := filepath.Base(path)
	logVmdInfo("VMD読込開始: file=%s", loadTargetName)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("VMDファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})
	logVmdInfo("VMD読込ステップ: ファイル読み取り完了 bytes=%d", len(b))

	cursor := &vmdCursor{b: b}
	modelName, err := parseVmdHeader(cursor)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeHeaderParsed,
		FileSizeBytes: len(b),
	})
	logVmdInfo("VMD読込ステップ: ヘッダ解析完了 model=%s", modelName)

	frames, err := parseVmdBoneFrames(cursor)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeFramesParsed,
		FileSizeBytes:  len(b),
		BoneFrameCount: len(frames),
	})
	logVmdInfo("VMD読込ステップ: ボーンフレーム解析完了 frames=%d", len(frames))

	if err := skipVmdTailSections(cursor); err != nil {
		return nil, err
	}

	animation, err := buildRawAnimation(r.InferName(path), frames, skeleton)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:           LoadProgressEventTypeCompleted,
		FileSizeBytes:  len(b),
		BoneFrameCount: len(frames),
		TrackCount:     len(animation.Tracks),
		KeyCount:       animation.TotalKeys(),
	})
	logVmdInfo("VMD読込完了: file=%s joints=%d keys=%d duration=%.3f",
		loadTargetName, len(animation.Tracks), animation.TotalKeys(), animation.Duration)
	return animation, nil
}

// Save はアニメーションをVMDとして書き出す。移動と回転のキー時刻は
// ボーンフレーム単位に統合し、補間は線形として出力する。
func (r *VmdRepository) Save(path string, animation *motion.RawAnimation, skeleton *motion.Skeleton, options moutput.SaveOptions) error {
	if !r.CanSave(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if animation == nil {
		return fmt.Errorf("保存対象アニメーションが未設定です")
	}

	modelName := options.ModelName
	if modelName == "" {
		modelName = animation.Name
	}

	frames := buildVmdBoneFrames(animation, skeleton)

	b := make([]byte, 0, vmdHeaderLength+vmdModelNameLength+4+len(frames)*vmdBoneFrameLength+20)
	b = appendVmdHeader(b, modelName)
	b = appendUint32(b, uint32(len(frames)))
	interpolation := defaultBoneInterpolation()
	for i := range frames {
		b = appendVmdBoneFrame(b, &frames[i], interpolation)
	}
	// モーフ・カメラ・照明・セルフ影・IKの各セクションは空で出力する。
	for i := 0; i < 5; i++ {
		b = appendUint32(b, 0)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return io_common.NewIoWriteFailed(path, err)
	}
	logVmdInfo("VMD保存完了: file=%s frames=%d bytes=%d", filepath.Base(path), len(frames), len(b))
	return nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *VmdRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// vmdBoneFrame はVMDボーンフレーム1件分を表す。
type vmdBoneFrame struct {
	name     string
	frame    uint32
	position mmath.Vec3
	rotation mmath.Quaternion
}

// parseVmdHeader はヘッダを解析して対象モデル名を返す。
func parseVmdHeader(cursor *vmdCursor) (string, error) {
	header := cursor.next(vmdHeaderLength, "header")
	if cursor.err != nil {
		return "", cursor.err
	}
	if !bytes.HasPrefix(header, []byte(vmdSignature)) {
		if bytes.HasPrefix(header, []byte(vmdSignatureV1)) {
			return "", io_common.NewIoFormatNotSupported("旧形式のVMDには対応していません", nil)
		}
		return "", io_common.NewIoParseFailed("VMDシグネチャが不正です", nil)
	}
	nameBytes := cursor.next(vmdModelNameLength, "model name")
	if cursor.err != nil {
		return "", cursor.err
	}
	modelName, err := decodeShiftJISName(nameBytes)
	if err != nil {
		return "", io_common.NewIoParseFailed("モデル名のShift-JIS解釈に失敗しました", err)
	}
	return modelName, nil
}

// parseVmdBoneFrames はボーンフレーム一覧を解析する。
func parseVmdBoneFrames(cursor *vmdCursor) ([]vmdBoneFrame, error) {
	count := int(cursor.uint32("bone frame count"))
	if cursor.err != nil {
		return nil, cursor.err
	}
	if count > cursor.remaining()/vmdBoneFrameLength {
		return nil, io_common.NewIoParseFailed("ボーンフレーム数が不正です: count=%d remaining=%d",
			nil, count, cursor.remaining())
	}
	frames := make([]vmdBoneFrame, 0, count)
	for i := 0; i < count; i++ {
		nameBytes := cursor.next(vmdBoneNameLength, "bone name")
		frame := cursor.uint32("bone frame number")
		x := cursor.float32("bone position x")
		y := cursor.float32("bone position y")
		z := cursor.float32("bone position z")
		qx := cursor.float32("bone rotation x")
		qy := cursor.float32("bone rotation y")
		qz := cursor.float32("bone rotation z")
		qw := cursor.float32("bone rotation w")
		cursor.next(vmdInterpolationLength, "bone interpolation")
		if cursor.err != nil {
			return nil, cursor.err
		}
		name, err := decodeShiftJISName(nameBytes)
		if err != nil {
			return nil, io_common.NewIoParseFailed("ボーン名のShift-JIS解釈に失敗しました: index=%d", err, i)
		}
		frames = append(frames, vmdBoneFrame{
			name:  name,
			frame: frame,
			position: mmath.Vec3{Vec: r3.Vec{
				X: float64(x), Y: float64(y), Z: float64(z),
			}},
			rotation: mmath.NewQuaternionByValues(
				float64(qx), float64(qy), float64(qz), float64(qw)).Normalized(),
		})
	}
	return frames, nil
}

// skipVmdTailSections はボーンフレーム以降のセクションを読み飛ばす。
// 古い書き出しツールは末尾セクションを省略するため、残量0での打ち切りは正常とする。
func skipVmdTailSections(cursor *vmdCursor) error {
	fixed := []struct {
		label string
		size  int
	}{
		{"モーフフレーム", vmdMorphFrameLength},
		{"カメラフレーム", vmdCameraFrameLength},
		{"照明フレーム", vmdLightFrameLength},
		{"セルフ影フレーム", vmdShadowFrameLength},
	}
	for _, section := range fixed {
		if cursor.remaining() == 0 {
			return nil
		}
		count := int(cursor.uint32(section.label))
		if cursor.err != nil {
			return cursor.err
		}
		if count > 0 {
			logVmdInfo("VMD読込: %sを%d件読み飛ばします", section.label, count)
		}
		cursor.next(count*section.size, section.label)
		if cursor.err != nil {
			return cursor.err
		}
	}

	if cursor.remaining() == 0 {
		return nil
	}
	ikFrameCount := int(cursor.uint32("IK有効フレーム"))
	if cursor.err != nil {
		return cursor.err
	}
	if ikFrameCount > 0 {
		logVmdInfo("VMD読込: IK有効フレームを%d件読み飛ばします", ikFrameCount)
	}
	for i := 0; i < ikFrameCount; i++ {
		cursor.next(4+1, "IK有効フレーム")
		boneCount := int(cursor.uint32("IK有効ボーン数"))
		if cursor.err != nil {
			return cursor.err
		}
		cursor.next(boneCount*(vmdIkBoneNameLength+1), "IK有効ボーン")
		if cursor.err != nil {
			return cursor.err
		}
	}
	if cursor.remaining() > 0 {
		logVmdWarn("VMD読込: 末尾に未解釈のデータが%dバイト残っています", cursor.remaining())
	}
	return nil
}

// buildRawAnimation はボーンフレーム一覧を骨格の関節順トラックへ組み立てる。
func buildRawAnimation(name string, frames []vmdBoneFrame, skeleton *motion.Skeleton) (*motion.RawAnimation, error) {
	jointIndexes := make(map[string]int, skeleton.JointCount())
	for i := range skeleton.Joints {
		jointIndexes[skeleton.Joints[i].Name] = i
	}

	perJoint := make([][]vmdBoneFrame, skeleton.JointCount())
	unknown := map[string]int{}
	for _, frame := range frames {
		index, ok := jointIndexes[frame.name]
		if !ok {
			unknown[frame.name]++
			continue
		}
		perJoint[index] = append(perJoint[index], frame)
	}
	warnings := make([]motion.Warning, 0, len(unknown))
	for _, boneName := range sortedStringKeys(unknown) {
		logVmdWarn("VMD読込: 骨格に存在しないボーンを読み飛ばします: name=%s frames=%d",
			boneName, unknown[boneName])
		warnings = append(warnings, motion.Warning{
			ID:     motion.WarningUnknownJointDropped,
			Joint:  boneName,
			Detail: fmt.Sprintf("%dフレーム", unknown[boneName]),
		})
	}

	tracks := make([]motion.JointTrack, skeleton.JointCount())
	maxTime := 0.0
	duplicates := 0
	for i := range tracks {
		tracks[i].Name = skeleton.Joints[i].Name
		jointFrames := perJoint[i]
		sort.SliceStable(jointFrames, func(a, b int) bool {
			return jointFrames[a].frame < jointFrames[b].frame
		})
		for k := range jointFrames {
			frame := &jointFrames[k]
			if k > 0 && jointFrames[k-1].frame == frame.frame {
				// 同一フレーム番号は後勝ちで上書きする。
				duplicates++
				last := len(tracks[i].Translations) - 1
				tracks[i].Translations[last].Value = frame.position
				tracks[i].Rotations[last].Value = frame.rotation
				continue
			}
			time := float64(frame.frame) / vmdFps
			tracks[i].Translations = append(tracks[i].Translations,
				motion.TranslationKey{Time: time, Value: frame.position})
			tracks[i].Rotations = append(tracks[i].Rotations,
				motion.RotationKey{Time: time, Value: frame.rotation})
			if time > maxTime {
				maxTime = time
			}
		}
	}
	if duplicates > 0 {
		logVmdWarn("VMD読込: 同一フレーム番号の重複を%d件上書きしました", duplicates)
		warnings = append(warnings, motion.Warning{
			ID:     motion.WarningDuplicateFrameOverwritten,
			Detail: fmt.Sprintf("%d件", duplicates),
		})
	}

	duration := maxTime
	if duration <= 0 {
		duration = 1.0 / vmdFps
	}
	animation := &motion.RawAnimation{Name: name, Duration: duration, Tracks: tracks, Warnings: warnings}
	if err := animation.Validate(); err != nil {
		return nil, io_common.NewIoParseFailed("VMDから構築したアニメーションが不正です", err)
	}
	return animation, nil
}

// buildVmdBoneFrames はトラック別のキー列をボーンフレーム一覧へ統合する。
func buildVmdBoneFrames(animation *motion.RawAnimation, skeleton *motion.Skeleton) []vmdBoneFrame {
	frames := make([]vmdBoneFrame, 0, animation.TotalKeys())
	collisions := 0
	for i := range animation.Tracks {
		track := &animation.Tracks[i]
		boneName := track.Name
		if boneName == "" && skeleton != nil && i < len(skeleton.Joints) {
			boneName = skeleton.Joints[i].Name
		}
		if len(track.Scales) > 0 {
			logVmdWarn("VMD保存: 拡縮トラックはVMDでは保存できないため破棄します: joint=%s keys=%d",
				boneName, len(track.Scales))
		}

		lastFrame := uint32(0)
		for k, time := range unionKeyTimes(track) {
			frameNumber := uint32(math.Round(time * vmdFps))
			if k > 0 && frameNumber <= lastFrame {
				// 丸めで同一フレームへ衝突したキーは先勝ちで捨てる。
				collisions++
				continue
			}
			frames = append(frames, vmdBoneFrame{
				name:     boneName,
				frame:    frameNumber,
				position: motion.SampleTranslation(track.Translations, time),
				rotation: motion.SampleRotation(track.Rotations, time),
			})
			lastFrame = frameNumber
		}
	}
	if collisions > 0 {
		logVmdWarn("VMD保存: フレーム番号が衝突したキーを%d件捨てました", collisions)
	}
	return frames
}

// unionKeyTimes は移動と回転のキー時刻を統合した昇順一覧を返す。
func unionKeyTimes(track *motion.JointTrack) []float64 {
	times := make([]float64, 0, len(track.Translations)+len(track.Rotations))
	for _, key := range track.Translations {
		times = append(times, key.Time)
	}
	for _, key := range track.Rotations {
		times = append(times, key.Time)
	}
	sort.Float64s(times)
	unique := times[:0]
	for i, time := range times {
		if i == 0 || time != unique[len(unique)-1] {
			unique = append(unique, time)
		}
	}
	return unique
}

// appendVmdHeader はシグネチャと対象モデル名を書き足す。
func appendVmdHeader(b []byte, modelName string) []byte {
	header := make([]byte, vmdHeaderLength)
	copy(header, vmdSignature)
	b = append(b, header...)

	encoded, truncated := encodeShiftJISName(modelName, vmdModelNameLength)
	if truncated {
		logVmdWarn("VMD保存: モデル名が長すぎるため切り詰めます: name=%s", modelName)
	}
	return append(b, encoded...)
}

// appendVmdBoneFrame はボーンフレーム1件分を書き足す。
func appendVmdBoneFrame(b []byte, frame *vmdBoneFrame, interpolation [vmdInterpolationLength]byte) []byte {
	encoded, truncated := encodeShiftJISName(frame.name, vmdBoneNameLength)
	if truncated {
		logVmdWarn("VMD保存: ボーン名が長すぎるため切り詰めます: name=%s", frame.name)
	}
	b = append(b, encoded...)
	b = appendUint32(b, frame.frame)
	b = appendFloat32(b, frame.position.X)
	b = appendFloat32(b, frame.position.Y)
	b = appendFloat32(b, frame.position.Z)
	b = appendFloat32(b, frame.rotation.X())
	b = appendFloat32(b, frame.rotation.Y())
	b = appendFloat32(b, frame.rotation.Z())
	b = appendFloat32(b, frame.rotation.W)
	return append(b, interpolation[:]...)
}

// sortedStringKeys はマップのキーを昇順で返す。
func sortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// logVmdInfo はVMD入出力のINFOログを出力する。
func logVmdInfo(format string, params ...any) {
	logging.DefaultLogger().Info(format, params...)
}

// logVmdWarn はVMD入出力のWARNログを出力する。
func logVmdWarn(format string, params ...any) {
	logging.DefaultLogger().Warn(format, params...)
}

// moutput の契約を満たしていることを型レベルで確認する。
var (
	_ moutput.IMotionReader = (*VmdRepository)(nil)
	_ moutput.IMotionWriter = (*VmdRepository)(nil)
)
