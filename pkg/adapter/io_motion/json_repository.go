// 指示: miu200521358
package io_motion

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
	"gonum.org/v1/gonum/spatial/r3"
)

// jsonMotionDocument はJSONモーションファイルのルート構造を表す。
type jsonMotionDocument struct {
	Name      string           `json:"name"`
	ModelName string           `json:"model_name,omitempty"`
	Duration  float64          `json:"duration"`
	Tracks    []jsonJointTrack `json:"tracks"`
}

// jsonJointTrack は1関節分のキー列を表す。
type jsonJointTrack struct {
	Name         string              `json:"name"`
	Translations []jsonVectorKey     `json:"translations,omitempty"`
	Rotations    []jsonQuaternionKey `json:"rotations,omitempty"`
	Scales       []jsonVectorKey     `json:"scales,omitempty"`
}

// jsonVectorKey は時刻と3次元値の組を表す。
type jsonVectorKey struct {
	Time  float64    `json:"time"`
	Value [3]float64 `json:"value"`
}

// jsonQuaternionKey は時刻と四元数値(x, y, z, w)の組を表す。
type jsonQuaternionKey struct {
	Time  float64    `json:"time"`
	Value [4]float64 `json:"value"`
}

// MotionJsonRepository はJSONモーションの入出力契約を表す。
type MotionJsonRepository struct{}

// NewMotionJsonRepository はMotionJsonRepositoryを生成する。
func NewMotionJsonRepository() *MotionJsonRepository {
	return &MotionJsonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *MotionJsonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// CanSave は拡張子に応じて保存可否を判定する。
func (r *MotionJsonRepository) CanSave(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load はJSONモーションを読み込み、骨格の関節順に並んだアニメーションを返す。
// トラックは関節名で照合し、骨格に存在しない名前は読み飛ばす。
func (r *MotionJsonRepository) Load(path string, skeleton *motion.Skeleton) (*motion.RawAnimation, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}
	if skeleton == nil {
		return nil, fmt.Errorf("骨格が未設定です")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("JSONモーションの読み取りに失敗しました", err)
	}

	doc := jsonMotionDocument{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, io_common.NewIoParseFailed("JSONモーションの解析に失敗しました", err)
	}

	trackIndexes := make(map[string]int, len(doc.Tracks))
	duplicateNames := []string{}
	for i := range doc.Tracks {
		if _, exists := trackIndexes[doc.Tracks[i].Name]; exists {
			duplicateNames = append(duplicateNames, doc.Tracks[i].Name)
		}
		// 同名トラックは後の定義で上書きする。
		trackIndexes[doc.Tracks[i].Name] = i
	}
	matched := make(map[string]bool, len(doc.Tracks))

	tracks := make([]motion.JointTrack, skeleton.JointCount())
	for i := range tracks {
		jointName := skeleton.Joints[i].Name
		tracks[i].Name = jointName
		docIndex, ok := trackIndexes[jointName]
		if !ok {
			continue
		}
		matched[jointName] = true
		docTrack := &doc.Tracks[docIndex]
		for _, key := range docTrack.Translations {
			tracks[i].Translations = append(tracks[i].Translations, motion.TranslationKey{
				Time:  key.Time,
				Value: mmath.Vec3{Vec: r3.Vec{X: key.Value[0], Y: key.Value[1], Z: key.Value[2]}},
			})
		}
		for _, key := range docTrack.Rotations {
			tracks[i].Rotations = append(tracks[i].Rotations, motion.RotationKey{
				Time:  key.Time,
				Value: mmath.NewQuaternionByValues(key.Value[0], key.Value[1], key.Value[2], key.Value[3]).Normalized(),
			})
		}
		for _, key := range docTrack.Scales {
			tracks[i].Scales = append(tracks[i].Scales, motion.ScaleKey{
				Time:  key.Time,
				Value: mmath.Vec3{Vec: r3.Vec{X: key.Value[0], Y: key.Value[1], Z: key.Value[2]}},
			})
		}
	}
	warnings := []motion.Warning{}
	for _, trackName := range duplicateNames {
		logVmdWarn("JSON読込: 同名トラックを後の定義で上書きしました: name=%s", trackName)
		warnings = append(warnings, motion.Warning{
			ID:    motion.WarningDuplicateTrackOverwritten,
			Joint: trackName,
		})
	}
	for i := range doc.Tracks {
		if !matched[doc.Tracks[i].Name] {
			logVmdWarn("JSON読込: 骨格に存在しないトラックを読み飛ばします: name=%s", doc.Tracks[i].Name)
			warnings = append(warnings, motion.Warning{
				ID:    motion.WarningUnknownJointDropped,
				Joint: doc.Tracks[i].Name,
			})
		}
	}

	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	animation := &motion.RawAnimation{Name: name, Duration: doc.Duration, Tracks: tracks, Warnings: warnings}
	if err := animation.Validate(); err != nil {
		return nil, io_common.NewIoParseFailed("JSONモーションの内容が不正です", err)
	}
	return animation, nil
}

// Save はアニメーションをJSONとして書き出す。
func (r *MotionJsonRepository) Save(path string, animation *motion.RawAnimation, skeleton *motion.Skeleton, options moutput.SaveOptions) error {
	if !r.CanSave(path) {
		return io_common.NewIoExtInvalid(path, nil)
	}
	if animation == nil {
		return fmt.Errorf("保存対象アニメーションが未設定です")
	}

	doc := jsonMotionDocument{
		Name:      animation.Name,
		ModelName: options.ModelName,
		Duration:  animation.Duration,
		Tracks:    make([]jsonJointTrack, 0, len(animation.Tracks)),
	}
	for i := range animation.Tracks {
		track := &animation.Tracks[i]
		name := track.Name
		if name == "" && skeleton != nil && i < len(skeleton.Joints) {
			name = skeleton.Joints[i].Name
		}
		docTrack := jsonJointTrack{Name: name}
		for _, key := range track.Translations {
			docTrack.Translations = append(docTrack.Translations, jsonVectorKey{
				Time:  key.Time,
				Value: [3]float64{key.Value.X, key.Value.Y, key.Value.Z},
			})
		}
		for _, key := range track.Rotations {
			docTrack.Rotations = append(docTrack.Rotations, jsonQuaternionKey{
				Time:  key.Time,
				Value: [4]float64{key.Value.X(), key.Value.Y(), key.Value.Z(), key.Value.W},
			})
		}
		for _, key := range track.Scales {
			docTrack.Scales = append(docTrack.Scales, jsonVectorKey{
				Time:  key.Time,
				Value: [3]float64{key.Value.X, key.Value.Y, key.Value.Z},
			})
		}
		doc.Tracks = append(doc.Tracks, docTrack)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return io_common.NewIoParseFailed("JSONモーションの組み立てに失敗しました", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return io_common.NewIoWriteFailed(path, err)
	}
	return nil
}

// moutput の契約を満たしていることを型レベルで確認する。
var (
	_ moutput.IMotionReader = (*MotionJsonRepository)(nil)
	_ moutput.IMotionWriter = (*MotionJsonRepository)(nil)
)
