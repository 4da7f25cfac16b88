// 指示: miu200521358
package io_motion

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

// jsonSkeletonDocument はJSON骨格ファイルのルート構造を表す。
// 親を持たない関節は parent へ -1 を明示する。
type jsonSkeletonDocument struct {
	Name   string      `json:"name"`
	Joints []jsonJoint `json:"joints"`
}

// jsonJoint は関節1件分を表す。
type jsonJoint struct {
	Name   string `json:"name"`
	Parent int    `json:"parent"`
}

// SkeletonJsonRepository はJSON骨格の読み込み契約を表す。
type SkeletonJsonRepository struct{}

// NewSkeletonJsonRepository はSkeletonJsonRepositoryを生成する。
func NewSkeletonJsonRepository() *SkeletonJsonRepository {
	return &SkeletonJsonRepository{}
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *SkeletonJsonRepository) CanLoad(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Load はJSON骨格を読み込む。関節は親が先に並ぶ順序でなければならない。
func (r *SkeletonJsonRepository) Load(path string) (*motion.Skeleton, error) {
	if !r.CanLoad(path) {
		return nil, io_common.NewIoExtInvalid(path, nil)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, io_common.NewIoFileNotFound(path, err)
		}
		return nil, io_common.NewIoParseFailed("JSON骨格の読み取りに失敗しました", err)
	}

	doc := jsonSkeletonDocument{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, io_common.NewIoParseFailed("JSON骨格の解析に失敗しました", err)
	}

	name := doc.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	joints := make([]motion.Joint, 0, len(doc.Joints))
	for _, joint := range doc.Joints {
		joints = append(joints, motion.Joint{Name: joint.Name, Parent: joint.Parent})
	}
	skeleton := &motion.Skeleton{Name: name, Joints: joints}
	if err := skeleton.Validate(); err != nil {
		return nil, io_common.NewIoParseFailed("JSON骨格の内容が不正です", err)
	}
	logVmdInfo("骨格読込完了: file=%s joints=%d", filepath.Base(path), skeleton.JointCount())
	return skeleton, nil
}

// moutput の契約を満たしていることを型レベルで確認する。
var _ moutput.ISkeletonReader = (*SkeletonJsonRepository)(nil)
