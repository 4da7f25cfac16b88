// 指示: miu200521358
package io_motion

import (
	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

// SkeletonFormatRepository は拡張子に応じてJSON骨格とVRM骨格の読み込みを振り分ける。
type SkeletonFormatRepository struct {
	json *SkeletonJsonRepository
	vrm  *VrmSkeletonRepository
}

// NewSkeletonFormatRepository はSkeletonFormatRepositoryを生成する。
func NewSkeletonFormatRepository() *SkeletonFormatRepository {
	return &SkeletonFormatRepository{
		json: NewSkeletonJsonRepository(),
		vrm:  NewVrmSkeletonRepository(),
	}
}

// CanLoad はいずれかの形式で読み込めるかを判定する。
func (r *SkeletonFormatRepository) CanLoad(path string) bool {
	return r.json.CanLoad(path) || r.vrm.CanLoad(path)
}

// Load は拡張子に応じた形式で骨格を読み込む。
func (r *SkeletonFormatRepository) Load(path string) (*motion.Skeleton, error) {
	switch {
	case r.json.CanLoad(path):
		return r.json.Load(path)
	case r.vrm.CanLoad(path):
		return r.vrm.Load(path)
	}
	return nil, io_common.NewIoExtInvalid(path, nil)
}

// moutput の契約を満たしていることを型レベルで確認する。
var _ moutput.ISkeletonReader = (*SkeletonFormatRepository)(nil)
