// 指示: miu200521358
package io_motion

import (
	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

// MotionFormatRepository は拡張子に応じてVMDとJSONの入出力を振り分ける。
type MotionFormatRepository struct {
	vmd  *VmdRepository
	json *MotionJsonRepository
}

// NewMotionFormatRepository はMotionFormatRepositoryを生成する。
func NewMotionFormatRepository() *MotionFormatRepository {
	return &MotionFormatRepository{
		vmd:  NewVmdRepository(),
		json: NewMotionJsonRepository(),
	}
}

// Vmd はVMD入出力の実体を返す。読込進捗の購読に使う。
func (r *MotionFormatRepository) Vmd() *VmdRepository {
	return r.vmd
}

// CanLoad はいずれかの形式で読み込めるかを判定する。
func (r *MotionFormatRepository) CanLoad(path string) bool {
	return r.vmd.CanLoad(path) || r.json.CanLoad(path)
}

// CanSave はいずれかの形式で保存できるかを判定する。
func (r *MotionFormatRepository) CanSave(path string) bool {
	return r.vmd.CanSave(path) || r.json.CanSave(path)
}

// Load は拡張子に応じた形式でモーションを読み込む。
func (r *MotionFormatRepository) Load(path string, skeleton *motion.Skeleton) (*motion.RawAnimation, error) {
	switch {
	case r.vmd.CanLoad(path):
		return r.vmd.Load(path, skeleton)
	case r.json.CanLoad(path):
		return r.json.Load(path, skeleton)
	}
	return nil, io_common.NewIoExtInvalid(path, nil)
}

// Save は拡張子に応じた形式でモーションを保存する。
func (r *MotionFormatRepository) Save(path string, animation *motion.RawAnimation, skeleton *motion.Skeleton, options moutput.SaveOptions) error {
	switch {
	case r.vmd.CanSave(path):
		return r.vmd.Save(path, animation, skeleton, options)
	case r.json.CanSave(path):
		return r.json.Save(path, animation, skeleton, options)
	}
	return io_common.NewIoExtInvalid(path, nil)
}

// moutput の契約を満たしていることを型レベルで確認する。
var (
	_ moutput.IMotionReader = (*MotionFormatRepository)(nil)
	_ moutput.IMotionWriter = (*MotionFormatRepository)(nil)
)
