// 指示: miu200521358
package moutput

import "github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"

// SaveOptions は保存時オプションを表す。
type SaveOptions struct {
	// ModelName は保存先フォーマットのヘッダーへ書き込む対象モデル名。
	ModelName string
}

// IMotionReader はモーション読み込みの契約を表す。
type IMotionReader interface {
	// CanLoad はパスが読み込み可能な形式かを返す。
	CanLoad(path string) bool
	// Load は骨格の関節順に合わせてモーションを読み込む。
	Load(path string, skeleton *motion.Skeleton) (*motion.RawAnimation, error)
}

// IMotionWriter はモーション保存の契約を表す。
type IMotionWriter interface {
	// CanSave はパスが保存可能な形式かを返す。
	CanSave(path string) bool
	// Save は骨格の関節順のモーションを書き出す。
	Save(path string, animation *motion.RawAnimation, skeleton *motion.Skeleton, options SaveOptions) error
}

// ISkeletonReader は骨格読み込みの契約を表す。
type ISkeletonReader interface {
	// CanLoad はパスが読み込み可能な形式かを返す。
	CanLoad(path string) bool
	// Load は骨格を読み込む。
	Load(path string) (*motion.Skeleton, error)
}
