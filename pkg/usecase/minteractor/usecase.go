// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/port/moutput"
)

// outputPathSuffix は保存先を省略したときに入力ファイル名へ付ける接尾辞。
const outputPathSuffix = "_mopt"

// MotionOptimizeUsecaseDeps はモーション最適化ユースケースの依存を表す。
type MotionOptimizeUsecaseDeps struct {
	MotionReader   moutput.IMotionReader
	MotionWriter   moutput.IMotionWriter
	SkeletonReader moutput.ISkeletonReader
}

// MotionOptimizeUsecase はモーション読み込みから間引き、保存までをまとめたユースケースを表す。
type MotionOptimizeUsecase struct {
	motionReader   moutput.IMotionReader
	motionWriter   moutput.IMotionWriter
	skeletonReader moutput.ISkeletonReader
}

// NewMotionOptimizeUsecase はモーション最適化ユースケースを生成する。
func NewMotionOptimizeUsecase(deps MotionOptimizeUsecaseDeps) *MotionOptimizeUsecase {
	return &MotionOptimizeUsecase{
		motionReader:   deps.MotionReader,
		motionWriter:   deps.MotionWriter,
		skeletonReader: deps.SkeletonReader,
	}
}

// LoadSkeleton は骨格ファイルを読み込む。
func (uc *MotionOptimizeUsecase) LoadSkeleton(rep moutput.ISkeletonReader, path string) (*SkeletonData, error) {
	repo := rep
	if repo == nil {
		repo = uc.skeletonReader
	}
	if repo == nil {
		return nil, fmt.Errorf("骨格読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("骨格ファイルとして読み込めない形式です: %s", path)
	}
	return repo.Load(path)
}

// LoadMotion はモーションファイルを骨格の関節順で読み込む。
func (uc *MotionOptimizeUsecase) LoadMotion(rep moutput.IMotionReader, path string, skeleton *SkeletonData) (*MotionData, error) {
	repo := rep
	if repo == nil {
		repo = uc.motionReader
	}
	if repo == nil {
		return nil, fmt.Errorf("モーション読み込みリポジトリが設定されていません")
	}
	if !repo.CanLoad(path) {
		return nil, fmt.Errorf("モーションファイルとして読み込めない形式です: %s", path)
	}
	return repo.Load(path, skeleton)
}

// SaveMotion はモーションを保存する。
func (uc *MotionOptimizeUsecase) SaveMotion(rep moutput.IMotionWriter, path string, motionData *MotionData, skeleton *SkeletonData, opts SaveOptions) error {
	writer := rep
	if writer == nil {
		writer = uc.motionWriter
	}
	if writer == nil {
		return fmt.Errorf("モーション保存リポジトリが設定されていません")
	}
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("保存先パスが未指定です")
	}
	if motionData == nil {
		return fmt.Errorf("保存対象モーションが未設定です")
	}
	if !writer.CanSave(path) {
		return fmt.Errorf("保存できない形式です: %s", path)
	}
	return writer.Save(path, motionData, skeleton, opts)
}

// Run はモーションを読み込み、間引き、保存する。
func (uc *MotionOptimizeUsecase) Run(request OptimizeRequest) (*OptimizeResult, error) {
	if strings.TrimSpace(request.InputPath) == "" && request.MotionData == nil {
		return nil, fmt.Errorf("入力モーションパスが未指定です")
	}
	if strings.TrimSpace(request.SkeletonPath) == "" && request.SkeletonData == nil {
		return nil, fmt.Errorf("骨格パスが未指定です")
	}

	outputPath, err := resolveMotionOutputPath(request.InputPath, request.OutputPath)
	if err != nil {
		return nil, err
	}
	reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{Type: OptimizeProgressEventTypeInputValidated})

	skeleton, err := uc.resolveSkeletonData(request)
	if err != nil {
		return nil, err
	}
	reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{
		Type:       OptimizeProgressEventTypeSkeletonLoaded,
		JointCount: skeleton.JointCount(),
	})

	motionData, err := uc.resolveMotionData(request, skeleton)
	if err != nil {
		return nil, err
	}
	keysBefore := motionData.TotalKeys()
	reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{
		Type:       OptimizeProgressEventTypeMotionLoaded,
		JointCount: skeleton.JointCount(),
		KeysBefore: keysBefore,
	})

	optimized, err := uc.optimizeMotion(request, motionData, skeleton, keysBefore)
	if err != nil {
		return nil, err
	}

	if err := uc.SaveMotion(request.Writer, outputPath, optimized, skeleton, request.SaveOptions); err != nil {
		return nil, err
	}
	reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{
		Type:       OptimizeProgressEventTypeOutputSaved,
		JointCount: skeleton.JointCount(),
		KeysBefore: keysBefore,
		KeysAfter:  optimized.TotalKeys(),
	})

	return &OptimizeResult{
		Motion:     optimized,
		OutputPath: outputPath,
		KeysBefore: keysBefore,
		KeysAfter:  optimized.TotalKeys(),
	}, nil
}

// optimizeMotion は要求内容に応じて一定値畳み込みと階層間引きを実行する。
func (uc *MotionOptimizeUsecase) optimizeMotion(request OptimizeRequest, motionData *MotionData, skeleton *SkeletonData, keysBefore int) (*MotionData, error) {
	current := motionData

	if request.ConstantFirst || request.ConstantOnly {
		constantOptimizer := request.ConstantSetting
		if constantOptimizer == nil {
			constantOptimizer = NewAnimationConstantOptimizer()
		}
		collapsed, err := constantOptimizer.Optimize(current)
		if err != nil {
			return nil, fmt.Errorf("一定値トラックの畳み込みに失敗しました: %w", err)
		}
		current = collapsed
		reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{
			Type:       OptimizeProgressEventTypeConstantCollapsed,
			JointCount: skeleton.JointCount(),
			KeysBefore: keysBefore,
			KeysAfter:  current.TotalKeys(),
		})
	}

	if request.ConstantOnly {
		return current, nil
	}

	optimizer := NewAnimationOptimizer()
	optimizer.Setting = request.Setting
	optimizer.JointsSettingOverride = request.JointsSettingOverride
	optimizer.DecimationReporter = request.DecimationReporter
	optimized, err := optimizer.Optimize(current, skeleton)
	if err != nil {
		return nil, fmt.Errorf("階層間引きに失敗しました: %w", err)
	}
	reportOptimizeProgress(request.ProgressReporter, OptimizeProgressEvent{
		Type:       OptimizeProgressEventTypeJointsOptimized,
		JointCount: skeleton.JointCount(),
		KeysBefore: keysBefore,
		KeysAfter:  optimized.TotalKeys(),
	})
	return optimized, nil
}

// resolveSkeletonData は要求から骨格を解決する。
func (uc *MotionOptimizeUsecase) resolveSkeletonData(request OptimizeRequest) (*SkeletonData, error) {
	if request.SkeletonData != nil {
		if err := request.SkeletonData.Validate(); err != nil {
			return nil, fmt.Errorf("骨格が不正です: %w", err)
		}
		return request.SkeletonData, nil
	}
	return uc.LoadSkeleton(request.SkeletonReader, request.SkeletonPath)
}

// resolveMotionData は要求からモーションを解決する。
func (uc *MotionOptimizeUsecase) resolveMotionData(request OptimizeRequest, skeleton *SkeletonData) (*MotionData, error) {
	if request.MotionData != nil {
		return request.MotionData, nil
	}
	return uc.LoadMotion(request.Reader, request.InputPath, skeleton)
}

// resolveMotionOutputPath は保存先パスを解決する。未指定のときは入力パスへ接尾辞を付ける。
func resolveMotionOutputPath(inputPath string, outputPath string) (string, error) {
	resolved := strings.TrimSpace(outputPath)
	if resolved == "" {
		resolved = BuildDefaultOutputPath(inputPath)
	}
	if strings.TrimSpace(resolved) == "" {
		return "", fmt.Errorf("保存先モーションパスが未指定です")
	}
	return resolved, nil
}

// BuildDefaultOutputPath は入力パスから既定の保存先パスを組み立てる。
func BuildDefaultOutputPath(inputPath string) string {
	trimmed := strings.TrimSpace(inputPath)
	if trimmed == "" {
		return ""
	}
	ext := filepath.Ext(trimmed)
	return strings.TrimSuffix(trimmed, ext) + outputPathSuffix + ext
}
