// 指示: miu200521358
package minteractor

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
)

// defaultBatchWorkers は一括最適化の既定並列数。
const defaultBatchWorkers = 4

// batchProgressInterval は一括最適化の進捗ログ間隔。
const batchProgressInterval = 2 * time.Second

// BatchRequest は複数モーションの一括最適化要求を表す。
type BatchRequest struct {
	InputPaths   []string
	SkeletonPath string
	OutputDir    string
	Workers      int

	Setting               Setting
	JointsSettingOverride JointsSetting
	ConstantFirst         bool
	ConstantOnly          bool
	SaveOptions           SaveOptions
}

// BatchEntry は一括最適化の1件分の結果を表す。
type BatchEntry struct {
	InputPath  string   `json:"input_path"`
	OutputPath string   `json:"output_path,omitempty"`
	KeysBefore int      `json:"keys_before,omitempty"`
	KeysAfter  int      `json:"keys_after,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// RunBatch は複数モーションを並列に最適化する。並列化はファイル単位で、
// 1件分の最適化は直列に実行する。個々の失敗はエントリへ記録し、処理は続行する。
func (uc *MotionOptimizeUsecase) RunBatch(request BatchRequest) ([]BatchEntry, error) {
	if len(request.InputPaths) == 0 {
		return nil, fmt.Errorf("入力モーションが1件も指定されていません")
	}
	if strings.TrimSpace(request.OutputDir) == "" {
		return nil, fmt.Errorf("出力ディレクトリが未指定です")
	}

	skeleton, err := uc.LoadSkeleton(nil, request.SkeletonPath)
	if err != nil {
		return nil, fmt.Errorf("骨格の読み込みに失敗しました: %w", err)
	}

	workers := request.Workers
	if workers <= 0 {
		workers = defaultBatchWorkers
	}

	total := len(request.InputPaths)
	entries := make([]BatchEntry, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(batchProgressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				count := processed.Load()
				if count > 0 {
					elapsed := time.Since(start).Seconds()
					logging.DefaultLogger().Info("一括最適化 進捗: %d/%d (%.1f 件/秒)",
						count, total, float64(count)/elapsed)
				}
			}
		}
	}()

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				entries[index] = uc.runBatchEntry(request, skeleton, request.InputPaths[index])
				processed.Add(1)
			}
		}()
	}

	for i := range request.InputPaths {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return entries, nil
}

// runBatchEntry は一括最適化の1件分を実行する。
func (uc *MotionOptimizeUsecase) runBatchEntry(request BatchRequest, skeleton *SkeletonData, inputPath string) BatchEntry {
	entry := BatchEntry{InputPath: inputPath}

	outputPath := filepath.Join(request.OutputDir, filepath.Base(BuildDefaultOutputPath(inputPath)))
	result, err := uc.Run(OptimizeRequest{
		InputPath:             inputPath,
		OutputPath:            outputPath,
		SkeletonData:          skeleton,
		SaveOptions:           request.SaveOptions,
		Setting:               request.Setting,
		JointsSettingOverride: request.JointsSettingOverride,
		ConstantFirst:         request.ConstantFirst,
		ConstantOnly:          request.ConstantOnly,
	})
	if err != nil {
		entry.Error = err.Error()
		return entry
	}

	entry.OutputPath = result.OutputPath
	entry.KeysBefore = result.KeysBefore
	entry.KeysAfter = result.KeysAfter
	for _, warning := range result.Motion.Warnings {
		entry.Warnings = append(entry.Warnings, warning.ID)
	}
	return entry
}
