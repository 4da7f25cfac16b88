// 指示: miu200521358
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/mmath"
	"github.com/miu200521358/mu_motion_optimizer/pkg/domain/motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	batchOutputDirMode = 0o755
	// fixtureFps は検証モーションのキー刻み(フレーム/秒)。
	fixtureFps = 30.0
	// errorBoundEpsilon は許容誤差判定の数値余裕。
	errorBoundEpsilon = 1e-9
	// valueEpsilon はJSON往復後の値比較に使う許容誤差。
	valueEpsilon = 1e-12
)

// verificationCase は合成モーション1件分の検証ケースを表す。
type verificationCase struct {
	Name      string
	Tolerance float64
	Distance  float64
	Frames    int
	// ConstantFirst は間引き前に一定値トラックを畳み込む。
	ConstantFirst bool
	// VmdOutput は保存形式をJSONではなくVMDにする。
	VmdOutput bool
	// ReductionExpected はキー数の実削減を必須とする。
	ReductionExpected bool
}

var verificationCases = []verificationCase{
	{Name: "dance_default", Tolerance: 0.01, Distance: 1.0, Frames: 301, ReductionExpected: true},
	{Name: "dance_tight", Tolerance: 0.0001, Distance: 1.0, Frames: 301},
	{Name: "dance_zero_tolerance", Tolerance: 0, Distance: 1.0, Frames: 121},
	{Name: "dance_constant_first", Tolerance: 0.01, Distance: 1.0, Frames: 121, ConstantFirst: true, ReductionExpected: true},
	{Name: "dance_vmd_output", Tolerance: 0.01, Distance: 1.0, Frames: 121, VmdOutput: true, ReductionExpected: true},
}

// batchConfig は一括検証の実行設定を表す。
type batchConfig struct {
	OutputRoot string
	DryRun     bool
	FailFast   bool
}

// verificationEntry は1ケース分の実行情報を表す。
type verificationEntry struct {
	Index        int
	Case         verificationCase
	CaseDir      string
	SkeletonPath string
	MotionPath   string
	OutputPath   string
}

// verificationResult は1ケース分の実行結果を表す。
type verificationResult struct {
	Entry    verificationEntry
	Status   string
	Duration time.Duration
	Err      error
	Detail   string
}

// main は合成モーションを使った最適化パイプラインの一括検証を実行する。
func main() {
	os.Exit(run())
}

// run は実行設定を解決して一括検証を実行し、終了コードを返す。
func run() int {
	config, err := parseBatchConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "設定解析に失敗しました: %v\n", err)
		return 2
	}
	entries := buildVerificationEntries(config.OutputRoot, verificationCases)
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "検証対象ケースがありません")
		return 2
	}

	results := executeBatchVerification(config, entries)
	printBatchSummary(results)

	for _, result := range results {
		if result.Status == "failed" {
			return 1
		}
	}
	return 0
}

// parseBatchConfig はコマンドライン引数から実行設定を構築する。
func parseBatchConfig() (batchConfig, error) {
	defaultOutputRoot, err := resolveDefaultOutputRoot()
	if err != nil {
		return batchConfig{}, err
	}
	outputRoot := flag.String("output-root", defaultOutputRoot, "検証結果の出力ルートディレクトリ")
	dryRun := flag.Bool("dry-run", false, "実検証せず、ケース一覧と出力先計画のみ表示する")
	failFast := flag.Bool("fail-fast", false, "失敗時に即時終了する")
	flag.Parse()

	trimmedOutputRoot := strings.TrimSpace(*outputRoot)
	if trimmedOutputRoot == "" {
		return batchConfig{}, errors.New("output-root が空です")
	}
	return batchConfig{
		OutputRoot: filepath.Clean(trimmedOutputRoot),
		DryRun:     *dryRun,
		FailFast:   *failFast,
	}, nil
}

// resolveDefaultOutputRoot はスクリプト配置ディレクトリ基準の既定出力先を返す。
func resolveDefaultOutputRoot() (string, error) {
	_, currentFilePath, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("実行ファイル位置を取得できません")
	}
	currentDir := filepath.Dir(currentFilePath)
	return filepath.Join(currentDir, "output"), nil
}

// buildVerificationEntries はケース定義一覧から実行エントリを生成する。
func buildVerificationEntries(outputRoot string, cases []verificationCase) []verificationEntry {
	entries := make([]verificationEntry, 0, len(cases))
	for i, c := range cases {
		safeName := sanitizePathComponent(c.Name)
		caseDir := filepath.Join(outputRoot, fmt.Sprintf("%03d_%s", i+1, safeName))
		outputExt := ".json"
		if c.VmdOutput {
			outputExt = ".vmd"
		}
		entries = append(entries, verificationEntry{
			Index:        i + 1,
			Case:         c,
			CaseDir:      caseDir,
			SkeletonPath: filepath.Join(caseDir, "skeleton.json"),
			MotionPath:   filepath.Join(caseDir, safeName+".json"),
			OutputPath:   filepath.Join(caseDir, safeName+"_mopt"+outputExt),
		})
	}
	return entries
}

// executeBatchVerification は全ケースの検証を順次実行する。
func executeBatchVerification(config batchConfig, entries []verificationEntry) []verificationResult {
	results := make([]verificationResult, 0, len(entries))
	usecase := minteractor.NewMotionOptimizeUsecase(minteractor.MotionOptimizeUsecaseDeps{
		MotionReader:   io_motion.NewMotionFormatRepository(),
		MotionWriter:   io_motion.NewMotionFormatRepository(),
		SkeletonReader: io_motion.NewSkeletonFormatRepository(),
	})

	total := len(entries)
	for _, entry := range entries {
		fmt.Printf("[%d/%d] 検証開始: case=%s tolerance=%g\n", entry.Index, total, entry.Case.Name, entry.Case.Tolerance)
		result := verifyCaseEntry(usecase, config, entry)
		results = append(results, result)
		switch result.Status {
		case "succeeded":
			fmt.Printf("[%d/%d] 検証成功: case=%s output=%s elapsed=%s\n", entry.Index, total, entry.Case.Name, entry.OutputPath, result.Duration.Round(time.Millisecond))
			if strings.TrimSpace(result.Detail) != "" {
				fmt.Printf("[%d/%d] 内訳: %s\n", entry.Index, total, result.Detail)
			}
		case "dry_run":
			fmt.Printf("[%d/%d] DRY-RUN: case=%s motion=%s output=%s\n", entry.Index, total, entry.Case.Name, entry.MotionPath, entry.OutputPath)
		default:
			fmt.Printf("[%d/%d] 検証失敗: case=%s reason=%v\n", entry.Index, total, entry.Case.Name, result.Err)
			if config.FailFast {
				return results
			}
		}
	}
	return results
}

// verifyCaseEntry は1ケース分の固定資材生成・最適化・検証を実行する。
func verifyCaseEntry(usecase *minteractor.MotionOptimizeUsecase, config batchConfig, entry verificationEntry) verificationResult {
	result := verificationResult{
		Entry:  entry,
		Status: "failed",
	}
	if config.DryRun {
		result.Status = "dry_run"
		return result
	}
	if err := os.MkdirAll(entry.CaseDir, batchOutputDirMode); err != nil {
		result.Err = fmt.Errorf("出力ディレクトリ作成に失敗しました: %w", err)
		return result
	}

	startedAt := time.Now()
	skeleton := buildFixtureSkeleton(entry.Case.Name)
	if err := writeFixtureSkeleton(entry.SkeletonPath, skeleton); err != nil {
		result.Err = fmt.Errorf("骨格の書き出しに失敗しました: %w", err)
		return result
	}
	motionRepository := io_motion.NewMotionJsonRepository()
	if err := motionRepository.Save(entry.MotionPath, buildFixtureMotion(entry.Case.Name, entry.Case.Frames), skeleton, minteractor.SaveOptions{}); err != nil {
		result.Err = fmt.Errorf("モーションの書き出しに失敗しました: %w", err)
		return result
	}
	// 正規化を挟んだ読み込み結果を比較基準にする。
	original, err := motionRepository.Load(entry.MotionPath, skeleton)
	if err != nil {
		result.Err = fmt.Errorf("モーションの読み戻しに失敗しました: %w", err)
		return result
	}

	progressCollector := newOptimizeProgressCollector()
	runResult, err := usecase.Run(minteractor.OptimizeRequest{
		InputPath:        entry.MotionPath,
		OutputPath:       entry.OutputPath,
		SkeletonPath:     entry.SkeletonPath,
		Setting:          minteractor.Setting{Tolerance: entry.Case.Tolerance, Distance: entry.Case.Distance},
		ConstantFirst:    entry.Case.ConstantFirst,
		ProgressReporter: progressCollector,
	})
	if err != nil {
		result.Err = fmt.Errorf("最適化の実行に失敗しました: %w", err)
		return result
	}
	if runResult == nil || runResult.Motion == nil {
		result.Err = errors.New("最適化結果が空です")
		return result
	}

	if err := verifyOptimizedMotion(entry.Case, skeleton, original, runResult); err != nil {
		result.Err = err
		return result
	}
	if entry.Case.VmdOutput {
		reloaded, err := io_motion.NewVmdRepository().Load(entry.OutputPath, skeleton)
		if err != nil {
			result.Err = fmt.Errorf("VMD出力の読み戻しに失敗しました: %w", err)
			return result
		}
		if reloaded.TotalKeys() == 0 {
			result.Err = errors.New("VMD出力にキーがありません")
			return result
		}
	}

	result.Status = "succeeded"
	result.Duration = time.Since(startedAt)
	result.Detail = fmt.Sprintf("keys=%d->%d %s", runResult.KeysBefore, runResult.KeysAfter, progressCollector.Summary())
	return result
}

// verifyOptimizedMotion は最適化結果が満たすべき性質を検証する。
func verifyOptimizedMotion(c verificationCase, skeleton *minteractor.SkeletonData, original *minteractor.MotionData, runResult *minteractor.OptimizeResult) error {
	optimized := runResult.Motion
	if err := optimized.Validate(); err != nil {
		return fmt.Errorf("最適化結果が不正です: %w", err)
	}
	if optimized.Duration != original.Duration {
		return fmt.Errorf("モーション長が変化しました: %f -> %f", original.Duration, optimized.Duration)
	}
	if len(optimized.Tracks) != skeleton.JointCount() {
		return fmt.Errorf("トラック数が関節数と一致しません: tracks=%d joints=%d", len(optimized.Tracks), skeleton.JointCount())
	}
	if len(optimized.Tracks) != len(original.Tracks) {
		return fmt.Errorf("トラック数が変化しました: %d -> %d", len(original.Tracks), len(optimized.Tracks))
	}
	if runResult.KeysAfter > runResult.KeysBefore {
		return fmt.Errorf("キー数が増加しました: %d -> %d", runResult.KeysBefore, runResult.KeysAfter)
	}
	if c.ReductionExpected && runResult.KeysAfter >= runResult.KeysBefore {
		return fmt.Errorf("キー数が削減されていません: %d -> %d", runResult.KeysBefore, runResult.KeysAfter)
	}
	if c.Tolerance == 0 && !c.ConstantFirst && runResult.KeysAfter != runResult.KeysBefore {
		return fmt.Errorf("許容誤差0でキー数が変化しました: %d -> %d", runResult.KeysBefore, runResult.KeysAfter)
	}

	for i := range original.Tracks {
		originalTrack := &original.Tracks[i]
		optimizedTrack := &optimized.Tracks[i]
		if optimizedTrack.Name != originalTrack.Name {
			return fmt.Errorf("トラック名が変化しました: %s -> %s", originalTrack.Name, optimizedTrack.Name)
		}
		if err := verifyTranslationChannel(originalTrack, optimizedTrack); err != nil {
			return err
		}
		if err := verifyRotationChannel(originalTrack, optimizedTrack); err != nil {
			return err
		}
	}

	// ルート関節の移動は親スケール1で評価されるため、許容誤差を直接検証できる。
	if c.Tolerance > 0 {
		rootTrack := &original.Tracks[0]
		keptTrack := &optimized.Tracks[0]
		for _, key := range rootTrack.Translations {
			sampled := motion.SampleTranslation(keptTrack.Translations, key.Time)
			if distance := sampled.Distance(key.Value); distance > c.Tolerance+errorBoundEpsilon {
				return fmt.Errorf("ルート移動誤差が許容値を超えています: joint=%s time=%f error=%g tolerance=%g",
					rootTrack.Name, key.Time, distance, c.Tolerance)
			}
		}
	}
	return nil
}

// verifyTranslationChannel は移動キー列の端点保持と部分列性を検証する。
func verifyTranslationChannel(originalTrack *motion.JointTrack, optimizedTrack *motion.JointTrack) error {
	original := originalTrack.Translations
	kept := optimizedTrack.Translations
	if len(original) == 0 {
		if len(kept) != 0 {
			return fmt.Errorf("空トラックにキーが追加されました: joint=%s", originalTrack.Name)
		}
		return nil
	}
	if len(kept) == 0 {
		return fmt.Errorf("移動キーが全て消えました: joint=%s", originalTrack.Name)
	}
	if kept[0].Time != original[0].Time || !kept[0].Value.NearEquals(original[0].Value, valueEpsilon) {
		return fmt.Errorf("先頭移動キーが保持されていません: joint=%s", originalTrack.Name)
	}
	// 一定値畳み込みは時刻0の単一キーへ置き換えるため、末尾検証から除外する。
	collapsed := len(kept) == 1 && kept[0].Time == 0
	if !collapsed {
		last := kept[len(kept)-1]
		originalLast := original[len(original)-1]
		if last.Time != originalLast.Time || !last.Value.NearEquals(originalLast.Value, valueEpsilon) {
			return fmt.Errorf("末尾移動キーが保持されていません: joint=%s", originalTrack.Name)
		}
	}

	cursor := 0
	for _, key := range kept {
		for cursor < len(original) && original[cursor].Time != key.Time {
			cursor++
		}
		if cursor >= len(original) {
			return fmt.Errorf("移動キーが入力の部分列ではありません: joint=%s time=%f", originalTrack.Name, key.Time)
		}
		if !key.Value.NearEquals(original[cursor].Value, valueEpsilon) {
			return fmt.Errorf("移動キー値が入力と一致しません: joint=%s time=%f", originalTrack.Name, key.Time)
		}
		cursor++
	}
	return nil
}

// verifyRotationChannel は回転キー列の端点保持と部分列性を検証する。
func verifyRotationChannel(originalTrack *motion.JointTrack, optimizedTrack *motion.JointTrack) error {
	original := originalTrack.Rotations
	kept := optimizedTrack.Rotations
	if len(original) == 0 {
		if len(kept) != 0 {
			return fmt.Errorf("空トラックにキーが追加されました: joint=%s", originalTrack.Name)
		}
		return nil
	}
	if len(kept) == 0 {
		return fmt.Errorf("回転キーが全て消えました: joint=%s", originalTrack.Name)
	}
	if kept[0].Time != original[0].Time || !kept[0].Value.NearEquals(original[0].Value, valueEpsilon) {
		return fmt.Errorf("先頭回転キーが保持されていません: joint=%s", originalTrack.Name)
	}
	collapsed := len(kept) == 1 && kept[0].Time == 0
	if !collapsed {
		last := kept[len(kept)-1]
		originalLast := original[len(original)-1]
		if last.Time != originalLast.Time || !last.Value.NearEquals(originalLast.Value, valueEpsilon) {
			return fmt.Errorf("末尾回転キーが保持されていません: joint=%s", originalTrack.Name)
		}
	}

	cursor := 0
	for _, key := range kept {
		for cursor < len(original) && original[cursor].Time != key.Time {
			cursor++
		}
		if cursor >= len(original) {
			return fmt.Errorf("回転キーが入力の部分列ではありません: joint=%s time=%f", originalTrack.Name, key.Time)
		}
		if !key.Value.NearEquals(original[cursor].Value, valueEpsilon) {
			return fmt.Errorf("回転キー値が入力と一致しません: joint=%s time=%f", originalTrack.Name, key.Time)
		}
		cursor++
	}
	return nil
}

// printBatchSummary は検証結果の集計を標準出力へ表示する。
func printBatchSummary(results []verificationResult) {
	succeeded := 0
	failed := 0
	dryRun := 0
	for _, result := range results {
		switch result.Status {
		case "succeeded":
			succeeded++
		case "dry_run":
			dryRun++
		default:
			failed++
		}
	}
	fmt.Printf(
		"一括検証サマリ: total=%d succeeded=%d failed=%d dry_run=%d\n",
		len(results),
		succeeded,
		failed,
		dryRun,
	)
}

// buildFixtureSkeleton は検証用の4関節チェーン骨格を生成する。
func buildFixtureSkeleton(name string) *minteractor.SkeletonData {
	return &minteractor.SkeletonData{
		Name: name,
		Joints: []motion.Joint{
			{Name: "センター", Parent: motion.ROOT_PARENT_INDEX},
			{Name: "上半身", Parent: 0},
			{Name: "首", Parent: 1},
			{Name: "頭", Parent: 2},
		},
	}
}

// buildFixtureMotion は滑らかな揺れと一定回転を混ぜた検証用モーションを生成する。
// センターは正弦波の移動と緩い旋回、上半身と頭は正弦波の傾き、首は一定回転を持つ。
func buildFixtureMotion(name string, frames int) *minteractor.MotionData {
	center := motion.JointTrack{Name: "センター"}
	upper := motion.JointTrack{Name: "上半身"}
	neck := motion.JointTrack{Name: "首"}
	head := motion.JointTrack{Name: "頭"}
	for i := 0; i < frames; i++ {
		t := float64(i) / fixtureFps
		center.Translations = append(center.Translations, motion.TranslationKey{
			Time: t,
			Value: mmath.Vec3{Vec: r3.Vec{
				X: 1.2 * math.Sin(2*math.Pi*t/4.0),
				Y: 0.4 * math.Sin(2*math.Pi*t/2.0),
			}},
		})
		center.Rotations = append(center.Rotations, motion.RotationKey{
			Time:  t,
			Value: mmath.NewQuaternionFromDegrees(0, 12.0*math.Sin(2*math.Pi*t/8.0), 0),
		})
		upper.Rotations = append(upper.Rotations, motion.RotationKey{
			Time:  t,
			Value: mmath.NewQuaternionFromDegrees(9.0*math.Sin(2*math.Pi*t/3.0), 0, 0),
		})
		neck.Rotations = append(neck.Rotations, motion.RotationKey{
			Time:  t,
			Value: mmath.NewQuaternionFromDegrees(0, 0, 4.0),
		})
		head.Rotations = append(head.Rotations, motion.RotationKey{
			Time:  t,
			Value: mmath.NewQuaternionFromDegrees(6.0*math.Sin(2*math.Pi*t/2.5), 0, 0),
		})
	}
	return &minteractor.MotionData{
		Name:     name,
		Duration: float64(frames-1) / fixtureFps,
		Tracks:   []motion.JointTrack{center, upper, neck, head},
	}
}

// writeFixtureSkeleton は骨格を読み込み側の書式に合わせてJSONで書き出す。
func writeFixtureSkeleton(path string, skeleton *minteractor.SkeletonData) error {
	type jointDocument struct {
		Name   string `json:"name"`
		Parent int    `json:"parent"`
	}
	doc := struct {
		Name   string          `json:"name"`
		Joints []jointDocument `json:"joints"`
	}{Name: skeleton.Name}
	for _, joint := range skeleton.Joints {
		doc.Joints = append(doc.Joints, jointDocument{Name: joint.Name, Parent: joint.Parent})
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// sanitizePathComponent は出力ディレクトリ/ファイル名に使えない文字を置換する。
func sanitizePathComponent(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "case"
	}
	replaced := strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		default:
			if r < 0x20 {
				return '_'
			}
			return r
		}
	}, trimmed)
	replaced = strings.Trim(replaced, " .")
	if replaced == "" {
		return "case"
	}
	return replaced
}

// optimizeProgressCollector は最適化の進捗イベントを収集する。
type optimizeProgressCollector struct {
	eventCounts map[minteractor.OptimizeProgressEventType]int
	jointCount  int
	keysBefore  int
	keysAfter   int
}

// newOptimizeProgressCollector は進捗収集器を生成する。
func newOptimizeProgressCollector() *optimizeProgressCollector {
	return &optimizeProgressCollector{
		eventCounts: map[minteractor.OptimizeProgressEventType]int{},
	}
}

// ReportOptimizeProgress は最適化の進捗イベントを収集する。
func (collector *optimizeProgressCollector) ReportOptimizeProgress(event minteractor.OptimizeProgressEvent) {
	if collector == nil {
		return
	}
	if collector.eventCounts == nil {
		collector.eventCounts = map[minteractor.OptimizeProgressEventType]int{}
	}
	collector.eventCounts[event.Type]++
	if event.JointCount > collector.jointCount {
		collector.jointCount = event.JointCount
	}
	if event.KeysBefore > collector.keysBefore {
		collector.keysBefore = event.KeysBefore
	}
	if event.KeysAfter > 0 {
		collector.keysAfter = event.KeysAfter
	}
}

// Summary は収集した進捗の要約文字列を返す。
func (collector *optimizeProgressCollector) Summary() string {
	if collector == nil || len(collector.eventCounts) == 0 {
		return ""
	}
	types := make([]string, 0, len(collector.eventCounts))
	for eventType := range collector.eventCounts {
		types = append(types, string(eventType))
	}
	sort.Strings(types)
	return fmt.Sprintf(
		"joints=%d events=%d stages=%s",
		collector.jointCount,
		len(collector.eventCounts),
		strings.Join(types, ","),
	)
}
