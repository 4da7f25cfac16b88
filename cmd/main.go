// 指示: miu200521358
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_motion"
	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/mpresenter/messages"
	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/mreport"
	"github.com/miu200521358/mu_motion_optimizer/pkg/infra/mconfig"
	"github.com/miu200521358/mu_motion_optimizer/pkg/infra/mlogging"
	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
	"github.com/miu200521358/mu_motion_optimizer/pkg/usecase/minteractor"
)

// options はCLI引数を保持する。
type options struct {
	inputPaths    []string
	outputPath    string
	skeletonPath  string
	tolerance     float64
	distance      float64
	rulesPath     string
	reportPath    string
	constantFirst bool
	constantOnly  bool
	outputDir     string
	manifestPath  string
	modelName     string
	workers       int
	verbose       bool
}

// main はモーションのキーフレーム最適化を実行する。
func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run はCLI処理全体を実行する。
func run(args []string, out io.Writer, errOut io.Writer) error {
	envConfig, err := mconfig.LoadEnvConfig()
	if err != nil {
		return err
	}
	opts, err := parseOptions(args, errOut, envConfig)
	if err != nil {
		return err
	}

	logger := mlogging.NewLogger(errOut)
	if opts.verbose {
		logger.EnableVerbose(logging.VERBOSE_INDEX_DECIMATION)
		logger.EnableVerbose(logging.VERBOSE_INDEX_IO)
	}
	logging.SetDefaultLogger(logger)
	defer logging.SetDefaultLogger(nil)

	motionRepository := io_motion.NewMotionFormatRepository()
	skeletonRepository := io_motion.NewSkeletonFormatRepository()
	uc := minteractor.NewMotionOptimizeUsecase(minteractor.MotionOptimizeUsecaseDeps{
		MotionReader:   motionRepository,
		MotionWriter:   motionRepository,
		SkeletonReader: skeletonRepository,
	})

	setting := minteractor.Setting{Tolerance: opts.tolerance, Distance: opts.distance}
	if err := setting.Validate(); err != nil {
		return err
	}

	skeleton, err := uc.LoadSkeleton(nil, opts.skeletonPath)
	if err != nil {
		return fmt.Errorf("骨格の読み込みに失敗しました: %w", err)
	}

	overrides := minteractor.JointsSetting{}
	if opts.rulesPath != "" {
		ruleSet, err := mconfig.LoadJointRules(opts.rulesPath)
		if err != nil {
			return err
		}
		overrides, err = mconfig.BuildJointOverrides(ruleSet, skeleton, setting)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, messages.MessageRulesApplied+"\n", len(overrides))
	}

	if len(opts.inputPaths) > 1 || opts.outputDir != "" {
		return runBatch(uc, opts, setting, overrides, out)
	}
	return runSingle(uc, opts, setting, overrides, skeleton, out)
}

// runSingle は1件のモーションを最適化する。
func runSingle(uc *minteractor.MotionOptimizeUsecase, opts options, setting minteractor.Setting,
	overrides minteractor.JointsSetting, skeleton *minteractor.SkeletonData, out io.Writer) error {
	inputPath := opts.inputPaths[0]

	outputPath := opts.outputPath
	if outputPath == "" {
		outputPath = minteractor.BuildDefaultOutputPath(inputPath)
	}
	if err := ensureOutputDir(outputPath); err != nil {
		return err
	}

	var recorder *mreport.RecordingDecimationReporter
	var reporter minteractor.IDecimationReporter = mreport.NewLogDecimationReporter()
	if opts.reportPath != "" {
		recorder = mreport.NewRecordingDecimationReporter()
		reporter = mreport.NewCompositeDecimationReporter(recorder, reporter)
	}

	fmt.Fprintf(out, messages.MessageOptimizeStart+"\n", inputPath)
	result, err := uc.Run(minteractor.OptimizeRequest{
		InputPath:             inputPath,
		OutputPath:            outputPath,
		SkeletonData:          skeleton,
		SaveOptions:           minteractor.SaveOptions{ModelName: opts.modelName},
		Setting:               setting,
		JointsSettingOverride: overrides,
		ConstantFirst:         opts.constantFirst,
		ConstantOnly:          opts.constantOnly,
		DecimationReporter:    reporter,
	})
	if err != nil {
		return fmt.Errorf("最適化に失敗しました: %w", err)
	}
	for _, warning := range result.Motion.Warnings {
		fmt.Fprintf(out, messages.MessageWarningLine+"\n", messages.WarningText(warning))
	}
	fmt.Fprintf(out, messages.MessageOptimizeComplete+"\n",
		result.OutputPath, result.KeysBefore, result.KeysAfter)

	if opts.reportPath != "" {
		if err := ensureOutputDir(opts.reportPath); err != nil {
			return err
		}
		img := mreport.RenderDecimationChart(recorder.Steps(), mreport.ChartOptions{})
		if err := mreport.SaveChartImage(opts.reportPath, img); err != nil {
			return fmt.Errorf("レポート画像の保存に失敗しました: %w", err)
		}
		fmt.Fprintf(out, messages.MessageReportSaved+"\n", opts.reportPath)
	}
	return nil
}

// runBatch は複数のモーションを一括で最適化する。
func runBatch(uc *minteractor.MotionOptimizeUsecase, opts options, setting minteractor.Setting,
	overrides minteractor.JointsSetting, out io.Writer) error {
	if opts.outputDir == "" {
		return fmt.Errorf("一括最適化には出力先ディレクトリを指定してください (-out-dir)")
	}
	if err := os.MkdirAll(opts.outputDir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}

	fmt.Fprintf(out, messages.MessageBatchStart+"\n", len(opts.inputPaths))
	entries, err := uc.RunBatch(minteractor.BatchRequest{
		InputPaths:            opts.inputPaths,
		SkeletonPath:          opts.skeletonPath,
		OutputDir:             opts.outputDir,
		Workers:               opts.workers,
		Setting:               setting,
		JointsSettingOverride: overrides,
		ConstantFirst:         opts.constantFirst,
		ConstantOnly:          opts.constantOnly,
		SaveOptions:           minteractor.SaveOptions{ModelName: opts.modelName},
	})
	if err != nil {
		return fmt.Errorf("一括最適化に失敗しました: %w", err)
	}

	failed := 0
	for _, entry := range entries {
		if entry.Error != "" {
			failed++
			fmt.Fprintf(out, messages.MessageBatchEntryFailed+"\n", entry.InputPath, entry.Error)
		}
	}
	fmt.Fprintf(out, messages.MessageBatchComplete+"\n", len(entries)-failed, failed)

	if opts.manifestPath != "" {
		if err := writeBatchManifest(opts.manifestPath, entries); err != nil {
			return err
		}
		fmt.Fprintf(out, messages.MessageManifestSaved+"\n", opts.manifestPath)
	}
	if failed > 0 {
		return fmt.Errorf("一括最適化で %d 件失敗しました", failed)
	}
	return nil
}

// writeBatchManifest は一括最適化の結果一覧をJSONで保存する。
func writeBatchManifest(path string, entries []minteractor.BatchEntry) error {
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("一括結果の組み立てに失敗しました: %w", err)
	}
	if err := ensureOutputDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("一括結果の保存に失敗しました: %w", err)
	}
	return nil
}

// parseOptions はCLI引数を解析する。環境変数の設定値は各フラグの既定値になる。
func parseOptions(args []string, errOut io.Writer, envConfig mconfig.EnvConfig) (options, error) {
	fs := flag.NewFlagSet("mu_motion_optimizer", flag.ContinueOnError)
	fs.SetOutput(errOut)

	in := fs.String("i", "", "入力モーションパス (.vmd / .json)。位置引数でも複数指定できる")
	outPath := fs.String("o", "", "出力モーションパス (単体実行のみ)")
	skeletonPath := fs.String("s", "", "骨格パス (.json / .vrm)")
	tolerance := fs.Float64("tolerance", envConfig.Tolerance, "許容する位置誤差(メートル)")
	distance := fs.Float64("distance", envConfig.Distance, "誤差を評価する半径(メートル)")
	rulesPath := fs.String("rules", envConfig.RulesPath, "関節別上書き規則JSONのパス")
	reportPath := fs.String("report", envConfig.ReportPath, "間引きレポート画像の出力先 (.png / .webp / .tga)")
	constantFirst := fs.Bool("constant", false, "階層間引きの前に一定値トラックを畳み込む")
	constantOnly := fs.Bool("constant-only", false, "一定値トラックの畳み込みのみを行う")
	outputDir := fs.String("out-dir", envConfig.OutputDir, "一括最適化の出力先ディレクトリ")
	manifestPath := fs.String("manifest", "", "一括最適化結果JSONの出力先")
	modelName := fs.String("model-name", "", "保存時に書き込む対象モデル名")
	workers := fs.Int("workers", envConfig.Workers, "一括最適化の並列数 (0=既定)")
	verbose := fs.Bool("verbose", envConfig.Verbose, "間引き判定の冗長ログを有効化する")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	inputPaths := []string{}
	if *in != "" {
		inputPaths = append(inputPaths, *in)
	}
	inputPaths = append(inputPaths, fs.Args()...)
	if len(inputPaths) == 0 {
		return options{}, fmt.Errorf("入力モーションを指定してください (-i)")
	}
	if *skeletonPath == "" {
		return options{}, fmt.Errorf("骨格ファイルを指定してください (-s)")
	}
	if len(inputPaths) > 1 && *outPath != "" {
		return options{}, fmt.Errorf("複数入力では -o は使えません (-out-dir を指定してください)")
	}

	return options{
		inputPaths:    inputPaths,
		outputPath:    *outPath,
		skeletonPath:  *skeletonPath,
		tolerance:     *tolerance,
		distance:      *distance,
		rulesPath:     *rulesPath,
		reportPath:    *reportPath,
		constantFirst: *constantFirst,
		constantOnly:  *constantOnly,
		outputDir:     *outputDir,
		manifestPath:  *manifestPath,
		modelName:     *modelName,
		workers:       *workers,
		verbose:       *verbose,
	}, nil
}

// ensureOutputDir は出力先ディレクトリを作成する。
func ensureOutputDir(outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("出力先ディレクトリの作成に失敗しました: %w", err)
	}
	return nil
}
