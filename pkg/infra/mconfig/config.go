// 指示: miu200521358
package mconfig

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvConfig は環境変数から読み込む実行設定を表す。
// コマンドライン引数が指定された場合はそちらが優先される。
type EnvConfig struct {
	// Tolerance は許容する位置誤差(メートル)。
	Tolerance float64 `env:"MU_MOPT_TOLERANCE" envDefault:"0.001"`
	// Distance は誤差を評価する半径(メートル)。
	Distance float64 `env:"MU_MOPT_DISTANCE" envDefault:"0.1"`
	// Workers は一括処理の並列数。0のときは既定値に従う。
	Workers int `env:"MU_MOPT_WORKERS" envDefault:"0"`
	// Verbose は間引き判定の冗長ログを有効化する。
	Verbose bool `env:"MU_MOPT_VERBOSE" envDefault:"false"`
	// RulesPath は関節別上書き規則JSONのパス。
	RulesPath string `env:"MU_MOPT_RULES"`
	// ReportPath は間引きレポート画像の出力先パス。
	ReportPath string `env:"MU_MOPT_REPORT"`
	// OutputDir は一括処理の出力先ディレクトリ。
	OutputDir string `env:"MU_MOPT_OUTPUT_DIR"`
}

// LoadEnvConfig は環境変数を解釈して実行設定を返す。
func LoadEnvConfig() (EnvConfig, error) {
	config := EnvConfig{}
	if err := env.Parse(&config); err != nil {
		return EnvConfig{}, fmt.Errorf("環境変数の解釈に失敗しました: %w", err)
	}
	return config, nil
}
