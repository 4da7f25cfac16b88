// 指示: miu200521358
package logging

import "sync/atomic"

// LogLevel はログ出力レベルを表す。
type LogLevel int

const (
	// LOG_LEVEL_DEBUG はデバッグレベルを表す。
	LOG_LEVEL_DEBUG LogLevel = iota
	// LOG_LEVEL_INFO は情報レベルを表す。
	LOG_LEVEL_INFO
	// LOG_LEVEL_WARN は警告レベルを表す。
	LOG_LEVEL_WARN
	// LOG_LEVEL_ERROR はエラーレベルを表す。
	LOG_LEVEL_ERROR
)

// VerboseIndex は冗長ログのチャネル種別を表す。
type VerboseIndex int

const (
	// VERBOSE_INDEX_DECIMATION は間引き判定の冗長ログチャネルを表す。
	VERBOSE_INDEX_DECIMATION VerboseIndex = iota
	// VERBOSE_INDEX_IO は入出力処理の冗長ログチャネルを表す。
	VERBOSE_INDEX_IO
)

// ILogger はログ出力の契約を表す。
type ILogger interface {
	Debug(format string, params ...any)
	Info(format string, params ...any)
	Warn(format string, params ...any)
	Error(format string, params ...any)
	SetLevel(level LogLevel)
	IsVerboseEnabled(index VerboseIndex) bool
	Verbose(index VerboseIndex, format string, params ...any)
}

var defaultLogger atomic.Pointer[ILogger]

// DefaultLogger は既定のロガーを返す。未設定のときは何も出力しないロガーを返す。
func DefaultLogger() ILogger {
	if logger := defaultLogger.Load(); logger != nil {
		return *logger
	}
	return nopInstance
}

// SetDefaultLogger は既定のロガーを差し替える。nil を渡すと無出力へ戻す。
func SetDefaultLogger(logger ILogger) {
	if logger == nil {
		defaultLogger.Store(nil)
		return
	}
	defaultLogger.Store(&logger)
}

var nopInstance ILogger = nopLogger{}

// nopLogger は何も出力しないロガー。
type nopLogger struct{}

func (nopLogger) Debug(format string, params ...any)       {}
func (nopLogger) Info(format string, params ...any)        {}
func (nopLogger) Warn(format string, params ...any)        {}
func (nopLogger) Error(format string, params ...any)       {}
func (nopLogger) SetLevel(level LogLevel)                  {}
func (nopLogger) IsVerboseEnabled(index VerboseIndex) bool { return false }
func (nopLogger) Verbose(index VerboseIndex, format string, params ...any) {
}
