// 指示: miu200521358
package mlogging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/miu200521358/mu_motion_optimizer/pkg/shared/base/logging"
)

// Logger は log/slog を土台にした logging.ILogger 実装。
type Logger struct {
	slogger  *slog.Logger
	levelVar *slog.LevelVar

	mu      sync.Mutex
	verbose map[logging.VerboseIndex]bool
	buffer  *MessageBuffer
}

// NewLogger はロガーを生成する。writer が nil のときは標準エラー出力へ書き込む。
func NewLogger(writer io.Writer) *Logger {
	if writer == nil {
		writer = os.Stderr
	}
	levelVar := &slog.LevelVar{}
	levelVar.Set(slog.LevelInfo)
	return &Logger{
		slogger:  slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: levelVar})),
		levelVar: levelVar,
		verbose:  map[logging.VerboseIndex]bool{},
		buffer:   NewMessageBuffer(),
	}
}

// MessageBuffer は出力済みメッセージのバッファを返す。
func (l *Logger) MessageBuffer() *MessageBuffer {
	return l.buffer
}

// SetLevel は出力レベルを変更する。
func (l *Logger) SetLevel(level logging.LogLevel) {
	switch level {
	case logging.LOG_LEVEL_DEBUG:
		l.levelVar.Set(slog.LevelDebug)
	case logging.LOG_LEVEL_INFO:
		l.levelVar.Set(slog.LevelInfo)
	case logging.LOG_LEVEL_WARN:
		l.levelVar.Set(slog.LevelWarn)
	case logging.LOG_LEVEL_ERROR:
		l.levelVar.Set(slog.LevelError)
	}
}

// EnableVerbose は指定チャネルの冗長ログを有効化する。
func (l *Logger) EnableVerbose(index logging.VerboseIndex) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.verbose[index] = true
}

// IsVerboseEnabled は指定チャネルの冗長ログが有効かを返す。
func (l *Logger) IsVerboseEnabled(index logging.VerboseIndex) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.verbose[index]
}

// Verbose は指定チャネルが有効な場合のみ情報レベルで出力する。
func (l *Logger) Verbose(index logging.VerboseIndex, format string, params ...any) {
	if !l.IsVerboseEnabled(index) {
		return
	}
	message := fmt.Sprintf(format, params...)
	l.buffer.append("[VERBOSE] " + message)
	l.slogger.Info(message)
}

// Debug はデバッグレベルで出力する。
func (l *Logger) Debug(format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	l.buffer.append("[DEBUG] " + message)
	l.slogger.Debug(message)
}

// Info は情報レベルで出力する。
func (l *Logger) Info(format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	l.buffer.append("[INFO] " + message)
	l.slogger.Info(message)
}

// Warn は警告レベルで出力する。
func (l *Logger) Warn(format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	l.buffer.append("[WARN] " + message)
	l.slogger.Warn(message)
}

// Error はエラーレベルで出力する。
func (l *Logger) Error(format string, params ...any) {
	message := fmt.Sprintf(format, params...)
	l.buffer.append("[ERROR] " + message)
	l.slogger.Error(message)
}

// MessageBuffer は出力済みメッセージを保持するバッファ。
type MessageBuffer struct {
	mu    sync.Mutex
	lines []string
}

// NewMessageBuffer は空のバッファを生成する。
func NewMessageBuffer() *MessageBuffer {
	return &MessageBuffer{}
}

// append は1行追加する。
func (b *MessageBuffer) append(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
}

// Lines は保持中の行のコピーを返す。
func (b *MessageBuffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	copied := make([]string, len(b.lines))
	copy(copied, b.lines)
	return copied
}

// Clear は保持中の行を破棄する。
func (b *MessageBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = nil
}
