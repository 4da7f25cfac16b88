// 指示: miu200521358
package io_common

import (
	"errors"
	"fmt"
)

// 入出力エラーの分類。errors.Is で判別できる。
var (
	// ErrExtInvalid は対応していない拡張子を表す。
	ErrExtInvalid = errors.New("拡張子が不正です")
	// ErrFileNotFound は入力ファイルの不存在を表す。
	ErrFileNotFound = errors.New("ファイルが見つかりません")
	// ErrParseFailed は入力内容の解析失敗を表す。
	ErrParseFailed = errors.New("解析に失敗しました")
	// ErrFormatNotSupported は対応していない形式を表す。
	ErrFormatNotSupported = errors.New("未対応の形式です")
	// ErrWriteFailed は出力の書き込み失敗を表す。
	ErrWriteFailed = errors.New("書き込みに失敗しました")
)

// ioError は分類と詳細を持つ入出力エラーを表す。
type ioError struct {
	kind    error
	message string
	cause   error
}

// Error はエラー内容を返す。
func (e *ioError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.kind, e.message, e.cause)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.message)
}

// Unwrap は分類と原因の両方を返す。
func (e *ioError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// NewIoExtInvalid は拡張子不正エラーを生成する。
func NewIoExtInvalid(path string, cause error) error {
	return &ioError{kind: ErrExtInvalid, message: path, cause: cause}
}

// NewIoFileNotFound はファイル不存在エラーを生成する。
func NewIoFileNotFound(path string, cause error) error {
	return &ioError{kind: ErrFileNotFound, message: path, cause: cause}
}

// NewIoParseFailed は解析失敗エラーを生成する。
func NewIoParseFailed(format string, cause error, params ...any) error {
	return &ioError{kind: ErrParseFailed, message: fmt.Sprintf(format, params...), cause: cause}
}

// NewIoFormatNotSupported は未対応形式エラーを生成する。
func NewIoFormatNotSupported(format string, cause error, params ...any) error {
	return &ioError{kind: ErrFormatNotSupported, message: fmt.Sprintf(format, params...), cause: cause}
}

// NewIoWriteFailed は書き込み失敗エラーを生成する。
func NewIoWriteFailed(path string, cause error) error {
	return &ioError{kind: ErrWriteFailed, message: path, cause: cause}
}
