// 指示: miu200521358
package io_motion

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/miu200521358/mu_motion_optimizer/pkg/adapter/io_common"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

const (
	vmdSignature   = "Vocaloid Motion Data 0002"
	vmdSignatureV1 = "Vocaloid Motion Data file"

	vmdHeaderLength        = 30
	vmdModelNameLength     = 20
	vmdBoneNameLength      = 15
	vmdInterpolationLength = 64
	vmdBoneFrameLength     = vmdBoneNameLength + 4 + 12 + 16 + vmdInterpolationLength
	vmdMorphFrameLength    = 15 + 4 + 4
	vmdCameraFrameLength   = 4 + 4 + 12 + 12 + 24 + 4 + 1
	vmdLightFrameLength    = 4 + 12 + 12
	vmdShadowFrameLength   = 4 + 1 + 4
	vmdIkBoneNameLength    = 20

	// vmdFps はVMDフレーム番号の基準レート。時刻(秒)との相互変換に使う。
	vmdFps = 30.0

	interpolationLinearA = 20
	interpolationLinearB = 107
)

// vmdCursor はVMDバイナリを先頭から読み進めるカーソルを表す。
// 一度エラーになると以降の読み取りは何もしない。
type vmdCursor struct {
	b      []byte
	offset int
	err    error
}

// remaining は未読バイト数を返す。
func (c *vmdCursor) remaining() int {
	return len(c.b) - c.offset
}

// next は指定長のバイト列を読み進める。不足時はエラーを保持する。
func (c *vmdCursor) next(length int, section string) []byte {
	if c.err != nil {
		return nil
	}
	if length < 0 || c.offset+length > len(c.b) {
		c.err = io_common.NewIoParseFailed("VMDデータが不足しています: section=%s offset=%d length=%d",
			nil, section, c.offset, length)
		return nil
	}
	read := c.b[c.offset : c.offset+length]
	c.offset += length
	return read
}

// uint32 はリトルエンディアンの32bit整数を読み進める。
func (c *vmdCursor) uint32(section string) uint32 {
	read := c.next(4, section)
	if read == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(read)
}

// float32 はリトルエンディアンの32bit浮動小数を読み進める。
func (c *vmdCursor) float32(section string) float32 {
	return math.Float32frombits(c.uint32(section))
}

// appendUint32 はリトルエンディアンの32bit整数を書き足す。
func appendUint32(b []byte, value uint32) []byte {
	return binary.LittleEndian.AppendUint32(b, value)
}

// appendFloat32 はリトルエンディアンの32bit浮動小数を書き足す。
func appendFloat32(b []byte, value float64) []byte {
	return binary.LittleEndian.AppendUint32(b, math.Float32bits(float32(value)))
}

// decodeShiftJISName はNUL終端のShift-JISバイト列をUTF-8文字列へ変換する。
func decodeShiftJISName(b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// encodeShiftJISName は文字列をShift-JISの固定長NUL詰めバイト列へ変換する。
// 表現できない文字は置換され、超過分は切り詰められる。切り詰めの有無も返す。
func encodeShiftJISName(name string, length int) ([]byte, bool) {
	encoder := encoding.ReplaceUnsupported(japanese.ShiftJIS.NewEncoder())
	encoded, err := encoder.Bytes([]byte(name))
	if err != nil {
		encoded = nil
	}
	truncated := len(encoded) > length
	if truncated {
		encoded = encoded[:length]
	}
	fixed := make([]byte, length)
	copy(fixed, encoded)
	return fixed, truncated
}

// defaultBoneInterpolation は線形補間を表す既定の補間パラメータを返す。
// 16個の制御点バイトを1バイトずつずらした4行で構成し、先頭行の2,3バイト目は
// 物理有効フラグ領域として0にする。
func defaultBoneInterpolation() [vmdInterpolationLength]byte {
	base := [16]byte{
		interpolationLinearA, interpolationLinearA, interpolationLinearA, interpolationLinearA,
		interpolationLinearA, interpolationLinearA, interpolationLinearA, interpolationLinearA,
		interpolationLinearB, interpolationLinearB, interpolationLinearB, interpolationLinearB,
		interpolationLinearB, interpolationLinearB, interpolationLinearB, interpolationLinearB,
	}
	var block [vmdInterpolationLength]byte
	for row := 0; row < 4; row++ {
		copy(block[row*16:], base[row:])
	}
	block[2], block[3] = 0, 0
	return block
}
