package cmd

import (
	"github.com/hnw/sixelbridge/internal/legacy"
	"github.com/hnw/sixelbridge/internal/render"
)

// sixelState は rawWriter 内の sixel ステートマシンの状態を表す
type sixelState int

const (
	sixelStateText    sixelState = iota // 通常テキスト
	sixelStateESC                       // \x1b を受信後（次のバイトで DCS か判断）
	sixelStateDCS                       // DCS パラメータ解析中（'q' で sixel 確定前）
	sixelStateDCSESC                    // DCS 中で \x1b を受信（ST の期待）
	sixelStateData                      // sixel データ受信中（'q' の後）
	sixelStateDataESC                   // sixel データ中で \x1b を受信（ST の期待）
)

// sixelToPNG は完全な DCS sixel シーケンス（\x1bP...\x1b\ を含む）を
// PNG エンコードされたバイト列に変換する。internal/sixel でデコードし、
// 投稿サイズの上限を超える場合は internal/render が縮小する。
func sixelToPNG(sixelData []byte) ([]byte, error) {
	return render.EncodeThumbnail(sixelData)
}

// sixelToPNGLegacy は internal/legacy（github.com/mattn/go-sixel 直結）で
// デコードする。CommandConfig.LegacyDecoder が立っているコマンドの出力に使う。
func sixelToPNGLegacy(sixelData []byte) ([]byte, error) {
	rgba, w, h, err := legacy.Decode(sixelData)
	if err != nil {
		return nil, err
	}
	return render.EncodeRGBA(rgba, w, h)
}
