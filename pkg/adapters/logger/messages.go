package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Run level messages (info)
		"Rendering %d frames at %s fps (%s mode)": "%d フレームを %s fps で描画します (%s モード)",
		"Capturing frames from %s":                "%s からフレームをキャプチャ中",
		"Compiling video":                         "動画をコンパイル中",
		"FFmpeg compilation process has been completed": "FFmpeg によるコンパイルが完了しました",
		"Video saved to %s":                       "動画を %s に保存しました",
		"Keeping frames in %s":                    "フレームを %s に保持します",
		"Interrupted, shutting down...":           "中断されました。シャットダウン中...",
		"Summary written to %s":                   "サマリーを %s に書き出しました",

		// Run level messages (debug)
		"Frame directory: %s":                     "フレームディレクトリ: %s",
		"Removed frame directory %s":              "フレームディレクトリ %s を削除しました",
		"Output video: %s %dx%d, %d samples, %d ms": "出力動画: %s %dx%d, %d サンプル, %d ms",

		// Run level messages (warn/error)
		"%s, trying %s":                           "%s。%s を試します",
		"Could not inspect %s: %s":                "%s を解析できませんでした: %s",
		"Failed to release frame directory lock: %s": "フレームディレクトリのロックを解放できませんでした: %s",
		"Failed to capture frames: %s":            "フレームのキャプチャに失敗しました: %s",
		"Failed to start ffmpeg: %s":              "ffmpeg を起動できませんでした: %s",
		"Failed to compile video: %s":             "動画のコンパイルに失敗しました: %s",

		// Capture component
		"Loading %s (%dx%d @%vx)":                 "%s を読み込み中 (%dx%d @%vx)",
		"Chrome not found, installing Chromium":   "Chrome が見つかりません。Chromium をインストールします",
		"Captured frame %d/%d":                    "フレームをキャプチャ %d/%d",
		"Captured %d frames":                      "%d フレームをキャプチャしました",
		"Rendered %d pattern frames at %dx%d":     "テストパターンを %d フレーム描画しました (%dx%d)",

		// FFmpeg component
		"Starting encoder: %s %s":                 "エンコーダーを起動: %s %s",
		"Compiling current:%s total:%s frames":    "コンパイル中 現在:%s 合計:%s フレーム",
		"Encoder process finished":                "エンコーダープロセスが終了しました",
		"Encoder exited with %s but produced %s":  "エンコーダーは %s で終了しましたが %s を出力しました",
	})
}
