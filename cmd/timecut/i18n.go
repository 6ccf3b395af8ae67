// Package main provides localization for the timecut CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Render web page animations to video at a fixed frame rate.": "Webページのアニメーションを固定フレームレートで動画に変換します。",

		// Version command
		"timecut (Go) version %s": "timecut (Go版) バージョン %s",

		// Summary content
		"Render Summary":  "レンダリングサマリー",
		"Generated":       "生成日時",
		"Item":            "項目",
		"Value":           "値",
		"Source":          "ソース",
		"URL":             "URL",
		"Mode":            "モード",
		"Frames":          "フレーム数",
		"FPS":             "FPS",
		"Output":          "出力",
		"(stream)":        "（ストリーム）",
		"Size":            "サイズ",
		"Frames kept in":  "フレーム保存先",
		"Codec":           "コーデック",
		"Dimensions":      "解像度",
		"Video duration":  "動画再生時間",
		"Elapsed":         "処理時間",
	})
}
