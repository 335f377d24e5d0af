package main

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// App / commands
		"Record real-time frame streams to video or image sequences": "リアルタイムのフレームストリームを動画や連番画像に記録します",
		"Record a frame stream to an MP4 video or a PNG sequence":    "フレームストリームを MP4 動画または PNG 連番として記録します",
		"Capture a single frame to a PNG or Radiance HDR file":       "1 フレームを PNG または Radiance HDR ファイルとして保存します",
		"Inspect a recorded MP4 file":                                "記録した MP4 ファイルの情報を表示します",

		// Flags
		"YAML configuration file":                                              "YAML 設定ファイル",
		"Output video file path":                                               "出力動画ファイルのパス",
		"Output image path (.png or .hdr)":                                     "出力画像のパス (.png または .hdr)",
		"Frame source: pattern or url":                                         "フレームソース: pattern または url",
		"Page URL for the url source":                                          "url ソースで開くページの URL",
		"Path to the Chrome executable":                                        "Chrome 実行ファイルのパス",
		"Frame width in pixels":                                                "フレームの幅 (ピクセル)",
		"Frame height in pixels":                                               "フレームの高さ (ピクセル)",
		"Output frame rate":                                                    "出力フレームレート",
		"Recording start time in seconds":                                      "録画開始時刻 (秒)",
		"Recording duration in seconds":                                        "録画時間 (秒)",
		"Record a fixed number of frames instead of a duration":                "時間ではなくフレーム数で録画します",
		"Save a numbered PNG sequence instead of piping to ffmpeg":             "ffmpeg へのパイプの代わりに連番 PNG を保存します",
		"Filename prefix for sequence frames":                                  "連番フレームのファイル名プレフィックス",
		"Path to the ffmpeg binary":                                            "ffmpeg バイナリのパス",
		"Extra ffmpeg input argument (repeatable)":                             "ffmpeg への追加入力引数 (複数指定可)",
		"Extra ffmpeg output argument (repeatable)":                            "ffmpeg への追加出力引数 (複数指定可)",
		"Memory ceiling for queued image saves (e.g. 500MB, 0 for synchronous)": "画像保存キューのメモリ上限 (例: 500MB、0 で同期保存)",
		"Image save worker count":                                              "画像保存ワーカー数",
		"Log level (debug, info, warn, error)":                                 "ログレベル (debug, info, warn, error)",
		"Suppress all log output":                                              "すべてのログ出力を抑制します",

		// Messages
		"Recording %3.0f%% (%d frames, %d queued)": "録画中 %3.0f%% (%d フレーム、キュー %d)",
		"Screenshot saved to %s":                   "スクリーンショットを %s に保存しました",
	})
}
