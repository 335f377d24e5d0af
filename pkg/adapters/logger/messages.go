package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Recorder
		"Recording %s at %.2f fps (%dx%d)":               "%s を %.2f fps (%dx%d) で録画中",
		"Output %s already exists, saving to %s instead": "出力 %s は既に存在するため、%s に保存します",
		"Recording stopped, still processing %d frames":  "録画は停止しました。残り %d フレームを処理中です",
		"Can't add new frame: not in recording mode":     "フレームを追加できません: 録画モードではありません",
		"Can't add new frame: encoder pipe is not running": "フレームを追加できません: エンコーダーパイプが動作していません",
		"Unable to write the frame":                      "フレームを書き込めませんでした",
		"Unable to write the frame: %s":                  "フレームを書き込めませんでした: %s",
		"Encoder exited with error: %s":                  "エンコーダーがエラーで終了しました: %s",
		"Finished saving %s":                             "%s の保存が完了しました",

		// Save queue
		"Saving %d remaining frames (%s queued), this might take a while...": "残り %d フレーム（キュー %s）を保存中です。しばらくお待ちください...",
		"Failed to save %s: %s": "%s の保存に失敗しました: %s",

		// Frame sources
		"Starting screencast":     "スクリーンキャストを開始",
		"Screencast stopped":      "スクリーンキャストを停止しました",
		"Captured %d frames":      "%d フレームをキャプチャしました",
		"Interrupted, flushing...": "中断されました。フラッシュ中...",
	})
}
