package service

// Ключевые слова и тексты диалога
const (
	StartKeyword = "しおり作成"
	YesToken     = "はい"
	NoToken      = "いいえ"

	// SkipMemoToken оставляет заметку пустой: Telegram не доставляет пустые сообщения
	SkipMemoToken = "なし"

	PromptDate     = "日付を入力してください（例: 2025-03-12）"
	PromptPlace    = "場所を入力してください"
	PromptMemo     = "メモを入力してください"
	PromptContinue = "旅程を追加しますか？（はい / いいえ）"
	PromptNextDate = "次の日付を入力してください"
	PromptYesNo    = "「はい」か「いいえ」で答えてください"

	PromptRendering  = "PDFを作成中です。やり直す場合は「" + StartKeyword + "」と送ってください。"
	CancelledMessage = "入力を取り消しました。"
	NoHistoryMessage = "まだ作成したしおりはありません。"

	historyHeader = "最近作成したしおり："

	replyDone = "PDFを作成しました。\nこちらからダウンロードできます：\n"
)

// DoneMessage текст ответа со ссылкой на готовый документ
func DoneMessage(url string) string {
	return replyDone + url
}
