// Package keyboard builds telebot reply markups.
package keyboard

import tele "gopkg.in/telebot.v4"

// Button is one keyboard button. Reply keyboards use Text only; inline
// buttons also carry the callback Unique key and Data payload.
type Button struct {
	Text   string
	Unique string
	Data   string
}

// Reply builds a resized reply keyboard; pressing a button sends its Text.
func Reply(rows ...[]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	markup.Reply(toRows(rows, func(b Button) tele.Btn { return markup.Text(b.Text) })...)
	return markup
}

// Inline builds an inline keyboard attached to the message.
func Inline(rows ...[]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	markup.Inline(toRows(rows, func(b Button) tele.Btn { return markup.Data(b.Text, b.Unique, b.Data) })...)
	return markup
}

func toRows(rows [][]Button, mk func(Button) tele.Btn) []tele.Row {
	out := make([]tele.Row, 0, len(rows))
	for _, row := range rows {
		r := make(tele.Row, 0, len(row))
		for _, b := range row {
			r = append(r, mk(b))
		}
		out = append(out, r)
	}
	return out
}

// Chunk splits items into rows of at most n; n < 1 means one per row.
func Chunk[T any](items []T, n int) [][]T {
	n = max(n, 1)
	rows := make([][]T, 0, (len(items)+n-1)/n)
	for len(items) > 0 {
		k := min(n, len(items))
		rows = append(rows, items[:k:k])
		items = items[k:]
	}
	return rows
}
