package keyboard

import "testing"

func TestChunk(t *testing.T) {
	cases := []struct {
		n    int
		want []int
	}{
		{2, []int{2, 2, 1}},
		{3, []int{3, 2}},
		{1, []int{1, 1, 1, 1, 1}},
		{0, []int{1, 1, 1, 1, 1}},
		{10, []int{5}},
	}
	items := []string{"a", "b", "c", "d", "e"}
	for _, tc := range cases {
		rows := Chunk(items, tc.n)
		if len(rows) != len(tc.want) {
			t.Fatalf("n=%d: rows = %d, want %d", tc.n, len(rows), len(tc.want))
		}
		for i, row := range rows {
			if len(row) != tc.want[i] {
				t.Fatalf("n=%d: row %d len = %d, want %d", tc.n, i, len(row), tc.want[i])
			}
		}
	}
}

func TestInline(t *testing.T) {
	markup := Inline(
		[]Button{{Text: "USD", Unique: "currency", Data: "USD"}, {Text: "EUR", Unique: "currency", Data: "EUR"}},
		[]Button{{Text: "RUB", Unique: "currency", Data: "RUB"}},
	)
	if len(markup.InlineKeyboard) != 2 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", markup.InlineKeyboard)
	}
	if got := markup.InlineKeyboard[1][0].Text; got != "RUB" {
		t.Fatalf("button text = %q", got)
	}
}

func TestReply(t *testing.T) {
	markup := Reply([]Button{{Text: "Send"}, {Text: "Cancel"}})
	if !markup.ResizeKeyboard {
		t.Fatal("reply keyboard should be resized")
	}
	if len(markup.ReplyKeyboard) != 1 || len(markup.ReplyKeyboard[0]) != 2 {
		t.Fatalf("unexpected layout: %+v", markup.ReplyKeyboard)
	}
}

func TestInlineButtonData(t *testing.T) {
	markup := Inline([]Button{{Text: "USD", Unique: "currency", Data: "USD"}})
	btn := markup.InlineKeyboard[0][0]
	if btn.Unique != "currency" || btn.Data != "USD" {
		t.Fatalf("button = %+v", btn)
	}
}

func TestChunkDoesNotAlias(t *testing.T) {
	items := []int{1, 2, 3}
	rows := Chunk(items, 2)
	rows[0] = append(rows[0], 99)
	if items[2] != 3 {
		t.Fatal("appending to a row must not overwrite the next item")
	}
}
