package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

func entries(n int) []model.ItineraryEntry {
	items := make([]model.ItineraryEntry, n)
	for i := range items {
		items[i] = model.ItineraryEntry{
			Date:  fmt.Sprintf("2025-03-%02d", i+1),
			Place: fmt.Sprintf("Place %d", i+1),
			Memo:  "memo",
		}
	}
	return items
}

func TestLayout_Empty(t *testing.T) {
	plan := Layout(nil, LayoutOptions{})

	require.Len(t, plan.Pages, 1)
	page := plan.Pages[0]
	require.NotNil(t, page.Title)
	assert.Equal(t, DefaultTitle, page.Title.Text)
	assert.Equal(t, TopMargin, page.Title.Y)
	assert.Empty(t, page.Blocks)
	assert.Zero(t, plan.Entries())
}

func TestLayout_SingleEntryWithoutMemo(t *testing.T) {
	plan := Layout([]model.ItineraryEntry{{Date: "2025-03-12", Place: "Tokyo"}}, LayoutOptions{})

	require.Len(t, plan.Pages, 1)
	require.Len(t, plan.Pages[0].Blocks, 1)
	block := plan.Pages[0].Blocks[0]

	assert.Equal(t, TopMargin+TitleHeight, block.Top)
	require.Len(t, block.Lines, 3, "date, place and url lines only")
	assert.Equal(t, "■ 2025-03-12", block.Lines[0].Text)
	assert.Equal(t, "場所: Tokyo", block.Lines[1].Text)
	for _, line := range block.Lines {
		assert.NotContains(t, line.Text, "メモ")
	}

	urlLine := block.Lines[2]
	assert.Equal(t, URLSize, urlLine.Size)
	assert.Equal(t, block.URL, urlLine.Text)
	assert.True(t, strings.HasSuffix(block.URL, "query=Tokyo"))

	assert.Equal(t, Rect{X: QRX, Y: urlLine.Y - QRRise, W: QRSize, H: QRSize}, block.QR)
}

func TestLayout_MemoLine(t *testing.T) {
	plan := Layout([]model.ItineraryEntry{{Date: "2025-03-12", Place: "Tokyo", Memo: "寿司"}}, LayoutOptions{})

	block := plan.Pages[0].Blocks[0]
	require.Len(t, block.Lines, 4)
	assert.Equal(t, "メモ: 寿司", block.Lines[2].Text)
	assert.Equal(t, block.URL, block.Lines[3].Text)
}

func TestLayout_SortedByDate(t *testing.T) {
	plan := Layout([]model.ItineraryEntry{
		{Date: "2025-03-20", Place: "Kyoto"},
		{Date: "2025-01-05", Place: "Tokyo"},
	}, LayoutOptions{})

	blocks := plan.Pages[0].Blocks
	require.Len(t, blocks, 2)
	assert.Equal(t, "2025-01-05", blocks[0].Entry.Date)
	assert.Equal(t, "2025-03-20", blocks[1].Entry.Date)
	assert.Less(t, blocks[0].Top, blocks[1].Top)
}

func TestLayout_FixedEntryBudget(t *testing.T) {
	plan := Layout([]model.ItineraryEntry{
		{Date: "1", Place: "a", Memo: "with memo"},
		{Date: "2", Place: "b"},
		{Date: "3", Place: "c"},
	}, LayoutOptions{})

	blocks := plan.Pages[0].Blocks
	require.Len(t, blocks, 3)
	assert.Equal(t, EntryHeight, blocks[1].Top-blocks[0].Top)
	assert.Equal(t, EntryHeight, blocks[2].Top-blocks[1].Top)
}

func TestLayout_Pagination(t *testing.T) {
	plan := Layout(entries(12), LayoutOptions{})

	require.Greater(t, len(plan.Pages), 1)
	assert.Equal(t, 12, plan.Entries())
	assert.Len(t, plan.Pages[0].Blocks, 5)
	assert.Len(t, plan.Pages[1].Blocks, 5)
	assert.Len(t, plan.Pages[2].Blocks, 2)

	for i, page := range plan.Pages {
		assert.Equal(t, i+1, page.Number)
		if i > 0 {
			assert.Nil(t, page.Title, "only the first page has a title")
			assert.Equal(t, TopMargin, page.Blocks[0].Top)
		}
		for _, block := range page.Blocks {
			assert.GreaterOrEqual(t, block.Top, TopMargin)
			assert.LessOrEqual(t, block.Top, BreakLine)
			assert.LessOrEqual(t, block.QR.Y+block.QR.H, PageHeight)
			for _, line := range block.Lines {
				assert.Less(t, line.Y, PageHeight)
			}
		}
	}
}

func TestMapsURL(t *testing.T) {
	assert.Equal(t, MapsSearchPrefix+"Tokyo", MapsURL("Tokyo", false))
	assert.Equal(t, MapsSearchPrefix+"Tokyo+Tower%26Park", MapsURL("Tokyo Tower&Park", false))
	assert.Equal(t, MapsSearchPrefix+"Tokyo Tower&Park", MapsURL("Tokyo Tower&Park", true))
	assert.Equal(t, MapsSearchPrefix+"%E6%9D%B1%E4%BA%AC", MapsURL("東京", false))
}

func TestLayout_LegacyRawQuery(t *testing.T) {
	plan := Layout([]model.ItineraryEntry{{Date: "d", Place: "東京 駅"}}, LayoutOptions{LegacyRawQuery: true})
	assert.Equal(t, MapsSearchPrefix+"東京 駅", plan.Pages[0].Blocks[0].URL)
}
