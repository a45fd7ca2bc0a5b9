// Package document раскладывает записи маршрута по страницам A4 и рисует PDF.
//
// Координаты в миллиметрах, начало отсчета в левом верхнем углу страницы,
// Y текстовой строки указывает на базовую линию.
package document

import (
	"fmt"
	"net/url"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

const (
	PageWidth  = 210.0
	PageHeight = 297.0

	TopMargin    = 20.0
	TitleSize    = 18.0
	TitleHeight  = 15.0
	BodySize     = 12.0
	URLSize      = 9.0
	LineStep     = 7.0
	BottomMargin = 40.0

	// EntryHeight фиксированный шаг на запись: три строки и отступ под QR-код.
	// Не зависит от наличия заметки.
	EntryHeight = 3*LineStep + 30.0

	HeaderX = 20.0
	DetailX = 25.0

	QRX    = 150.0
	QRSize = 25.0
	// QRRise насколько верх QR-кода выше базовой линии строки с адресом
	QRRise = QRSize - 5.0

	DefaultTitle = "旅行のしおり"

	MapsSearchPrefix = "https://www.google.com/maps/search/?api=1&query="
)

// BreakLine курсор ниже этой отметки переносит запись на новую страницу
const BreakLine = PageHeight - BottomMargin

// LayoutOptions параметры раскладки
type LayoutOptions struct {
	Title string
	// LegacyRawQuery подставляет место в ссылку без экранирования
	LegacyRawQuery bool
}

type TextLine struct {
	X    float64
	Y    float64
	Size float64
	Text string
}

type Rect struct {
	X, Y, W, H float64
}

// Block одна запись маршрута на странице
type Block struct {
	Entry model.ItineraryEntry
	Top   float64
	Lines []TextLine
	URL   string
	QR    Rect
}

type Page struct {
	Number int
	Title  *TextLine
	Blocks []Block
}

// Plan результат раскладки: страницы в порядке вывода
type Plan struct {
	Pages []Page
}

// Entries количество записей во всех страницах
func (p *Plan) Entries() int {
	n := 0
	for _, page := range p.Pages {
		n += len(page.Blocks)
	}
	return n
}

// MapsURL строит ссылку на поиск места в картах
func MapsURL(place string, legacyRaw bool) string {
	if legacyRaw {
		return MapsSearchPrefix + place
	}
	return MapsSearchPrefix + url.QueryEscape(place)
}

// Layout сортирует записи по дате и жадно раскладывает их сверху вниз.
// Новая страница начинается, когда курсор опустился ниже BreakLine.
func Layout(items []model.ItineraryEntry, opts LayoutOptions) *Plan {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}

	first := Page{
		Number: 1,
		Title:  &TextLine{X: HeaderX, Y: TopMargin, Size: TitleSize, Text: title},
	}
	plan := &Plan{Pages: []Page{first}}
	cur := &plan.Pages[0]
	y := TopMargin + TitleHeight

	for _, entry := range model.SortEntries(items) {
		if y > BreakLine {
			plan.Pages = append(plan.Pages, Page{Number: len(plan.Pages) + 1})
			cur = &plan.Pages[len(plan.Pages)-1]
			y = TopMargin
		}

		cur.Blocks = append(cur.Blocks, layoutBlock(entry, y, opts.LegacyRawQuery))
		y += EntryHeight
	}

	return plan
}

func layoutBlock(entry model.ItineraryEntry, top float64, legacyRaw bool) Block {
	b := Block{
		Entry: entry,
		Top:   top,
		URL:   MapsURL(entry.Place, legacyRaw),
	}

	y := top
	b.Lines = append(b.Lines, TextLine{X: HeaderX, Y: y, Size: BodySize, Text: fmt.Sprintf("■ %s", entry.Date)})
	y += LineStep
	b.Lines = append(b.Lines, TextLine{X: DetailX, Y: y, Size: BodySize, Text: fmt.Sprintf("場所: %s", entry.Place)})
	y += LineStep
	if entry.Memo != "" {
		b.Lines = append(b.Lines, TextLine{X: DetailX, Y: y, Size: BodySize, Text: fmt.Sprintf("メモ: %s", entry.Memo)})
		y += LineStep
	}
	b.Lines = append(b.Lines, TextLine{X: DetailX, Y: y, Size: URLSize, Text: b.URL})

	b.QR = Rect{X: QRX, Y: y - QRRise, W: QRSize, H: QRSize}
	return b
}
