package charts

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/golang/freetype/truetype"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

// ChartGenerator генерирует графики для страницы сводки
type ChartGenerator struct {
	Width  int
	Height int
	// Font шрифт подписей; nil - встроенный шрифт go-chart без японских глифов
	Font *truetype.Font
}

// NewChartGenerator создает новый генератор графиков
func NewChartGenerator() *ChartGenerator {
	return &ChartGenerator{
		Width:  1200,
		Height: 600,
	}
}

// SetFont задает шрифт подписей из данных TrueType
func (g *ChartGenerator) SetFont(data []byte) error {
	font, err := truetype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse chart font: %w", err)
	}
	g.Font = font
	return nil
}

// DayCount количество мест, запланированных на одну дату
type DayCount struct {
	Date  string
	Count int
}

// CountByDate группирует записи по дате в порядке сортировки дат
func CountByDate(items []model.ItineraryEntry) []DayCount {
	counts := make([]DayCount, 0)
	for _, item := range model.SortEntries(items) {
		if n := len(counts); n > 0 && counts[n-1].Date == item.Date {
			counts[n-1].Count++
			continue
		}
		counts = append(counts, DayCount{Date: item.Date, Count: 1})
	}
	return counts
}

// barWidth подбирает ширину столбца так, чтобы все даты поместились на холсте
func (g *ChartGenerator) barWidth(bars int) int {
	w := (g.Width - 100) / (bars * 2)
	if w > 60 {
		return 60
	}
	if w < 4 {
		return 4
	}
	return w
}

// GenerateDailySummary строит столбчатую диаграмму: сколько мест на каждую дату
func (g *ChartGenerator) GenerateDailySummary(items []model.ItineraryEntry) ([]byte, error) {
	days := CountByDate(items)
	if len(days) == 0 {
		return nil, errors.New("no entries to chart")
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(days))
	for _, day := range days {
		if day.Count > maxCount {
			maxCount = day.Count
		}
		bars = append(bars, chart.Value{
			Label: day.Date,
			Value: float64(day.Count),
			Style: chart.Style{
				FillColor:   chart.ColorBlue.WithAlpha(160),
				StrokeColor: chart.ColorBlue,
				StrokeWidth: 1,
			},
		})
	}

	width := g.barWidth(len(bars))
	graph := chart.BarChart{
		Title:      "Places per day",
		Font:       g.Font,
		Width:      g.Width,
		Height:     g.Height,
		BarWidth:   width,
		BarSpacing: width,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		XAxis: chart.Style{
			FontSize:  10,
			FontColor: chart.ColorBlack,
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(maxCount + 1),
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render summary chart: %w", err)
	}
	return buffer.Bytes(), nil
}
