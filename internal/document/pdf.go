package document

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

const coreFamily = "Helvetica"

// SummaryFunc строит PNG со сводкой по записям
type SummaryFunc func(items []model.ItineraryEntry) ([]byte, error)

// Options параметры отрисовки
type Options struct {
	Title string
	// Font шрифт с японскими глифами. Без него используется встроенный
	// Helvetica с cp1252, подходящий только для латиницы.
	Font           *Font
	LegacyRawQuery bool
	QR             QREncoder
	// Summary если задан, добавляет в конец страницу со сводкой
	Summary SummaryFunc
}

// Result сведения о сформированном документе
type Result struct {
	Pages   int
	Entries int
	Summary bool
}

type Renderer struct {
	opts Options
}

func NewRenderer(opts Options) *Renderer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.QR == nil {
		opts.QR = EncodeQR
	}
	return &Renderer{opts: opts}
}

// Render раскладывает записи и пишет PDF в w
func (r *Renderer) Render(w io.Writer, items []model.ItineraryEntry) (*Result, error) {
	plan := Layout(items, LayoutOptions{
		Title:          r.opts.Title,
		LegacyRawQuery: r.opts.LegacyRawQuery,
	})

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("itinerary_bot", true)
	pdf.SetTitle(r.opts.Title, true)

	family := coreFamily
	translate := func(s string) string { return s }
	if r.opts.Font != nil {
		family = r.opts.Font.Family
		pdf.AddUTF8FontFromBytes(family, "", r.opts.Font.Data)
	} else {
		translate = pdf.UnicodeTranslatorFromDescriptor("")
	}
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("register font: %w", err)
	}

	text := func(line TextLine) {
		pdf.SetFont(family, "", line.Size)
		pdf.Text(line.X, line.Y, translate(line.Text))
	}

	for _, page := range plan.Pages {
		pdf.AddPage()
		if page.Title != nil {
			text(*page.Title)
		}

		for i, block := range page.Blocks {
			for _, line := range block.Lines {
				text(line)
			}

			png, err := r.opts.QR(block.URL, QRPixels)
			if err != nil {
				return nil, fmt.Errorf("qr for %q: %w", block.Entry.Place, err)
			}
			name := fmt.Sprintf("qr-%d-%d", page.Number, i)
			imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(png))
			pdf.ImageOptions(name, block.QR.X, block.QR.Y, block.QR.W, block.QR.H, false, imgOpts, 0, block.URL)
		}

		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("draw page %d: %w", page.Number, err)
		}
	}

	res := &Result{Entries: plan.Entries()}

	if r.opts.Summary != nil && res.Entries > 0 {
		png, err := r.opts.Summary(items)
		if err != nil {
			return nil, fmt.Errorf("summary chart: %w", err)
		}
		pdf.AddPage()
		text(TextLine{X: HeaderX, Y: TopMargin, Size: TitleSize, Text: r.opts.Title})

		imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("summary", imgOpts, bytes.NewReader(png))
		pdf.ImageOptions("summary", HeaderX, TopMargin+TitleHeight, PageWidth-2*HeaderX, (PageWidth-2*HeaderX)/2, false, imgOpts, 0, "")
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("draw summary: %w", err)
		}
		res.Summary = true
	}

	res.Pages = pdf.PageCount()
	if err := pdf.Output(w); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return res, nil
}
