package document

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ivanoskov/itinerary_bot/internal/model"
)

func writeFont(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadFont_GoRegular(t *testing.T) {
	font, err := LoadFont("GoRegular", writeFont(t, goregular.TTF))
	require.NoError(t, err)
	assert.Equal(t, "GoRegular", font.Family)
	assert.Equal(t, goregular.TTF, font.Data)
}

func renderWithFont(t *testing.T, font *Font, items []model.ItineraryEntry) (*Result, []byte) {
	t.Helper()
	rec := &qrRecorder{}

	var buf bytes.Buffer
	res, err := NewRenderer(Options{Font: font, QR: rec.encode}).Render(&buf, items)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	return res, buf.Bytes()
}

func TestRender_TrueTypeFont(t *testing.T) {
	font, err := LoadFont("GoRegular", writeFont(t, goregular.TTF))
	require.NoError(t, err)

	res, out := renderWithFont(t, font, []model.ItineraryEntry{
		{Date: "2025-03-12", Place: "Tokyo"},
	})

	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 1, res.Entries)
	assert.Contains(t, string(out), "FontFile2", "font is embedded as TrueType")
}

// Японский шрифт в репозиторий не входит; тест запускается, если он установлен
func TestRender_JapaneseFont(t *testing.T) {
	path := os.Getenv("ITINERARY_TEST_FONT")
	if path == "" {
		path = filepath.Join("..", "..", "fonts", "NotoSansJP-Regular.ttf")
	}
	if _, err := os.Stat(path); err != nil {
		t.Skipf("japanese font not available: %v", err)
	}

	font, err := LoadFont("NotoSansJP", path)
	require.NoError(t, err)

	res, _ := renderWithFont(t, font, []model.ItineraryEntry{
		{Date: "2025-03-12", Place: "東京タワー", Memo: "夜景"},
		{Date: "2025-03-13", Place: "京都", Memo: "金閣寺"},
	})
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, 2, res.Entries)
}
