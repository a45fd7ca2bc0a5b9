package document

import (
	"bytes"
	"errors"
	"fmt"
	"os"
)

// Font шрифт TrueType, регистрируемый в документе под логическим именем
type Font struct {
	Family string
	Data   []byte
}

var (
	ttfMagic  = []byte{0x00, 0x01, 0x00, 0x00}
	trueMagic = []byte("true")
)

// LoadFont читает файл шрифта. Коллекции (.ttc) и CFF (.otf) не поддерживаются.
func LoadFont(family, path string) (*Font, error) {
	if family == "" {
		return nil, errors.New("font family is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("font %s is empty", path)
	}
	if !bytes.Equal(data[:4], ttfMagic) && !bytes.Equal(data[:4], trueMagic) {
		return nil, fmt.Errorf("font %s is not a TrueType font", path)
	}
	return &Font{Family: family, Data: data}, nil
}
