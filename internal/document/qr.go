package document

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// QRPixels сторона растра QR-кода в пикселях
const QRPixels = 256

// QREncoder кодирует строку в PNG с QR-кодом
type QREncoder func(content string, size int) ([]byte, error)

// EncodeQR кодирует строку со средним уровнем коррекции ошибок
func EncodeQR(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return png, nil
}
