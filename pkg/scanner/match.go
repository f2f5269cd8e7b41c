package scanner

import (
	"strings"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
)

// MatchProduct finds the product whose QR code equals code, preferring an
// exact match over a case-insensitive one.
func MatchProduct(products []model.Product, code string) *model.Product {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	for i := range products {
		if products[i].QRCode != nil && *products[i].QRCode == code {
			return &products[i]
		}
	}
	for i := range products {
		if products[i].QRCode != nil && strings.EqualFold(*products[i].QRCode, code) {
			return &products[i]
		}
	}
	return nil
}
