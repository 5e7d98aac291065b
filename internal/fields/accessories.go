package fields

import (
	"strconv"
	"strings"

	"github.com/keapril/webinventory/internal/model"
)

const (
	accessorySep = ", "
	quantitySep  = "x"
)

// FormatAccessories encodes accessories as the flat "name1x1, name2x2" string
// stored in the remote catalog.
func FormatAccessories(accs []model.Accessory) string {
	parts := make([]string, 0, len(accs))
	for _, a := range accs {
		parts = append(parts, a.Name+quantitySep+strconv.Itoa(a.Quantity))
	}
	return strings.Join(parts, accessorySep)
}

// ParseAccessories decodes the flat accessory string. Each token is split on
// its last 'x'; a missing or non-numeric quantity becomes 1.
func ParseAccessories(s string) []model.Accessory {
	if s == "" {
		return nil
	}
	tokens := strings.Split(s, accessorySep)
	accs := make([]model.Accessory, 0, len(tokens))
	for _, tok := range tokens {
		name, qty := tok, 1
		if i := strings.LastIndex(tok, quantitySep); i >= 0 {
			name = tok[:i]
			if n, err := strconv.Atoi(strings.TrimSpace(tok[i+len(quantitySep):])); err == nil && n > 0 {
				qty = n
			}
		}
		accs = append(accs, model.Accessory{Name: name, Quantity: qty})
	}
	return accs
}
