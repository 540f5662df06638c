package packing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Overrides maps product identifiers or product names to a forced
// disposition. The map is loaded once per run and treated as read-only.
type Overrides map[string]Disposition

// Lookup finds an override for a line. Precedence: product ID exact,
// product name exact, lowercased product ID, lowercased product name.
func (o Overrides) Lookup(productID, productName string) (Disposition, bool) {
	for _, key := range []string{
		productID,
		productName,
		strings.ToLower(productID),
		strings.ToLower(productName),
	} {
		if key == "" {
			continue
		}
		if d, ok := o[key]; ok {
			return d, true
		}
	}
	return "", false
}

// LoadOverrides reads the manual disposition side-file: a JSON object
// mapping product IDs or names to one of the three disposition strings,
// case-insensitive on both sides. A missing or unparsable file returns an
// empty map along with the error so the caller can log and proceed with
// tag-based resolution only.
func LoadOverrides(path string) (Overrides, error) {
	overrides := Overrides{}

	data, err := os.ReadFile(path)
	if err != nil {
		return overrides, fmt.Errorf("read manual dispositions: %w", err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return overrides, fmt.Errorf("parse manual dispositions: %w", err)
	}

	for key, value := range raw {
		d, ok := ParseDisposition(value)
		if !ok {
			// Unknown disposition values are ignored rather than failing
			// the run; the tag fallback still applies to those products.
			continue
		}
		overrides[key] = d
		overrides[strings.ToLower(key)] = d
	}

	return overrides, nil
}
