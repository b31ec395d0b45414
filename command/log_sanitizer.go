package command

import (
	"sort"
	"sync"

	"github.com/goliatone/go-masker"
)

var defaultMaskerOnce sync.Once

// DefaultMasker returns the shared masker with credential and contact fields
// registered.
func DefaultMasker() *masker.Masker {
	defaultMaskerOnce.Do(func() {
		if masker.Default == nil {
			return
		}
		registerMaskFields(masker.Default)
	})
	return masker.Default
}

func registerMaskFields(mask *masker.Masker) {
	if mask == nil {
		return
	}
	mask.RegisterMaskField("id_token", "filled4")
	mask.RegisterMaskField("email", "filled4")
	mask.RegisterMaskField("access_token", "filled4")
}

// maskedFields masks fields and flattens them into logger key/value pairs in
// key order. Masking failures drop every field.
func maskedFields(mask *masker.Masker, fields map[string]any) []any {
	if len(fields) == 0 || mask == nil {
		return nil
	}
	cloned := make(map[string]any, len(fields))
	for key, value := range fields {
		cloned[key] = value
	}
	masked, err := mask.Mask(cloned)
	if err != nil {
		return nil
	}
	values, ok := masked.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		out = append(out, key, values[key])
	}
	return out
}
