package openapi

import "encoding/json"

// MarshalJSON renders the document once at startup; ServeSpec writes the bytes.
func MarshalJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}
