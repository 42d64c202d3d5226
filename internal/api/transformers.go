package api

import "github.com/danielgtaylor/huma/v2"

// Transformers returns the response transformers registered on the API.
// Huma runs them in order after each handler, passing the response body.
// Each one passes through bodies of types it does not handle.
//
//   - toolFieldSelectTransformer trims tool listings to the ?detail= level.
//   - diagnosticsDetailTransformer omits per-server entries unless ?detail=full.
func Transformers() []huma.Transformer {
	return []huma.Transformer{
		toolFieldSelectTransformer,
		diagnosticsDetailTransformer,
	}
}
