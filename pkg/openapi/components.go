package openapi

import "maps"

func errorEnvelope(description string) *Response {
	return &Response{Description: description, Content: content("application/json", SchemaRef("ErrorResponse"))}
}

// NewComponents creates Components with the shared envelope schemas and
// error responses every module references.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"ErrorResponse": {
				Type: "object",
				Properties: map[string]*Schema{
					"success":     {Type: "boolean", Example: false},
					"error":       {Type: "string", Description: "Error message"},
					"retry_after": {Type: "integer", Description: "Seconds to wait before retrying"},
				},
				Required: []string{"success", "error"},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"page_size": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: -created_at"},
				},
			},
		},
		Responses: map[string]*Response{
			"BadRequest":         errorEnvelope("Invalid request"),
			"NotFound":           errorEnvelope("Resource not found"),
			"Conflict":           errorEnvelope("Resource conflict"),
			"TooManyRequests":    errorEnvelope("Provider quota exceeded; honor Retry-After"),
			"BadGateway":         errorEnvelope("Upstream provider failure"),
			"ServiceUnavailable": errorEnvelope("Upstream model overloaded; honor Retry-After"),
			"InternalError":      errorEnvelope("Internal failure or missing configuration"),
		},
	}
}

// AddSchemas registers module schemas; a name already present is replaced.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}
