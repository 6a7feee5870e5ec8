package logger

// piiFields are detail keys that may carry personal data. They are replaced
// before anything reaches a sink; log lines carry session ids and counters
// only.
var piiFields = map[string]struct{}{
	"utterance":  {},
	"text":       {},
	"transcript": {},
	"profile":    {},
	"history":    {},
	"user_ref":   {},
	"age":        {},
	"income":     {},
	"location":   {},
	"occupation": {},
	"audio":      {},
}

// Redact returns a copy of details with PII values masked. Nested maps are
// walked; the original map is never mutated. A nil input yields an empty map
// so sinks always see an object.
func Redact(details map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(details))
	for k, v := range details {
		if _, hit := piiFields[k]; hit {
			out[k] = "[REDACTED]"
			continue
		}
		if nested, ok := v.(map[string]interface{}); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}
