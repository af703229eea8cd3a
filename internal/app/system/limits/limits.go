// internal/app/system/limits/limits.go
package limits

// Request body size limits. These keep oversized payloads from exhausting
// memory before validation runs.
const (
	// MaxJSONBody bounds API request bodies; membership mutations carry a
	// handful of ids and short strings.
	MaxJSONBody = 64 << 10 // 64 KB

	// MaxDescriptionLen bounds group descriptions after sanitization.
	MaxDescriptionLen = 4096

	// MaxNameLen bounds group and user display names.
	MaxNameLen = 120
)
