// internal/app/features/ideacount/tabular/limits.go
package tabular

// Upload size and row limits for tabular imports.
const (
	MaxUploadSize = 5 << 20 // 5 MB
	MaxRows       = 20000
)
