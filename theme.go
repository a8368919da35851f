package streamquery

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so output
// automatically matches any color scheme.
type Theme struct {
	Error    int // Server-reported errors
	Success  int // Scores at or above the consistency threshold
	Muted    int // Event labels, snippet context
	Accent   int // Headings, titles
	Citation int // Inline [n] citation markers
	CodeBg   int // Code block background
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		Error:    1,
		Success:  2,
		Muted:    8,
		Accent:   5,
		Citation: 6,
		CodeBg:   0,
	}
}
