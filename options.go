package deliverables

import "go.uber.org/zap"

// Options holds configuration for the Reporter.
type Options struct {
	logger         *zap.Logger
	encoding       string
	outputPath     string
	dataSheet      string
	filter         string
	colorOverrides map[string]string
	nativePivot    bool
}

func defaultOptions() *Options {
	return &Options{
		logger:      zap.NewNop(),
		encoding:    "utf-8",
		nativePivot: true,
	}
}

// Option configures the Reporter.
type Option func(*Options)

// WithLogger sets the structured logger (default: no-op).
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEncoding sets the character encoding of CSV input (default: "utf-8").
func WithEncoding(name string) Option {
	return func(o *Options) { o.encoding = name }
}

// WithOutputPath sets where Convert writes the workbook instead of next to the CSV.
func WithOutputPath(path string) Option {
	return func(o *Options) { o.outputPath = path }
}

// WithDataSheet names the sheet holding the imported test log (default: first sheet).
func WithDataSheet(name string) Option {
	return func(o *Options) { o.dataSheet = name }
}

// WithFilter restricts the die rows used by the pivot and wafermap stages to
// those for which the boolean expression holds, e.g. `SITE == 1 && X > 0`.
func WithFilter(expression string) Option {
	return func(o *Options) { o.filter = expression }
}

// WithColorOverrides replaces or adds C1_MARK colours ("#RRGGBB").
func WithColorOverrides(colors map[string]string) Option {
	return func(o *Options) {
		if o.colorOverrides == nil {
			o.colorOverrides = make(map[string]string, len(colors))
		}
		for k, v := range colors {
			o.colorOverrides[k] = v
		}
	}
}

// WithNativePivot controls whether the pivot stage also adds a spreadsheet
// pivot table next to the fallout table (default: true).
func WithNativePivot(enabled bool) Option {
	return func(o *Options) { o.nativePivot = enabled }
}
