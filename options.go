package qrsnap

// Default values applied by ResolveOptions.
const (
	DefaultCellsPerSide = 4
	DefaultMaxPixels    = 1024 * 1024
)

// Logger receives diagnostics from the decoder. *log.Logger satisfies it.
type Logger interface {
	Printf(format string, v ...any)
}

// Options configures decoding. A nil *Options means defaults.
type Options struct {
	// PureBarcode hints that the image contains only an unrotated code with
	// a quiet zone and nothing else.
	PureBarcode bool

	// CellsPerSide is the number of threshold cells along each axis.
	CellsPerSide int

	// MaxPixels is the pixel ceiling; larger buffers fail with ErrImageTooLarge.
	MaxPixels int

	// CharacterSet names the encoding for byte segments without an ECI.
	// Empty means guess.
	CharacterSet string

	// Logger receives warnings for recovered conditions. Nil is silent.
	Logger Logger
}

// ResolveOptions returns a copy of opts with zero fields set to defaults.
func ResolveOptions(opts *Options) Options {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.CellsPerSide <= 0 {
		o.CellsPerSide = DefaultCellsPerSide
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// Warnf logs a recovered condition.
func (o *Options) Warnf(format string, v ...any) {
	if o != nil && o.Logger != nil {
		o.Logger.Printf("WARN: "+format, v...)
	}
}

// Debugf logs decoder detail.
func (o *Options) Debugf(format string, v ...any) {
	if o != nil && o.Logger != nil {
		o.Logger.Printf("DEBUG: "+format, v...)
	}
}
