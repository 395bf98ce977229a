package uart

import "io"

// Line is the physical link behind a port.
type Line interface {
	io.ReadWriteCloser
}

// LineConfigurer is implemented by lines which accept new framing while up.
type LineConfigurer interface {
	SetConfig(Config) error
}

// LineOpener brings up the line of a port.
type LineOpener interface {
	OpenLine(port Port, cfg Config, tx, rx Pin) (Line, error)
}

// OpenLineFunc is the func form of LineOpener.
type OpenLineFunc func(port Port, cfg Config, tx, rx Pin) (Line, error)

// OpenLine implements LineOpener.
func (f OpenLineFunc) OpenLine(port Port, cfg Config, tx, rx Pin) (Line, error) {
	return f(port, cfg, tx, rx)
}
