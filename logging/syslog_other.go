//go:build windows || plan9

package logging

func newSyslogSink(string) (Sink, error) {
	return nil, ErrSyslogUnavailable
}
