package logging

import (
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Sink receives fully formatted log lines.
type Sink interface {
	Write(level Level, line []byte) error
	Close() error
}

// writerSink writes every line to an io.Writer regardless of level.
type writerSink struct {
	w io.Writer
}

// NewWriterSink returns a Sink over w. Close is a no-op.
func NewWriterSink(w io.Writer) Sink {
	return &writerSink{w: w}
}

func (s *writerSink) Write(_ Level, line []byte) error {
	_, err := s.w.Write(line)
	return err
}

func (s *writerSink) Close() error {
	return nil
}

// Rotation settings for the file sink.
const (
	fileMaxSizeMB  = 100
	fileMaxBackups = 6
	fileMaxAgeDays = 7
)

// fileSink is a lumberjack-backed file that additionally rotates the first
// time it is written to on a new local day.
type fileSink struct {
	mu      sync.Mutex
	lj      *lumberjack.Logger
	now     func() time.Time
	lastDay int
}

func newFileSink(path string) *fileSink {
	return &fileSink{
		lj: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    fileMaxSizeMB,
			MaxBackups: fileMaxBackups,
			MaxAge:     fileMaxAgeDays,
			LocalTime:  true,
		},
		now:     time.Now,
		lastDay: -1,
	}
}

func (s *fileSink) Write(_ Level, line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := dayNumber(s.now())
	if s.lastDay >= 0 && day != s.lastDay {
		if err := s.lj.Rotate(); err != nil {
			return err
		}
	}
	s.lastDay = day

	_, err := s.lj.Write(line)
	return err
}

func (s *fileSink) Close() error {
	return s.lj.Close()
}

// dayNumber identifies the local calendar day of t.
func dayNumber(t time.Time) int {
	return t.Year()*1000 + t.YearDay()
}
