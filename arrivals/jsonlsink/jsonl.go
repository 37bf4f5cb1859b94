// Package jsonlsink persists generated patients as JSON Lines, one document per patient.
package jsonlsink

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
)

const (
	defaultMaxSizeMB  = 64
	defaultMaxBackups = 16

	logMsgWriteFailed = "writing patient failed"
	logAttrError      = "error"
)

var (
	// ErrNilWriter is returned when a nil writer is given to NewSink.
	ErrNilWriter = errors.New("writer must not be nil")

	// ErrEmptyPath is returned when an empty path is given to NewRotatingFileSink.
	ErrEmptyPath = errors.New("path must not be empty")

	// ErrWriteFailed is returned when encoding or writing a patient fails.
	ErrWriteFailed = errors.New("writing patient failed")

	// ErrDecodeFailed is returned when a line cannot be decoded into a patient.
	ErrDecodeFailed = errors.New("decoding patient failed")
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Sink implements arrivals.PersistenceSink by appending JSON documents to a writer.
// It is safe for concurrent use.
type Sink struct {
	mu      sync.Mutex
	encoder *jsoniter.Encoder
	closer  io.Closer
	written int
	logger  arrivals.Logger
}

// Option defines a functional option for configuring Sink.
type Option func(*Sink) error

// WithLogger sets the logger; write failures are logged at error level.
func WithLogger(logger arrivals.Logger) Option {
	return func(s *Sink) error {
		s.logger = logger
		return nil
	}
}

// NewSink creates a Sink writing to w. Closing the sink does not close w.
func NewSink(w io.Writer, options ...Option) (*Sink, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	s := &Sink{encoder: api.NewEncoder(w)}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewRotatingFileSink creates a Sink appending to the file at path, rotated by size.
func NewRotatingFileSink(path string, maxSizeMB int, options ...Option) (*Sink, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}

	file := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: defaultMaxBackups,
	}

	s, err := NewSink(file, options...)
	if err != nil {
		return nil, err
	}
	s.closer = file

	return s, nil
}

// Store writes one line for patient.
func (s *Sink) Store(_ context.Context, patient arrivals.Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(patient); err != nil {
		if s.logger != nil {
			s.logger.Error(logMsgWriteFailed, logAttrError, err.Error())
		}

		return errors.Join(ErrWriteFailed, err)
	}

	s.written++

	return nil
}

// Written returns the number of patients written so far.
func (s *Sink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.written
}

// Close closes the underlying file of a rotating sink.
func (s *Sink) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

// Decode reads every patient from a JSON Lines stream.
func Decode(r io.Reader) ([]arrivals.Patient, error) {
	var patients []arrivals.Patient

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		if len(scanner.Bytes()) == 0 {
			continue
		}

		var patient arrivals.Patient
		if err := api.Unmarshal(scanner.Bytes(), &patient); err != nil {
			return nil, errors.Join(ErrDecodeFailed, err)
		}
		patients = append(patients, patient)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Join(ErrDecodeFailed, err)
	}

	return patients, nil
}

var _ arrivals.PersistenceSink = (*Sink)(nil)
