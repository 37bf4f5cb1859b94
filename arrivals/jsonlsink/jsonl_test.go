package jsonlsink_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals"
	"github.com/AntonStoeckl/hipfracture-arrivals/arrivals/jsonlsink"
)

func fixturePatient(minute arrivals.Minutes) arrivals.Patient {
	return arrivals.Patient{
		RunID:         uuid.MustParse("0191e3b4-8f7a-7cc2-9b1e-2d9a4c1f0a11"),
		Catchment:     "CHO1",
		Year:          "2016",
		Sex:           arrivals.Male,
		HospitalID:    501,
		ResidenceID:   2800,
		Age:           83,
		DiagnosisCode: "S7211",
		FractureType:  arrivals.IntracapsularDisplaced,
		Fragility:     arrivals.FragilityYes,
		ArrivalMinute: minute,
	}
}

func Test_Store_Writes_One_Line_Per_Patient(t *testing.T) {
	// setup
	var buf bytes.Buffer
	sink, err := jsonlsink.NewSink(&buf)
	require.NoError(t, err)

	// act
	require.NoError(t, sink.Store(context.Background(), fixturePatient(0)))
	require.NoError(t, sink.Store(context.Background(), fixturePatient(8477.419354838709)))

	// assert
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{
		"run_id": "0191e3b4-8f7a-7cc2-9b1e-2d9a4c1f0a11",
		"cho": "CHO1",
		"sim_year": "2016",
		"sex": 1,
		"hosp_id": 501,
		"res_id": 2800,
		"age": 83,
		"diag1": "S7211",
		"adm_fracture_type": 1,
		"adm_fragility": 1,
		"arrival_minute": 0
	}`, lines[0])
	assert.Equal(t, 2, sink.Written())
}

func Test_Decode_Reads_What_Store_Wrote(t *testing.T) {
	// setup
	var buf bytes.Buffer
	sink, err := jsonlsink.NewSink(&buf)
	require.NoError(t, err)
	written := []arrivals.Patient{fixturePatient(0), fixturePatient(1440.5)}
	for _, patient := range written {
		require.NoError(t, sink.Store(context.Background(), patient))
	}

	// act
	decoded, err := jsonlsink.Decode(&buf)

	// assert
	require.NoError(t, err)
	assert.Equal(t, written, decoded)
}

func Test_Decode_When_Line_Is_Malformed(t *testing.T) {
	// act
	_, err := jsonlsink.Decode(strings.NewReader("{\"age\": 80}\n{not json}\n"))

	// assert
	assert.ErrorIs(t, err, jsonlsink.ErrDecodeFailed)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func Test_Store_When_Writer_Fails(t *testing.T) {
	// setup
	sink, err := jsonlsink.NewSink(failingWriter{})
	require.NoError(t, err)

	// act
	err = sink.Store(context.Background(), fixturePatient(0))

	// assert
	assert.ErrorIs(t, err, jsonlsink.ErrWriteFailed)
	assert.Equal(t, 0, sink.Written())
}

func Test_Store_Is_Safe_For_Concurrent_Use(t *testing.T) {
	// setup
	var buf bytes.Buffer
	sink, err := jsonlsink.NewSink(&buf)
	require.NoError(t, err)

	// act
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = sink.Store(context.Background(), fixturePatient(arrivals.Minutes(i)))
		}(i)
	}
	wg.Wait()

	// assert
	decoded, err := jsonlsink.Decode(&buf)
	require.NoError(t, err)
	assert.Len(t, decoded, 20)
}

func Test_NewRotatingFileSink_Appends_To_File(t *testing.T) {
	// setup
	path := filepath.Join(t.TempDir(), "patients.jsonl")
	sink, err := jsonlsink.NewRotatingFileSink(path, 1)
	require.NoError(t, err)

	// act
	require.NoError(t, sink.Store(context.Background(), fixturePatient(0)))
	require.NoError(t, sink.Close())

	// assert
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	decoded, err := jsonlsink.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, []arrivals.Patient{fixturePatient(0)}, decoded)
}

func Test_Constructors_Reject_Invalid_Arguments(t *testing.T) {
	// act
	_, nilWriterErr := jsonlsink.NewSink(nil)
	_, emptyPathErr := jsonlsink.NewRotatingFileSink("", 1)

	// assert
	assert.ErrorIs(t, nilWriterErr, jsonlsink.ErrNilWriter)
	assert.ErrorIs(t, emptyPathErr, jsonlsink.ErrEmptyPath)
}
