package model

import (
	"bytes"
	"errors"
	"testing"
)

type failingWriter struct{ err error }

func (f failingWriter) Write([]byte) (int, error) { return 0, f.err }

func TestWriteCSV(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rows := dailyRows([]Day{{Iteration: 0, Susceptible: 9, Infected: 1}, {Iteration: 1, Susceptible: 8, Infected: 1, Recovered: 1}})
	if err := writeCSV(&buf, []string{"iteration", "susceptible", "infected", "recovered"}, rows); err != nil {
		t.Fatalf("writeCSV() error = %v", err)
	}

	want := "iteration,susceptible,infected,recovered\n0,9,1,0\n1,8,1,1\n"
	if got := buf.String(); got != want {
		t.Errorf("writeCSV() wrote %q, want %q", got, want)
	}
}

func TestWriteCSV_ReportsWriterError(t *testing.T) {
	t.Parallel()

	diskFull := errors.New("no space left on device")
	err := writeCSV(failingWriter{err: diskFull}, []string{"MSOA11CD", "infected"}, [][]string{{"E02000001", "3"}})
	if !errors.Is(err, diskFull) {
		t.Errorf("writeCSV() error = %v, want the writer's error", err)
	}
}
