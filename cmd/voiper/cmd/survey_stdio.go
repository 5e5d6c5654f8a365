package cmd

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// SurveyIO holds the streams interactive prompts read from and write to
type SurveyIO struct {
	In  terminal.FileReader
	Out terminal.FileWriter
	Err terminal.FileWriter
}

// DefaultSurveyIO is used by every prompt; tests replace it
var DefaultSurveyIO = SurveyIO{
	In:  os.Stdin,
	Out: os.Stdout,
	Err: os.Stderr,
}

// AskOptions returns the survey options binding prompts to these streams
func (s SurveyIO) AskOptions(extra ...survey.AskOpt) []survey.AskOpt {
	return append([]survey.AskOpt{survey.WithStdio(s.In, s.Out, s.Err)}, extra...)
}

// MockFileReader adapts an io.Reader to terminal.FileReader
type MockFileReader struct {
	Reader io.Reader
}

func (m *MockFileReader) Read(p []byte) (n int, err error) {
	return m.Reader.Read(p)
}

func (m *MockFileReader) Fd() uintptr {
	return 0
}

// MockFileWriter adapts an io.Writer to terminal.FileWriter
type MockFileWriter struct {
	Writer io.Writer
}

func (m *MockFileWriter) Write(p []byte) (n int, err error) {
	return m.Writer.Write(p)
}

func (m *MockFileWriter) Fd() uintptr {
	return 0
}

// CreateTestSurveyIO creates a SurveyIO reading the given input
func CreateTestSurveyIO(input string) SurveyIO {
	return SurveyIO{
		In:  &MockFileReader{strings.NewReader(input)},
		Out: &MockFileWriter{new(bytes.Buffer)},
		Err: &MockFileWriter{new(bytes.Buffer)},
	}
}
