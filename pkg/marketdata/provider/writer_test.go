package provider

import (
	"github.com/GRTran/backtester/internal/types"
)

// mockWriter records writes and can fail after a number of them.
type mockWriter struct {
	writeErr       error
	writeErrAfterN int // Return writeErr after N successful writes (0 means immediate error)
	outputPath     string
	writtenData    []types.MarketData
	writeCallCount int
}

func (m *mockWriter) Initialize() error {
	return nil
}

func (m *mockWriter) Write(data types.MarketData) error {
	m.writeCallCount++
	if m.writeErr != nil && (m.writeErrAfterN == 0 || m.writeCallCount > m.writeErrAfterN) {
		return m.writeErr
	}

	m.writtenData = append(m.writtenData, data)

	return nil
}

func (m *mockWriter) Finalize() (string, error) {
	return m.outputPath, nil
}

func (m *mockWriter) Close() error {
	return nil
}

func (m *mockWriter) GetOutputPath() string {
	return m.outputPath
}
