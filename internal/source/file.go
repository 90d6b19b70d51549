package source

import (
	"os"

	"github.com/pulsestack/pulse-sentinel/internal/normalize"
	"github.com/pulsestack/pulse-sentinel/internal/utils"
)

// LoadFile reads a JSON batch of raw heartbeat records from disk. A top level
// that is not an array surfaces as an InputShapeError.
func LoadFile(path string) ([]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.NewAppError("source.LoadFile", "read events file", err)
	}
	return normalize.DecodeBatch(data)
}
