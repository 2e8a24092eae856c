//go:build !linux

package transport

import (
	"fmt"
	"os"
)

// OpenSerial opens device as is; line settings must be made outside the
// process on this platform.
func OpenSerial(device string, baud int) (*os.File, error) {
	f, err := os.OpenFile(device, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	return f, nil
}
