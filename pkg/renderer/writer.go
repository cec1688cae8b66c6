package renderer

import (
	"bufio"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Writer emits the two sparse output streams: "<prefix>" with one
// "pixelX pixelY depth" line per hit and "<prefix>.real.xyz" with the
// matching "realX realY realZ" line. Rows correspond one to one between
// the files. Both files exist even when the scene produces no hits.
type Writer struct {
	pixelFile *os.File
	realFile  *os.File
	pixel     *bufio.Writer
	real      *bufio.Writer
}

// NewWriter creates (or truncates) both output files
func NewWriter(prefix string) (*Writer, error) {
	pixelFile, err := os.Create(prefix)
	if err != nil {
		return nil, errors.Wrap(err, "creating pixel output")
	}

	realFile, err := os.Create(prefix + ".real.xyz")
	if err != nil {
		pixelFile.Close()
		return nil, errors.Wrap(err, "creating real output")
	}

	return &Writer{
		pixelFile: pixelFile,
		realFile:  realFile,
		pixel:     bufio.NewWriter(pixelFile),
		real:      bufio.NewWriter(realFile),
	}, nil
}

// Write appends one record to both streams
func (w *Writer) Write(record DepthRecord) error {
	pixelLine := strconv.Itoa(record.PixelX) + " " +
		strconv.Itoa(record.PixelY) + " " +
		formatFloat(record.Depth) + "\n"
	if _, err := w.pixel.WriteString(pixelLine); err != nil {
		return errors.Wrap(err, "writing pixel record")
	}

	realLine := formatFloat(record.RealX) + " " +
		formatFloat(record.RealY) + " " +
		formatFloat(record.RealZ) + "\n"
	if _, err := w.real.WriteString(realLine); err != nil {
		return errors.Wrap(err, "writing real record")
	}

	return nil
}

// Close flushes and closes both streams, reporting the first failure
func (w *Writer) Close() error {
	var firstErr error
	for _, flush := range []func() error{w.pixel.Flush, w.real.Flush, w.pixelFile.Close, w.realFile.Close} {
		if err := flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return errors.Wrap(firstErr, "closing output")
}

// WriteRecords writes all records under the given output prefix
func WriteRecords(prefix string, records []DepthRecord) error {
	writer, err := NewWriter(prefix)
	if err != nil {
		return err
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			writer.Close()
			return err
		}
	}

	return writer.Close()
}

// formatFloat renders a float as its shortest round-trip decimal form
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
