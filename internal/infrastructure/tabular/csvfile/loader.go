// Package csvfile loads HIV screening datasets from delimited text files.
package csvfile

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/turtacn/hivscreen/internal/domain/screening"
	"github.com/turtacn/hivscreen/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hivscreen/pkg/errors"
)

// candidateDelimiters are tried, in order, when the delimiter is not fixed.
var candidateDelimiters = []rune{',', ';', '\t', '|'}

const (
	utf8BOM = "\uFEFF"

	// ctxCheckEvery is how many rows are read between context checks.
	ctxCheckEvery = 4096
)

// Loader reads a delimited file into a screening.Table.
type Loader struct {
	Schema screening.Schema
	// Delimiter fixes the field separator.  Zero means sniff it from the
	// header line.
	Delimiter rune
	Logger    logging.Logger
}

// NewLoader returns a Loader for schema.  A nil logger is replaced with a no-op.
func NewLoader(schema screening.Schema, delimiter rune, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{Schema: schema, Delimiter: delimiter, Logger: logger}
}

// Load reads path and returns the validated table.
func (l *Loader) Load(ctx context.Context, path string) (*screening.Table, error) {
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeDatasetNotFound, "dataset file not found").
				WithDetail("path=" + path).WithCause(err)
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to open dataset").WithDetail("path=" + path)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 64*1024)
	if err := skipBOM(br); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read dataset").WithDetail("path=" + path)
	}

	delim := l.Delimiter
	if delim == 0 {
		line, err := peekLine(br)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInternal, "failed to read dataset").WithDetail("path=" + path)
		}
		delim = SniffDelimiter(line)
	}

	r := csv.NewReader(br)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeDatasetParseFailed, "header row is missing").WithDetail("path=" + path)
	}
	if err != nil {
		return nil, parseError(err, path)
	}
	trimAll(header)

	var cells [][]string
	for n := 0; ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeCancelled, "dataset load interrupted").
					WithDetail(fmt.Sprintf("path=%s row=%d", path, n+1))
			}
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, parseError(err, path)
		}
		trimAll(row)
		cells = append(cells, row)
	}

	tbl, err := screening.NewTable(l.Schema, header, cells)
	if err != nil {
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			appErr.Detail = strings.TrimSpace("path=" + path + " " + appErr.Detail)
		}
		return nil, err
	}

	logger.Debug("dataset parsed",
		logging.String("path", path),
		logging.String("delimiter", string(delim)),
		logging.Int("columns", len(header)),
		logging.Int("records", tbl.Len()),
	)
	return tbl, nil
}

// SniffDelimiter picks the candidate delimiter occurring most often in the
// header line, ignoring quoted sections.  Ties go to the earlier candidate;
// a line with none of them yields a comma.
func SniffDelimiter(line string) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	inQuote := false
	for _, c := range line {
		if c == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			counts[c]++
		}
	}
	best, bestN := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestN {
			best, bestN = d, counts[d]
		}
	}
	return best
}

// Digest returns the hex sha256 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.ErrCodeDatasetNotFound, "dataset file not found").WithDetail("path=" + path)
		}
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to open dataset")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to hash dataset")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func skipBOM(br *bufio.Reader) error {
	b, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return err
	}
	if string(b) == utf8BOM {
		_, err = br.Discard(len(utf8BOM))
		return err
	}
	return nil
}

// peekLine returns the first line without consuming it.  A header longer
// than the reader's buffer is truncated, which is enough for sniffing.
func peekLine(br *bufio.Reader) (string, error) {
	b, err := br.Peek(br.Size())
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return "", err
	}
	line := string(b)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return line, nil
}

func trimAll(row []string) {
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
}

func parseError(err error, path string) error {
	detail := "path=" + path
	if pe, ok := err.(*csv.ParseError); ok {
		// Line 1 is the header, so data row numbers are one less.
		detail = fmt.Sprintf("%s row=%d column=%d", detail, pe.StartLine-1, pe.Column)
	}
	return errors.Wrap(err, errors.ErrCodeDatasetParseFailed, "malformed dataset row").WithDetail(detail)
}

//Personal.AI order the ending
