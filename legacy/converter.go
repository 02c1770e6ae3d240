package legacy

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/9seconds/whip-neustar/csvdb"
	"github.com/juju/errors"
)

// ConvertOption customizes Convert.
type ConvertOption func(*converter)

// WithSkipInvalidRows makes Convert log and skip rows which cannot be
// converted instead of failing.
func WithSkipInvalidRows(skip bool) ConvertOption {
	return func(c *converter) {
		c.skipInvalid = skip
	}
}

type converter struct {
	refs        *References
	skipInvalid bool
}

// Convert reads legacy data set from fp and writes it to out in V7
// format, resolving reference ids with refs. It returns a number of
// written records.
func Convert(fp io.Reader, refs *References, out io.Writer, opts ...ConvertOption) (int, error) {
	conv := &converter{refs: refs}
	for _, opt := range opts {
		opt(conv)
	}

	reader := newPipeReader(fp)
	writer := newQuotingWriter(out)
	count := 0

	if err := writer.Write(csvdb.Fields); err != nil {
		return 0, errors.Annotate(err, "Cannot write header")
	}

	for {
		data, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return count, errors.Annotate(err, "Cannot read new record")
		}

		line, _ := reader.FieldPos(0)

		row, err := conv.convert(line, data)
		if err != nil {
			if !conv.skipInvalid {
				return count, err
			}

			log.WithFields(log.Fields{
				"line": line,
				"err":  err,
			}).Warn("Skip invalid record")

			continue
		}

		if err := writer.Write(row); err != nil {
			return count, errors.Annotate(err, "Cannot write record")
		}
		count++
	}

	if err := writer.Flush(); err != nil {
		return count, errors.Annotate(err, "Cannot flush output")
	}

	return count, nil
}

func (c *converter) convert(line int, data []string) ([]string, error) {
	if len(data) < len(Fields) {
		return nil, &csvdb.FormatError{
			Line:   line,
			Value:  strings.Join(data, "|"),
			Reason: "expected " + strconv.Itoa(len(Fields)) + " columns, got " + strconv.Itoa(len(data)),
		}
	}

	record := make(map[string]string, len(Fields)+len(referenceFields))
	for i, name := range Fields {
		record[name] = cleanField(data[i])
	}

	for _, name := range numericalFields {
		if record[name] == "0" {
			record[name] = ""
		}
	}

	for from, to := range renamedFields {
		record[to] = record[from]
		delete(record, from)
	}

	for _, ref := range referenceFields {
		value, err := c.lookup(line, ref, record[ref.field])
		if err != nil {
			return nil, err
		}
		record[ref.target] = value
	}

	if record["time_zone"] == unknownTimeZone {
		record["time_zone"] = ""
	}

	row := make([]string, len(csvdb.Fields))
	for i, name := range csvdb.Fields {
		row[i] = record[name]
	}

	return row, nil
}

func (c *converter) lookup(line int, ref referenceField, rawID string) (string, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return "", &csvdb.FormatError{
			Line:   line,
			Value:  rawID,
			Reason: ref.field + " is not a number",
		}
	}

	value, ok := c.refs.Lookup(ref.refType, id)
	if !ok {
		return "", &LookupError{Line: line, RefType: ref.refType, ID: id}
	}

	return value, nil
}

// quotingWriter writes CSV rows with every field quoted. csv.Writer
// quotes only fields which require it.
type quotingWriter struct {
	writer *bufio.Writer
}

func (q *quotingWriter) Write(row []string) error {
	for i, value := range row {
		if i > 0 {
			q.writer.WriteByte(',') // nolint: errcheck
		}

		q.writer.WriteByte('"')                                    // nolint: errcheck
		q.writer.WriteString(strings.ReplaceAll(value, `"`, `""`)) // nolint: errcheck
		q.writer.WriteByte('"')                                    // nolint: errcheck
	}

	return q.writer.WriteByte('\n')
}

func (q *quotingWriter) Flush() error {
	return q.writer.Flush()
}

func newQuotingWriter(w io.Writer) *quotingWriter {
	return &quotingWriter{writer: bufio.NewWriter(w)}
}
