package csvdb

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/juju/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dump writes all records of the reader into w as JSON lines: one
// object per line. It returns a number of written records.
func Dump(rd *Reader, w io.Writer) (int, error) {
	encoder := json.NewEncoder(w)
	count := 0

	for {
		record, err := rd.Read()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, err
		}

		if err := encoder.Encode(record); err != nil {
			return count, errors.Annotatef(err, "Cannot serialize record %s-%s", record.Begin, record.End)
		}
		count++
	}
}
