package legacy

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/9seconds/whip-neustar/csvdb"
	"github.com/juju/errors"
)

// Names of reference blocks.
const (
	RefCarrier = "carrier"
	RefOrg     = "org"
	RefSLD     = "sld"
	RefTLD     = "tld"
)

// Table maps reference id to its value. Empty value means that the
// reference is known but has no meaningful value.
type Table map[int64]string

// References is a set of lookup tables loaded from the reference file.
type References struct {
	Carrier      Table
	Organization Table
	SLD          Table
	TLD          Table
}

// Table returns a table by a name of reference block.
func (r *References) Table(refType string) (Table, bool) {
	switch refType {
	case RefCarrier:
		return r.Carrier, true
	case RefOrg:
		return r.Organization, true
	case RefSLD:
		return r.SLD, true
	case RefTLD:
		return r.TLD, true
	}

	return nil, false
}

// Lookup returns a value for the given reference id.
func (r *References) Lookup(refType string, id int64) (string, bool) {
	table, ok := r.Table(refType)
	if !ok {
		return "", false
	}

	value, ok := table[id]

	return value, ok
}

// NewReferences returns empty set of reference tables.
func NewReferences() *References {
	return &References{
		Carrier:      Table{},
		Organization: Table{},
		SLD:          Table{},
		TLD:          Table{},
	}
}

// LoadReferences reads the whole reference file into memory. File
// consists of blocks: header line ref_type|record_count|max_id and
// record_count lines of id|value.
func LoadReferences(fp io.Reader) (*References, error) {
	reader := newPipeReader(fp)
	refs := NewReferences()

	for {
		header, err := reader.Read()
		if err == io.EOF {
			return refs, nil
		}
		if err != nil {
			return nil, errors.Annotate(err, "Cannot read reference file")
		}

		line, _ := reader.FieldPos(0)
		refType := header[0]

		table, count, maxID, err := parseBlockHeader(refs, line, header)
		if err != nil {
			return nil, err
		}

		if err := loadBlock(reader, refType, table, count, maxID); err != nil {
			return nil, errors.Annotatef(err, "Cannot load %s references", refType)
		}
	}
}

func parseBlockHeader(refs *References, line int, header []string) (Table, int, int64, error) {
	table, ok := refs.Table(header[0])
	if !ok || len(header) != 3 {
		return nil, 0, 0, &csvdb.FormatError{
			Line:   line,
			Value:  strings.Join(header, "|"),
			Reason: "unexpected input in reference data file, expected header line",
		}
	}

	count, err := strconv.Atoi(header[1])
	if err != nil || count < 0 {
		return nil, 0, 0, &csvdb.FormatError{
			Line:   line,
			Value:  header[1],
			Reason: "incorrect record count in reference header",
		}
	}

	maxID, err := strconv.ParseInt(header[2], 10, 64)
	if err != nil {
		return nil, 0, 0, &csvdb.FormatError{
			Line:   line,
			Value:  header[2],
			Reason: "incorrect max id in reference header",
		}
	}

	return table, count, maxID, nil
}

func loadBlock(reader *csv.Reader, refType string, table Table, count int, maxID int64) error {
	for i := 0; i < count; i++ {
		row, err := reader.Read()
		switch {
		case err == io.EOF:
			return &csvdb.FormatError{
				Reason: "reference block is truncated",
				Value:  strconv.Itoa(i) + "/" + strconv.Itoa(count),
			}
		case err != nil:
			return errors.Annotate(err, "Cannot read reference")
		}

		line, _ := reader.FieldPos(0)
		if len(row) != 2 {
			return &csvdb.FormatError{
				Line:   line,
				Value:  strings.Join(row, "|"),
				Reason: "expected id|value pair",
			}
		}

		id, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return &csvdb.FormatError{
				Line:   line,
				Value:  row[0],
				Reason: "reference id is not a number",
			}
		}

		if id > maxID {
			log.WithFields(log.Fields{
				"ref_type": refType,
				"id":       id,
				"max_id":   maxID,
				"line":     line,
			}).Debug("Reference id exceeds declared maximum")
		}

		table[id] = cleanField(row[1])
	}

	return nil
}
