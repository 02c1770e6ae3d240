package csvdb

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/juju/errors"
)

const (
	colStartIPInt = iota
	colEndIPInt
	colContinent
	colCountry
	colCountryCode
	colCountryCF
	colRegion
	colState
	colStateCode
	colStateCF
	colCity
	colCityCF
	colPostalCode
	colAreaCode
	colTimeZone
	colLatitude
	colLongitude
	colDMA
	colMSA
	colConnectionType
	colLineSpeed
	colIPRoutingType
	colASN
	colSLD
	colTLD
	colOrganization
	colCarrier
	colAnonymizerStatus
)

// Time zone offsets are hours and must fit into ±HH:MM.
const maxTimeZoneOffset = 24

var (
	errNotFinite     = errors.New("value is not a finite number")
	errTimeZoneRange = errors.New("time zone offset is out of range")
)

// ReaderOption customizes Reader.
type ReaderOption func(*Reader)

// WithSkipInvalid makes Reader log and skip rows which cannot be
// parsed instead of failing. A header mismatch is fatal anyway.
func WithSkipInvalid(skip bool) ReaderOption {
	return func(rd *Reader) {
		rd.skipInvalid = skip
	}
}

// Reader is a wrapper over csv.Reader which converts each row of V7 data
// set into Record instance.
type Reader struct {
	reader      *csv.Reader
	datetime    string
	skipInvalid bool
	headerRead  bool
	err         error
	skipped     int
}

// Read returns next Record. It returns io.EOF if there are no more rows.
func (rd *Reader) Read() (*Record, error) {
	if rd.err != nil {
		return nil, rd.err
	}

	if !rd.headerRead {
		if err := rd.readHeader(); err != nil {
			rd.err = err
			return nil, err
		}
	}

	for {
		data, err := rd.reader.Read()
		if err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			rd.err = errors.Annotate(err, "Cannot read new record")
			return nil, rd.err
		}

		line, _ := rd.reader.FieldPos(0)

		record, err := rd.makeRecord(line, data)
		if err == nil {
			return record, nil
		}
		if !rd.skipInvalid {
			rd.err = err
			return nil, err
		}

		rd.skipped++
		log.WithFields(log.Fields{
			"line": line,
			"err":  err,
		}).Warn("Skip invalid record")
	}
}

// Skipped returns a number of rows skipped because they were invalid.
func (rd *Reader) Skipped() int {
	return rd.skipped
}

func (rd *Reader) readHeader() error {
	rd.headerRead = true

	header, err := rd.reader.Read()
	switch {
	case err == io.EOF:
		return &FormatError{Reason: "input is empty, expected header line"}
	case err != nil:
		return errors.Annotate(err, "Cannot read header")
	case header[0] != Fields[0]:
		return &FormatError{
			Line:   1,
			Value:  header[0],
			Reason: "first line does not seem a header line",
		}
	}

	return nil
}

func (rd *Reader) makeRecord(line int, data []string) (*Record, error) {
	if len(data) != len(Fields) {
		return nil, &FormatError{
			Line:   line,
			Value:  strings.Join(data, ","),
			Reason: fmt.Sprintf("expected %d columns, got %d", len(Fields), len(data)),
		}
	}

	row := &rowParser{line: line, data: data}
	record := &Record{
		Begin:            row.ipv4(colStartIPInt),
		End:              row.ipv4(colEndIPInt),
		Continent:        row.str(colContinent),
		Country:          row.str(colCountry),
		CountryCode:      row.str(colCountryCode),
		CountryCF:        row.integer(colCountryCF),
		Region:           row.str(colRegion),
		State:            row.str(colState),
		StateCode:        row.str(colStateCode),
		StateCF:          row.integer(colStateCF),
		City:             row.str(colCity),
		CityCF:           row.integer(colCityCF),
		PostalCode:       row.str(colPostalCode),
		AreaCode:         row.str(colAreaCode),
		TimeZone:         row.timeZone(colTimeZone),
		Latitude:         row.float(colLatitude),
		Longitude:        row.float(colLongitude),
		ConnectionType:   row.str(colConnectionType),
		LineSpeed:        row.str(colLineSpeed),
		IPRoutingType:    row.str(colIPRoutingType),
		ASN:              row.integer(colASN),
		SLD:              row.str(colSLD),
		TLD:              row.str(colTLD),
		Organization:     row.str(colOrganization),
		Carrier:          row.str(colCarrier),
		AnonymizerStatus: row.str(colAnonymizerStatus),
		Datetime:         rd.datetime,
	}

	if row.err != nil {
		return nil, row.err
	}

	return record, nil
}

// rowParser keeps the first coercion error so a record can be built in
// one expression.
type rowParser struct {
	line int
	data []string
	err  error
}

func (r *rowParser) fail(idx int, err error) {
	if r.err == nil {
		r.err = &ParseError{
			Line:  r.line,
			Field: Fields[idx],
			Value: r.data[idx],
			Err:   err,
		}
	}
}

func (r *rowParser) str(idx int) *string {
	if r.data[idx] == "" {
		return nil
	}

	value := r.data[idx]

	return &value
}

func (r *rowParser) integer(idx int) *int64 {
	if r.data[idx] == "" {
		return nil
	}

	value, err := strconv.ParseInt(r.data[idx], 10, 64)
	if err != nil {
		r.fail(idx, err)
		return nil
	}

	return &value
}

func (r *rowParser) float(idx int) *float64 {
	if r.data[idx] == "" {
		return nil
	}

	value, err := strconv.ParseFloat(r.data[idx], 64)
	if err != nil {
		r.fail(idx, err)
		return nil
	}

	if math.IsNaN(value) || math.IsInf(value, 0) {
		r.fail(idx, errNotFinite)
		return nil
	}

	return &value
}

func (r *rowParser) ipv4(idx int) string {
	addr, err := ParseIPv4(r.data[idx])
	if err != nil {
		r.fail(idx, err)
	}

	return addr
}

func (r *rowParser) timeZone(idx int) *string {
	offset := r.float(idx)
	if offset == nil {
		return nil
	}

	if math.Abs(*offset) >= maxTimeZoneOffset {
		r.fail(idx, errTimeZoneRange)
		return nil
	}

	value := FormatTimeZone(*offset)

	return &value
}

// NewReader converts given io.Reader with V7 data set into Reader. Each
// record gets effective date as its datetime.
func NewReader(fp io.Reader, effective time.Time, opts ...ReaderOption) *Reader {
	reader := csv.NewReader(fp)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	rd := &Reader{
		reader:   reader,
		datetime: effective.Format(DatetimeLayout),
	}

	for _, opt := range opts {
		opt(rd)
	}

	return rd
}
