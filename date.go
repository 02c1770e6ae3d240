package main

import (
	"path/filepath"
	"regexp"
	"time"

	"github.com/juju/errors"
)

const dateLayout = "2006-01-02"

// Data files are named
// <customer_id>_v<data_version>_<internal_id>_<yyyymmdd>.csv.gz,
// for example quova_v470.63_15.27_20100525.csv.gz.
var dataFileRegexp = regexp.MustCompile(
	`^(?P<customer_id>.+)_v(?P<version>.+)_(?P<internal_id>.+)_(?P<date>\d{8})\.csv(?:\.gz)?$`)

type dataFileName struct {
	CustomerID string
	Version    string
	InternalID string
	Date       time.Time
}

func parseDataFileName(path string) (*dataFileName, error) {
	base := filepath.Base(path)

	match := dataFileRegexp.FindStringSubmatch(base)
	if match == nil {
		return nil, errors.Errorf("Unrecognized data file name %q (is it the correct file?)", base)
	}

	date, err := time.Parse("20060102", match[dataFileRegexp.SubexpIndex("date")])
	if err != nil {
		return nil, errors.Annotatef(err, "Incorrect date in file name %q", base)
	}

	return &dataFileName{
		CustomerID: match[dataFileRegexp.SubexpIndex("customer_id")],
		Version:    match[dataFileRegexp.SubexpIndex("version")],
		InternalID: match[dataFileRegexp.SubexpIndex("internal_id")],
		Date:       date,
	}, nil
}

func parseDate(value string) (time.Time, error) {
	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, errors.Annotatef(err, "Incorrect date %q, expected YYYY-MM-DD", value)
	}

	return date, nil
}
