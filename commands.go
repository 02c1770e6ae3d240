package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/juju/errors"
	log "github.com/sirupsen/logrus"

	"github.com/9seconds/whip-neustar/config"
	"github.com/9seconds/whip-neustar/csvdb"
	"github.com/9seconds/whip-neustar/legacy"
)

func effectiveDate(inputPath, date string) (time.Time, error) {
	if date != "" {
		return parseDate(date)
	}

	if isStdio(inputPath) {
		return time.Time{}, errors.New("Date is required when reading from stdin")
	}

	log.Info("No date specified; trying to extract from file name")

	name, err := parseDataFileName(inputPath)
	if err != nil {
		return time.Time{}, errors.Annotate(err, "Cannot extract date from file name")
	}

	log.WithFields(log.Fields{
		"customer_id": name.CustomerID,
		"version":     name.Version,
		"internal_id": name.InternalID,
		"date":        name.Date.Format(dateLayout),
	}).Info("Detected data file")

	return name.Date, nil
}

func runConvert(conf *config.Config, inputPath, date, outputPath string) error {
	effective, err := effectiveDate(inputPath, date)
	if err != nil {
		return err
	}

	input, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer input.Close() // nolint: errcheck

	output, err := openOutput(outputPath)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"input": input.name,
		"date":  effective.Format(csvdb.DatetimeLayout),
	}).Info("Converting input file")

	reader := csvdb.NewReader(input, effective, csvdb.WithSkipInvalid(conf.SkipInvalid))

	count, err := csvdb.Dump(reader, output)
	if err != nil {
		output.Close() // nolint: errcheck
		return errors.Annotatef(err, "Cannot convert %s", input.name)
	}

	if err := output.Close(); err != nil {
		return errors.Annotate(err, "Cannot write output")
	}

	log.WithFields(log.Fields{
		"skipped": reader.Skipped(),
	}).Infof("Converted %s records", humanize.Comma(int64(count)))

	return nil
}

func runConvertToV7(conf *config.Config, dataPath, refPath, outputPath string) error {
	if refPath == "" {
		log.Info("No reference file specified; trying to find it based on data file name")

		path, err := referencePath(dataPath, conf)
		if err != nil {
			return err
		}
		refPath = path
	}

	refs, err := loadReferences(refPath)
	if err != nil {
		return err
	}

	input, err := openInput(dataPath)
	if err != nil {
		return err
	}
	defer input.Close() // nolint: errcheck

	output, err := openOutput(outputPath)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"input": input.name,
	}).Info("Converting input file")

	count, err := legacy.Convert(input, refs, output, legacy.WithSkipInvalidRows(conf.SkipInvalid))
	if err != nil {
		output.Close() // nolint: errcheck
		return errors.Annotatef(err, "Cannot convert %s", input.name)
	}

	if err := output.Close(); err != nil {
		return errors.Annotate(err, "Cannot write output")
	}

	log.Infof("Converted %s records", humanize.Comma(int64(count)))

	return nil
}

func loadReferences(path string) (*legacy.References, error) {
	input, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer input.Close() // nolint: errcheck

	log.WithFields(log.Fields{
		"path": path,
	}).Info("Loading reference file into memory")

	refs, err := legacy.LoadReferences(input)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot load reference file %s", path)
	}

	log.WithFields(log.Fields{
		"carrier": len(refs.Carrier),
		"org":     len(refs.Organization),
		"sld":     len(refs.SLD),
		"tld":     len(refs.TLD),
	}).Debug("Loaded references")

	return refs, nil
}

func runStats(conf *config.Config, inputPath string, out io.Writer) error {
	input, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer input.Close() // nolint: errcheck

	reader := csvdb.NewReader(input, time.Time{}, csvdb.WithSkipInvalid(conf.SkipInvalid))
	summary := &csvdb.Summary{}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Annotatef(err, "Cannot read %s", input.name)
		}

		if err := summary.Add(record); err != nil {
			return errors.Annotatef(err, "Incorrect record %s-%s", record.Begin, record.End)
		}
	}

	countries := summary.Countries()

	fmt.Fprintf(out, "records:   %s\n", humanize.Comma(int64(summary.Records)))          // nolint: errcheck
	fmt.Fprintf(out, "skipped:   %s\n", humanize.Comma(int64(reader.Skipped())))         // nolint: errcheck
	fmt.Fprintf(out, "addresses: %s\n", humanize.Comma(int64(summary.Addresses)))        // nolint: errcheck
	fmt.Fprintf(out, "subnets:   %s\n", humanize.Comma(int64(summary.Subnets)))          // nolint: errcheck
	fmt.Fprintf(out, "countries: %d %s\n", len(countries), strings.Join(countries, ",")) // nolint: errcheck

	return nil
}
