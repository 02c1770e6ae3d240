package main

import (
	"bufio"
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/klauspost/compress/gzip"

	"github.com/9seconds/whip-neustar/config"
)

var gzipMagic = []byte{0x1f, 0x8b}

type inputFile struct {
	io.Reader

	name    string
	closers []io.Closer
}

func (i *inputFile) Close() error {
	var err error

	for idx := len(i.closers) - 1; idx >= 0; idx-- {
		if cerr := i.closers[idx].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}

	return err
}

type outputFile struct {
	*bufio.Writer

	file *os.File
}

func (o *outputFile) Close() error {
	if err := o.Flush(); err != nil {
		return err
	}

	if o.file == os.Stdout {
		return nil
	}

	return o.file.Close()
}

func isStdio(path string) bool {
	return path == "" || path == "-"
}

func openInput(path string) (*inputFile, error) {
	if isStdio(path) {
		return wrapInput("<stdin>", ioutil.NopCloser(os.Stdin))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot open input file %s", path)
	}

	return wrapInput(path, file)
}

// wrapInput detects gzip by magic bytes, not by file extension: stdin
// has no name and files are renamed often.
func wrapInput(name string, source io.ReadCloser) (*inputFile, error) {
	buffered := bufio.NewReader(source)
	input := &inputFile{
		Reader:  buffered,
		name:    name,
		closers: []io.Closer{source},
	}

	magic, err := buffered.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		input.Close() // nolint: errcheck
		return nil, errors.Annotatef(err, "Cannot read from %s", name)
	}

	if bytes.Equal(magic, gzipMagic) {
		gzipReader, err := gzip.NewReader(buffered)
		if err != nil {
			input.Close() // nolint: errcheck
			return nil, errors.Annotatef(err, "Incorrect gzip archive %s", name)
		}

		input.Reader = gzipReader
		input.closers = append(input.closers, gzipReader)
	}

	return input, nil
}

func openOutput(path string) (*outputFile, error) {
	if isStdio(path) {
		return &outputFile{Writer: bufio.NewWriter(os.Stdout), file: os.Stdout}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Annotatef(err, "Cannot create output file %s", path)
	}

	return &outputFile{Writer: bufio.NewWriter(file), file: file}, nil
}

// referencePath returns a path to the reference file which lies next to
// the data file: quova.dat.gz -> quova.ref.gz.
func referencePath(dataPath string, conf *config.Config) (string, error) {
	dir, base := filepath.Split(dataPath)

	idx := strings.LastIndex(base, conf.DataExtension)
	if idx < 0 {
		return "", errors.Errorf("Cannot deduce reference file name for %s", dataPath)
	}

	base = base[:idx] + conf.ReferenceExtension + base[idx+len(conf.DataExtension):]

	return filepath.Join(dir, base), nil
}
