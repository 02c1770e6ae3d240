package csvdb

import (
	"encoding/binary"
	"net"
	"sort"

	"github.com/juju/errors"
)

// Summary accumulates statistics over a set of records.
type Summary struct {
	Records   int
	Addresses uint64
	Subnets   int

	countries map[string]struct{}
}

// Add takes a record into account. Unlike Reader, it checks that the
// range is not inverted.
func (s *Summary) Add(r *Record) error {
	begin, err := ipv4ToUint(r.Begin)
	if err != nil {
		return errors.Annotatef(err, "Incorrect begin of range")
	}

	end, err := ipv4ToUint(r.End)
	if err != nil {
		return errors.Annotatef(err, "Incorrect end of range")
	}

	if begin > end {
		return errors.Errorf("Range %s-%s is inverted", r.Begin, r.End)
	}

	subnets, err := r.Subnets()
	if err != nil {
		return err
	}

	if s.countries == nil {
		s.countries = map[string]struct{}{}
	}
	if r.CountryCode != nil {
		s.countries[*r.CountryCode] = struct{}{}
	}

	s.Records++
	s.Addresses += uint64(end-begin) + 1
	s.Subnets += len(subnets)

	return nil
}

// Countries returns a sorted list of seen country codes.
func (s *Summary) Countries() []string {
	rv := make([]string, 0, len(s.countries))
	for k := range s.countries {
		rv = append(rv, k)
	}
	sort.Strings(rv)

	return rv
}

func ipv4ToUint(addr string) (uint32, error) {
	ip := net.ParseIP(addr).To4()
	if ip == nil {
		return 0, errors.Errorf("%q is not IPv4 address", addr)
	}

	return binary.BigEndian.Uint32(ip), nil
}
