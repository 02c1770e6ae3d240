package csvdb

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"strconv"

	cidrman "github.com/EvilSuperstars/go-cidrman"

	"github.com/juju/errors"
)

// DatetimeLayout is a layout of the datetime field of the Record.
const DatetimeLayout = "2006-01-02T15:04:05"

// Fields is an ordered list of columns in V7 data set.
var Fields = []string{
	"start_ip_int",
	"end_ip_int",
	"continent",
	"country",
	"country_code",
	"country_cf",
	"region",
	"state",
	"state_code",
	"state_cf",
	"city",
	"city_cf",
	"postal_code",
	"area_code",
	"time_zone",
	"latitude",
	"longitude",
	"dma",
	"msa",
	"connection_type",
	"line_speed",
	"ip_routing_type",
	"asn",
	"sld",
	"tld",
	"organization",
	"carrier",
	"anonymizer_status",
}

// Record presents a normalized geolocation record in Whip format. Nil
// pointers are serialized as null.
type Record struct {
	Begin            string   `json:"begin"`
	End              string   `json:"end"`
	Continent        *string  `json:"continent"`
	Country          *string  `json:"country"`
	CountryCode      *string  `json:"country_code"`
	CountryCF        *int64   `json:"country_cf"`
	Region           *string  `json:"region"`
	State            *string  `json:"state"`
	StateCode        *string  `json:"state_code"`
	StateCF          *int64   `json:"state_cf"`
	City             *string  `json:"city"`
	CityCF           *int64   `json:"city_cf"`
	PostalCode       *string  `json:"postal_code"`
	AreaCode         *string  `json:"area_code"`
	TimeZone         *string  `json:"time_zone"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	ConnectionType   *string  `json:"connection_type"`
	LineSpeed        *string  `json:"line_speed"`
	IPRoutingType    *string  `json:"ip_routing_type"`
	ASN              *int64   `json:"asn"`
	SLD              *string  `json:"sld"`
	TLD              *string  `json:"tld"`
	Organization     *string  `json:"organization"`
	Carrier          *string  `json:"carrier"`
	AnonymizerStatus *string  `json:"anonymizer_status"`
	Datetime         string   `json:"datetime"`
}

// Subnets returns non-overlapping subnets which cover the range of the
// Record.
func (r *Record) Subnets() (subnets []string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch x := rec.(type) {
			case string:
				err = errors.Annotate(errors.New(x), "Incorrect subnets")
			case error:
				err = errors.Annotate(x, "Incorrect subnets")
			}
		}
	}()

	subnets, err = cidrman.IPRangeToCIDRs(r.Begin, r.End)

	return
}

// FormatIPv4 converts an address stored as unsigned 32-bit integer into
// its dotted-quad form.
func FormatIPv4(value uint32) string {
	var addr [4]byte

	binary.BigEndian.PutUint32(addr[:], value)

	return net.IP(addr[:]).String()
}

// ParseIPv4 parses a decimal integer representation of IPv4 address and
// returns its dotted-quad form.
func ParseIPv4(value string) (string, error) {
	num, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return "", err
	}

	return FormatIPv4(uint32(num)), nil
}

// FormatTimeZone converts a fractional hours offset like -3.5 into
// ±HH:MM form (-03:30).
func FormatTimeZone(offset float64) string {
	sign := '+'
	if offset < 0 {
		sign = '-'
	}

	minutes := int(math.Round(math.Abs(offset) * 60))

	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}
