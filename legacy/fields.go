package legacy

import (
	"encoding/csv"
	"io"
)

// Fields is an ordered list of columns in legacy data set.
var Fields = []string{
	"start_ip_int",
	"end_ip_int",
	"cidr",
	"continent",
	"country",
	"country_iso2",
	"country_cf",
	"region",
	"state",
	"state_cf",
	"city",
	"city_cf",
	"postal_code",
	"phone_number_prefix",
	"timezone",
	"latitude",
	"longitude",
	"dma",
	"msa",
	"pmsa",
	"connectiontype",
	"linespeed",
	"ip_routingtype",
	"aol",
	"asn",
	"sld_id",
	"tld_id",
	"reg_org_id",
	"carrier_id",
}

// Legacy format uses 0 for absent numbers.
var numericalFields = []string{
	"asn",
	"city_cf",
	"country_cf",
	"dma",
	"msa",
	"phone_number_prefix",
	"postal_code",
	"state_cf",
}

var renamedFields = map[string]string{
	"connectiontype":      "connection_type",
	"country_iso2":        "country_code",
	"ip_routingtype":      "ip_routing_type",
	"linespeed":           "line_speed",
	"phone_number_prefix": "area_code",
	"timezone":            "time_zone",
}

type referenceField struct {
	field   string
	refType string
	target  string
}

var referenceFields = []referenceField{
	{field: "carrier_id", refType: RefCarrier, target: "carrier"},
	{field: "reg_org_id", refType: RefOrg, target: "organization"},
	{field: "sld_id", refType: RefSLD, target: "sld"},
	{field: "tld_id", refType: RefTLD, target: "tld"},
}

const unknownTimeZone = "999"

func cleanField(value string) string {
	switch value {
	case "unknown", "none":
		return ""
	}

	return value
}

func newPipeReader(fp io.Reader) *csv.Reader {
	reader := csv.NewReader(fp)
	reader.Comma = '|'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	return reader
}
