package mapper

import "github.com/conduit-lang/typegen/internal/typegen/tsast"

// DefaultUntypedPlaceholder is used for maps and structs that declare no fields
const DefaultUntypedPlaceholder = "Record<string, any>"

// Alias is a named string type declared once in the generated preamble
type Alias struct {
	Name        string
	Description string
}

// Aliases lists the alias declarations primitive mappings refer to, in preamble order
var Aliases = []Alias{
	{Name: "UUID", Description: "UUID string"},
	{Name: "ULID", Description: "ULID string"},
	{Name: "Decimal", Description: "Arbitrary precision decimal, serialized as a string"},
	{Name: "ISODate", Description: "ISO 8601 date (YYYY-MM-DD)"},
	{Name: "ISOTime", Description: "ISO 8601 time"},
	{Name: "ISOTimeUsec", Description: "ISO 8601 time with microsecond precision"},
	{Name: "UtcDateTime", Description: "ISO 8601 UTC datetime"},
	{Name: "UtcDateTimeUsec", Description: "ISO 8601 UTC datetime with microsecond precision"},
	{Name: "NaiveDateTime", Description: "ISO 8601 datetime without a time zone"},
	{Name: "Duration", Description: "ISO 8601 duration"},
	{Name: "Binary", Description: "Base64 encoded binary"},
}

// primitiveTable maps source primitive names to target types. Names are matched
// exactly, so a more specific name (utc_datetime_usec) never falls back to a less
// specific one (utc_datetime).
var primitiveTable = map[string]tsast.Type{
	"string":    tsast.String,
	"text":      tsast.String,
	"ci_string": tsast.String,
	"markdown":  tsast.String,
	"email":     tsast.String,
	"url":       tsast.String,
	"phone":     tsast.String,
	"atom":      tsast.String,

	"int":     tsast.Number,
	"integer": tsast.Number,
	"bigint":  tsast.Number,
	"float":   tsast.Number,

	"bool":    tsast.Boolean,
	"boolean": tsast.Boolean,

	"decimal":           tsast.Ref("Decimal"),
	"uuid":              tsast.Ref("UUID"),
	"uuid_v7":           tsast.Ref("UUID"),
	"ulid":              tsast.Ref("ULID"),
	"date":              tsast.Ref("ISODate"),
	"time":              tsast.Ref("ISOTime"),
	"time_usec":         tsast.Ref("ISOTimeUsec"),
	"timestamp":         tsast.Ref("UtcDateTime"),
	"utc_datetime":      tsast.Ref("UtcDateTime"),
	"datetime":          tsast.Ref("UtcDateTime"),
	"timestamp_usec":    tsast.Ref("UtcDateTimeUsec"),
	"utc_datetime_usec": tsast.Ref("UtcDateTimeUsec"),
	"naive_datetime":    tsast.Ref("NaiveDateTime"),
	"duration":          tsast.Ref("Duration"),
	"binary":            tsast.Ref("Binary"),
	"file":              tsast.Ref("File"),
}

// untypedPrimitives map to the configured untyped placeholder
var untypedPrimitives = map[string]bool{
	"json":  true,
	"jsonb": true,
	"map":   true,
	"term":  true,
}
