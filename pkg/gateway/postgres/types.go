package postgres

import "fmt"

// typeNameFromOID maps PostgreSQL type OIDs to readable type names for
// result metadata. Unknown OIDs fall back to the numeric form so callers
// still see something actionable for exotic or extension types.
func typeNameFromOID(oid uint32) string {
	if name, ok := oidTypeNames[oid]; ok {
		return name
	}
	return fmt.Sprintf("OID(%d)", oid)
}

var oidTypeNames = map[uint32]string{
	16:   "BOOL",
	17:   "BYTEA",
	18:   "CHAR",
	19:   "NAME",
	20:   "INT8",
	21:   "INT2",
	23:   "INT4",
	25:   "TEXT",
	26:   "OID",
	114:  "JSON",
	142:  "XML",
	700:  "FLOAT4",
	701:  "FLOAT8",
	790:  "MONEY",
	1042: "BPCHAR",
	1043: "VARCHAR",
	1082: "DATE",
	1083: "TIME",
	1114: "TIMESTAMP",
	1184: "TIMESTAMPTZ",
	1186: "INTERVAL",
	1266: "TIMETZ",
	1700: "NUMERIC",
	2950: "UUID",
	3802: "JSONB",

	// Array types.
	1000: "BOOL[]",
	1001: "BYTEA[]",
	1005: "INT2[]",
	1007: "INT4[]",
	1009: "TEXT[]",
	1015: "VARCHAR[]",
	1016: "INT8[]",
	1021: "FLOAT4[]",
	1022: "FLOAT8[]",
	1115: "TIMESTAMP[]",
	1182: "DATE[]",
	1185: "TIMESTAMPTZ[]",
	1231: "NUMERIC[]",
	2951: "UUID[]",
	3807: "JSONB[]",
}
