package fieldscope

import "strings"

// maxColumnNameLen matches the BigQuery column name limit; other warehouses
// are looser, so truncating here is safe everywhere.
const maxColumnNameLen = 128

// storageTypeOf maps a lattice type to the storage vocabulary. Mixed is
// conservatively downgraded to STRING so no observed value is unexpressible.
func storageTypeOf(t ValueType) StorageType {
	switch t {
	case TypeInteger:
		return StorageInteger
	case TypeFloat:
		return StorageFloat
	case TypeBoolean:
		return StorageBoolean
	case TypeObject, TypeArray:
		return StorageRecord
	default:
		// string, null, mixed: STRING is lossless for all of them.
		return StorageString
	}
}

// DeriveSchema converts a finalized Profile into a storage schema
// recommendation. Mode is REPEATED for any path that passed through a
// collapsed array (or is itself an array), REQUIRED for paths present in
// every record, NULLABLE otherwise.
func DeriveSchema(p *Profile) SchemaRecommendation {
	return SchemaRecommendation{
		Fields: schemaFields(p.DiscoveredFields, p.TotalRecords),
		Notes: []string{
			"Nested field paths are flattened into column names with underscore separators",
			"MIXED fields are stored as STRING to guarantee losslessness",
			"REPEATED and RECORD fields may need warehouse-specific handling",
		},
	}
}

func schemaFields(fields []DiscoveredField, total int64) []SchemaField {
	out := make([]SchemaField, 0, len(fields))
	for _, f := range fields {
		mode := ModeNullable
		switch {
		case f.Repeated || f.Type == TypeArray:
			mode = ModeRepeated
		case f.ObservedCount == total && total > 0:
			mode = ModeRequired
		}
		out = append(out, SchemaField{
			Path:   f.Path,
			Column: columnName(f.Path),
			Type:   storageTypeOf(f.Type),
			Mode:   mode,
		})
	}
	return out
}

// columnName flattens a path into a valid column identifier: separators
// become underscores, runs collapse, and names that would start with a
// non-letter get an "f_" prefix.
func columnName(path string) string {
	var b strings.Builder
	b.Grow(len(path))

	lastUnderscore := false
	for _, r := range path {
		switch {
		case r == '.' || r == '[' || r == ']' || r == '-':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}

	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "f_"
	}
	if c := name[0]; !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
		name = "f_" + name
	}
	if len(name) > maxColumnNameLen {
		name = name[:maxColumnNameLen]
	}
	return name
}
