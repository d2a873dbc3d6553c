package fieldscope

// Profile is the immutable snapshot produced by Session.Finalize or
// MergeProfiles. Its JSON form is the system's stable wire contract: every
// field MergeProfiles needs is serialized, so a Profile round-trips through
// JSON losslessly and two shards can be merged from their serialized forms.
type Profile struct {
	TotalRecords     int64 `json:"total_records"`
	MalformedRecords int64 `json:"malformed_records"`

	// DiscoveredFields is ordered by presence descending, then path.
	DiscoveredFields []DiscoveredField `json:"discovered_fields"`

	// FieldCategories groups discovered fields by dictionary category.
	FieldCategories map[string]CategoryGroup `json:"field_categories"`

	// ValueDistributions holds the full histogram for every path whose
	// distinct-value count stayed under the cardinality cap. Keyed by path.
	ValueDistributions map[string]Distribution `json:"value_distributions"`

	// TemporalAnalysis is nil when no record carried the timestamp field.
	TemporalAnalysis *TemporalAnalysis `json:"temporal_analysis,omitempty"`

	StructureAnalysis StructureAnalysis `json:"structure_analysis"`
	DataQuality       DataQuality       `json:"data_quality"`

	SchemaRecommendations []SchemaField     `json:"schema_recommendations"`
	MLSuggestions         []ModelSuggestion `json:"ml_suggestions"`
}

// DiscoveredField is the per-path profile within a finalized Profile.
type DiscoveredField struct {
	// Path is the normalized, array-collapsed location, e.g. "mc[].rc[].ltp".
	Path string `json:"path"`

	// PresencePct is ObservedCount / TotalRecords × 100, rounded to one
	// decimal place.
	PresencePct float64 `json:"presence_pct"`

	// ObservedCount is the number of records in which the path appeared at
	// least once. Repeated array elements within one record count once.
	ObservedCount int64 `json:"observed_count"`

	Type ValueType `json:"type"`

	// Examples holds up to the example cap of first-seen scalar values.
	// Order-dependent: deterministic for a fixed record order, and merge
	// order decides which shard's examples survive truncation.
	Examples []any `json:"examples"`

	// Repeated marks paths that pass through a collapsed array segment.
	Repeated bool `json:"repeated"`

	// HighCardinality marks paths whose histogram was discarded after
	// exceeding the cardinality cap. Irreversible.
	HighCardinality bool `json:"high_cardinality"`
}

// Distribution is the categorical value histogram of one low-cardinality path.
type Distribution struct {
	Field        string       `json:"field"`
	UniqueValues int          `json:"unique_values"`
	Values       []ValueCount `json:"distribution"`
}

// ValueCount is one histogram entry. Value is the canonical string form of
// the observed value.
type ValueCount struct {
	Value string  `json:"value"`
	Count int64   `json:"count"`
	Pct   float64 `json:"pct"`
}

// TemporalAnalysis summarizes the span of the configured timestamp field
// (epoch milliseconds).
type TemporalAnalysis struct {
	Start             int64  `json:"start"`
	End               int64  `json:"end"`
	DurationMillis    int64  `json:"duration_ms"`
	Duration          string `json:"duration"`
	TimestampCount    int64  `json:"timestamp_count"`
	AvgIntervalMillis int64  `json:"avg_interval_ms"`
}

// StructureAnalysis describes the shape of the record set independent of
// values.
type StructureAnalysis struct {
	TopLevelFields []string `json:"top_level_fields"`
	ContainerPaths []string `json:"container_paths"`
	MaxDepth       int      `json:"max_depth"`
	UniquePaths    int      `json:"total_unique_paths"`
}

// DataQuality buckets fields by presence percentage: always (100%), mostly
// (≥95%), sometimes (≥50%), rarely (<50%).
type DataQuality struct {
	AlwaysPresent       int      `json:"always_present"`
	MostlyPresent       int      `json:"mostly_present"`
	SometimesPresent    int      `json:"sometimes_present"`
	RarelyPresent       int      `json:"rarely_present"`
	AlwaysPresentFields []string `json:"always_present_fields"`
	RarelyPresentFields []string `json:"rarely_present_fields"`
}

// StorageType is the target type vocabulary for schema recommendations.
type StorageType string

const (
	StorageInteger StorageType = "INTEGER"
	StorageFloat   StorageType = "FLOAT"
	StorageString  StorageType = "STRING"
	StorageBoolean StorageType = "BOOLEAN"
	StorageRecord  StorageType = "RECORD"
)

// SchemaMode is the column mode for schema recommendations.
type SchemaMode string

const (
	ModeRequired SchemaMode = "REQUIRED"
	ModeNullable SchemaMode = "NULLABLE"
	ModeRepeated SchemaMode = "REPEATED"
)

// SchemaField is one column recommendation derived from a Profile.
type SchemaField struct {
	Path   string      `json:"path"`
	Column string      `json:"column"`
	Type   StorageType `json:"type"`
	Mode   SchemaMode  `json:"mode"`
}

// SchemaRecommendation is the full schema derived from a Profile.
type SchemaRecommendation struct {
	Fields []SchemaField `json:"fields"`
	Notes  []string      `json:"notes"`
}

// ModelSuggestion is one entry of the deterministic model rule table.
// Present reports whether every required feature category cleared the
// presence threshold in the profile that produced it.
type ModelSuggestion struct {
	Name               string   `json:"name"`
	Approach           string   `json:"approach"`
	Description        string   `json:"description"`
	RequiredCategories []string `json:"required_feature_categories"`
	KeyFeatures        []string `json:"key_features"`
	Complexity         string   `json:"complexity"`
	Present            bool     `json:"present"`
}

// FieldInfo is one dictionary entry, keyed by leaf field name.
type FieldInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CategoryMeta is the presentation metadata for one dictionary category.
type CategoryMeta struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// Dictionary maps leaf field names to human-readable info and categories to
// presentation metadata. It is an immutable configuration value injected by
// the caller; the engine ships no production dictionary of its own.
type Dictionary struct {
	Fields     map[string]FieldInfo    `json:"fields"`
	Categories map[string]CategoryMeta `json:"categories"`
}

// FieldCategoryInfo is the categorization of a single path.
type FieldCategoryInfo struct {
	HumanName string `json:"human_name"`
	Category  string `json:"category"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
}

// CategoryGroup is one category block within Profile.FieldCategories.
type CategoryGroup struct {
	Icon        string             `json:"icon"`
	Description string             `json:"description"`
	Color       string             `json:"color"`
	FieldCount  int                `json:"field_count"`
	Fields      []CategorizedField `json:"fields"`
}

// CategorizedField is one field within a CategoryGroup.
type CategorizedField struct {
	Path        string    `json:"path"`
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Type        ValueType `json:"type"`
	PresencePct float64   `json:"presence_pct"`
}
