package fieldscope

import "log/slog"

// Defaults for the tunable knobs. Each has a matching With* option and a
// FIELDSCOPE_* environment variable in the CLI config.
const (
	// DefaultMaxDepth is the walker's depth ceiling. Real market-stream
	// payloads nest four or five levels; 64 leaves room without letting a
	// hostile tree run away.
	DefaultMaxDepth = 64

	// DefaultExampleCap is the number of example values kept per path
	// (first-seen, deterministic for a fixed record order).
	DefaultExampleCap = 5

	// DefaultCardinalityCap is the distinct-value ceiling for a path's
	// histogram. Once exceeded the histogram is discarded for good and the
	// path is flagged high-cardinality.
	DefaultCardinalityCap = 50

	// DefaultTimestampPath is the dotted path of the publish-time field
	// folded into the temporal analysis.
	DefaultTimestampPath = "pt"

	// DefaultSuggestionThresholdPct is the presence percentage a category
	// must reach before it counts toward a model suggestion.
	DefaultSuggestionThresholdPct = 50.0
)

// Option configures a Session, MergeProfiles, or SuggestModels call.
type Option func(*settings)

type settings struct {
	maxDepth               int
	exampleCap             int
	cardinalityCap         int
	timestampPath          string
	suggestionThresholdPct float64
	dictionary             Dictionary
	logger                 *slog.Logger
}

func newSettings(opts []Option) settings {
	s := settings{
		maxDepth:               DefaultMaxDepth,
		exampleCap:             DefaultExampleCap,
		cardinalityCap:         DefaultCardinalityCap,
		timestampPath:          DefaultTimestampPath,
		suggestionThresholdPct: DefaultSuggestionThresholdPct,
	}
	for _, fn := range opts {
		fn(&s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// WithMaxDepth overrides the walker depth ceiling.
func WithMaxDepth(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxDepth = n
		}
	}
}

// WithExampleCap overrides the number of example values kept per path.
func WithExampleCap(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.exampleCap = n
		}
	}
}

// WithCardinalityCap overrides the distinct-value ceiling for per-path
// histograms.
func WithCardinalityCap(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.cardinalityCap = n
		}
	}
}

// WithTimestampPath overrides the dotted path of the timestamp field
// (epoch milliseconds) folded into the temporal analysis. An empty path
// disables temporal analysis.
func WithTimestampPath(path string) Option {
	return func(s *settings) { s.timestampPath = path }
}

// WithSuggestionThreshold overrides the presence percentage a feature
// category must reach before it counts toward a model suggestion.
func WithSuggestionThreshold(pct float64) Option {
	return func(s *settings) {
		if pct >= 0 && pct <= 100 {
			s.suggestionThresholdPct = pct
		}
	}
}

// WithDictionary injects the field dictionary used to categorize discovered
// paths. Without one, every field lands in the Uncategorized group.
func WithDictionary(d Dictionary) Option {
	return func(s *settings) { s.dictionary = d }
}

// WithLogger sets the structured logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}
