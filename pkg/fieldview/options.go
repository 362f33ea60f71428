package fieldview

import (
	"time"

	"github.com/crimson-sun/fieldview/internal/engine/flatten"
)

type options struct {
	provider    string
	endpoint    string
	token       string
	timeout     time.Duration
	extra       map[string]string
	shapes      []flatten.Shape
	timeField   string
	delimiter   string
	totalColumn string
	dedupField  string
	cache       bool
}

// Option configures a Client.
type Option func(*options)

// WithProvider selects the connector provider. Default: "kobo".
func WithProvider(name string) Option {
	return func(o *options) { o.provider = name }
}

// WithEndpoint sets an explicit data endpoint, overriding the asset-based
// URL. Use this for self-hosted API instances.
func WithEndpoint(url string) Option {
	return func(o *options) { o.endpoint = url }
}

// WithToken sets the API token sent as "Authorization: Token <value>".
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithAsset sets the form asset UID used to build the data endpoint.
func WithAsset(uid string) Option {
	return func(o *options) { o.extra["asset"] = uid }
}

// WithExtra sets a provider-specific option, such as "path" for the static
// file provider.
func WithExtra(key, value string) Option {
	return func(o *options) { o.extra[key] = value }
}

// WithTimeout sets the per-request HTTP timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithComposite declares a space-delimited composite field to split into
// named columns. Columns listed in numeric are coerced to numbers, with
// failures becoming nulls.
func WithComposite(field string, columns, numeric []string) Option {
	return func(o *options) {
		o.shapes = append(o.shapes, flatten.Shape{
			Field:   field,
			Columns: columns,
			Numeric: numeric,
		})
	}
}

// WithTimeField names the submission timestamp field used by date filters.
// Default: "_submission_time".
func WithTimeField(name string) Option {
	return func(o *options) { o.timeField = name }
}

// WithListDelimiter sets the separator used when joining list-valued fields.
// Default: ", ".
func WithListDelimiter(d string) Option {
	return func(o *options) { o.delimiter = d }
}

// WithTotalColumn names the numeric column summed into the summary total.
func WithTotalColumn(name string) Option {
	return func(o *options) { o.totalColumn = name }
}

// WithDedupField names the submission identifier used to drop duplicate
// fetch results, the last occurrence winning. Default: "_id". Pass an empty
// string to disable deduplication.
func WithDedupField(name string) Option {
	return func(o *options) { o.dedupField = name }
}

// WithoutCache disables per-source fetch memoization; every Load hits the
// upstream API.
func WithoutCache() Option {
	return func(o *options) { o.cache = false }
}

func defaultOptions() options {
	return options{
		provider:   "kobo",
		timeout:    10 * time.Second,
		extra:      map[string]string{},
		timeField:  "_submission_time",
		delimiter:  ", ",
		dedupField: "_id",
		cache:      true,
	}
}
