package browse

// Option configures a Service.
type Option func(*serviceOptions)

// serviceOptions holds configuration options for the Service.
type serviceOptions struct {
	prefetchThreshold float64
	maxPages          int
	workers           int
	posterSize        int
	detailPosterSize  int
}

func defaultOptions() serviceOptions {
	return serviceOptions{
		prefetchThreshold: DefaultPrefetchThreshold,
		maxPages:          DefaultMaxPages,
		workers:           4,
		posterSize:        200,
		detailPosterSize:  400,
	}
}

// WithPrefetchThreshold sets the scrolled fraction that triggers the next page.
func WithPrefetchThreshold(fraction float64) Option {
	return func(o *serviceOptions) {
		if fraction > 0 && fraction <= 1 {
			o.prefetchThreshold = fraction
		}
	}
}

// WithMaxPages caps how deep a list can be paged.
func WithMaxPages(pages int) Option {
	return func(o *serviceOptions) {
		if pages > 0 {
			o.maxPages = pages
		}
	}
}

// WithWorkers sets the number of concurrent fetch workers.
func WithWorkers(workers int) Option {
	return func(o *serviceOptions) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// WithPosterSizes sets the image widths requested for list rows and detail records.
func WithPosterSizes(list, detail int) Option {
	return func(o *serviceOptions) {
		if list > 0 {
			o.posterSize = list
		}
		if detail > 0 {
			o.detailPosterSize = detail
		}
	}
}
