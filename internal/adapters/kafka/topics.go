package kafka

// Default topics for stream mode. Both can be overridden through config.
const (
	// TopicRequests carries analysis request envelopes
	TopicRequests = "news.analysis.requests"

	// TopicReports carries report envelopes, keyed by request id
	TopicReports = "news.analysis.reports"
)
