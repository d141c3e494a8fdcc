package query

import "time"

// HourlyCountsRequest carries the already-parsed parameters of one range query.
type HourlyCountsRequest struct {
	CustomerID string
	Start      time.Time
	End        time.Time
}

// HourBucket is one derived data point: the count of events for a customer in
// one calendar hour. The bucket is labeled by its canonical hour start even
// when the counted window was clamped by the query's start or end.
type HourBucket struct {
	HourStart time.Time `json:"hour_start"`
	Count     int64     `json:"count"`
}

// HourlyCountsResponse is the result of a range query. Start and End echo the
// request so a consumer can tell which of the first and last buckets were
// clamped to a sub-hour span.
type HourlyCountsResponse struct {
	CustomerID string       `json:"customer_id"`
	Start      time.Time    `json:"start"`
	End        time.Time    `json:"end"`
	Buckets    []HourBucket `json:"buckets"`
}
