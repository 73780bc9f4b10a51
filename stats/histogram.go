package stats

// DefaultBuckets is the number of histogram buckets on the areas index.
const DefaultBuckets = 50

// Bucket is one bar of the climbs-per-area histogram.
type Bucket struct {
	Index    int     `json:"index"`
	Lower    int     `json:"lower"`
	Midpoint float64 `json:"midpoint"`
	Count    int     `json:"count"`
}

// Histogram spreads values over n buckets of equal integer width
// ceil(max/n). Values past the last bucket (only the maximum can be) are
// counted in it. Empty buckets are kept with a zero count.
func Histogram(values []int, n int) []Bucket {
	if n <= 0 {
		return nil
	}
	max := 0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	width := (max + n - 1) / n
	if width < 1 {
		width = 1
	}

	buckets := make([]Bucket, n)
	for i := range buckets {
		buckets[i] = Bucket{
			Index:    i,
			Lower:    i * width,
			Midpoint: float64(i*width) + float64(width)/2,
		}
	}
	for _, v := range values {
		if v < 0 {
			v = 0
		}
		i := v / width
		if i >= n {
			i = n - 1
		}
		buckets[i].Count++
	}
	return buckets
}

// BucketWidth returns the width Histogram uses for buckets.
func BucketWidth(buckets []Bucket) int {
	if len(buckets) < 2 {
		if len(buckets) == 1 {
			return int(buckets[0].Midpoint * 2)
		}
		return 0
	}
	return buckets[1].Lower - buckets[0].Lower
}

// InRange reports whether the bucket midpoint lies within [lo, hi].
func (b Bucket) InRange(lo, hi float64) bool {
	return b.Midpoint >= lo && b.Midpoint <= hi
}
