package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"error": message}
}

func Data(key string, value any) Envelope {
	return Envelope{key: value}
}

// Paginated is the page-number list envelope.
func Paginated[T any](results []T, count int64, page, pageSize int) Envelope {
	if results == nil {
		results = []T{}
	}
	return Envelope{
		"count":     count,
		"page":      page,
		"page_size": pageSize,
		"has_next":  int64(page)*int64(pageSize) < count,
		"results":   results,
	}
}
