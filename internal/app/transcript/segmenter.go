package transcript

import (
	"math"
	"strings"

	"video-search/internal/app/model"
)

// DefaultGranularities are the group sizes used when none are configured.
var DefaultGranularities = []int{3, 5, 20, 30}

// Concatenate merges consecutive segments into groups of concatSize.
//
// Group k covers segments [k*n, min((k+1)*n, len)). Its text is the segment texts joined by
// a single space, its start the minimum start and its end the maximum end. A concatSize
// below 1 is treated as 1.
func Concatenate(segments []model.TranscriptSegment, concatSize int) []model.CompositeSegment {
	if concatSize < 1 {
		concatSize = 1
	}
	if len(segments) == 0 {
		return []model.CompositeSegment{}
	}

	out := make([]model.CompositeSegment, 0, (len(segments)+concatSize-1)/concatSize)
	for lo := 0; lo < len(segments); lo += concatSize {
		hi := lo + concatSize
		if hi > len(segments) {
			hi = len(segments)
		}
		group := segments[lo:hi]

		texts := make([]string, len(group))
		start, end := math.Inf(1), math.Inf(-1)
		for i, s := range group {
			texts[i] = s.Text
			start = math.Min(start, s.Start)
			end = math.Max(end, s.End)
		}
		out = append(out, model.CompositeSegment{
			Text:  strings.Join(texts, " "),
			Start: start,
			End:   end,
		})
	}
	return out
}

// ChunkTranscript runs Concatenate once per granularity over the same segments and
// returns the results in granularity order.
func ChunkTranscript(segments []model.TranscriptSegment, granularities []int) []model.CompositeSegment {
	var chunks []model.CompositeSegment
	for _, n := range granularities {
		chunks = append(chunks, Concatenate(segments, n)...)
	}
	if chunks == nil {
		return []model.CompositeSegment{}
	}
	return chunks
}
