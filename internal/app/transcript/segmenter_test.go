package transcript

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"video-search/internal/app/model"
)

func sampleSegments() []model.TranscriptSegment {
	return []model.TranscriptSegment{
		{Text: "Hello", Start: 0, End: 1},
		{Text: "world", Start: 2, End: 3},
		{Text: "This", Start: 4, End: 5},
		{Text: "is GPT", Start: 6, End: 7},
		{Text: "Nice to meet you!", Start: 8, End: 10},
	}
}

func TestConcatenate(t *testing.T) {
	got := Concatenate(sampleSegments(), 2)

	expected := []model.CompositeSegment{
		{Text: "Hello world", Start: 0, End: 3},
		{Text: "This is GPT", Start: 4, End: 7},
		{Text: "Nice to meet you!", Start: 8, End: 10},
	}
	assert.Equal(t, expected, got)
}

func TestConcatenateEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		segments   []model.TranscriptSegment
		concatSize int
		expected   []model.CompositeSegment
	}{
		{
			name:       "empty input",
			segments:   nil,
			concatSize: 3,
			expected:   []model.CompositeSegment{},
		},
		{
			name:       "size larger than input",
			segments:   sampleSegments()[:2],
			concatSize: 10,
			expected:   []model.CompositeSegment{{Text: "Hello world", Start: 0, End: 3}},
		},
		{
			name:       "size one keeps segments",
			segments:   sampleSegments()[:2],
			concatSize: 1,
			expected: []model.CompositeSegment{
				{Text: "Hello", Start: 0, End: 1},
				{Text: "world", Start: 2, End: 3},
			},
		},
		{
			name:       "non positive size treated as one",
			segments:   sampleSegments()[:1],
			concatSize: 0,
			expected:   []model.CompositeSegment{{Text: "Hello", Start: 0, End: 1}},
		},
		{
			name: "bounds use min and max",
			segments: []model.TranscriptSegment{
				{Text: "b", Start: 5, End: 9},
				{Text: "a", Start: 1, End: 4},
			},
			concatSize: 2,
			expected:   []model.CompositeSegment{{Text: "b a", Start: 1, End: 9}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Concatenate(tt.segments, tt.concatSize))
		})
	}
}

func TestConcatenateGroupCount(t *testing.T) {
	segments := make([]model.TranscriptSegment, 47)
	for i := range segments {
		segments[i] = model.TranscriptSegment{Text: "w", Start: float64(i), End: float64(i) + 1}
	}

	for _, n := range []int{1, 3, 5, 20, 30, 47, 100} {
		got := Concatenate(segments, n)
		assert.Len(t, got, (len(segments)+n-1)/n, "concat size %d", n)
		assert.Equal(t, 0.0, got[0].Start)
		assert.Equal(t, 47.0, got[len(got)-1].End)
	}
}

func TestChunkTranscript(t *testing.T) {
	got := ChunkTranscript(sampleSegments(), []int{2, 5})

	assert.Len(t, got, 4)
	assert.Equal(t, "Hello world", got[0].Text)
	assert.Equal(t, "Nice to meet you!", got[2].Text)
	assert.Equal(t, model.CompositeSegment{Text: "Hello world This is GPT Nice to meet you!", Start: 0, End: 10}, got[3])
}

func TestChunkTranscriptDefaultGranularities(t *testing.T) {
	// 5 segments: ceil(5/3)+ceil(5/5)+1+1
	got := ChunkTranscript(sampleSegments(), DefaultGranularities)
	assert.Len(t, got, 5)
}

func TestChunkTranscriptEmpty(t *testing.T) {
	assert.Empty(t, ChunkTranscript(nil, DefaultGranularities))
	assert.NotNil(t, ChunkTranscript(nil, nil))
}
