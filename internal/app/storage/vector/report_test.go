package vector

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"video-search/internal/app/model"
)

func TestInsertReportFailedIDs(t *testing.T) {
	report := &InsertReport{
		Total:     5,
		IDs:       []string{"a", "b", "c", "d", "e"},
		Succeeded: []int{0, 1},
		Failed:    []BatchFailure{{Index: 2, Offset: 4, Size: 1, Err: fmt.Errorf("timeout")}},
	}

	assert.Equal(t, 4, report.Inserted())
	assert.Equal(t, []string{"e"}, report.FailedIDs())
	assert.Equal(t, []string{"a", "b", "c", "d"}, report.InsertedIDs())
	assert.Contains(t, report.Err().Error(), "1 of 3 batches failed")
	assert.Contains(t, report.Err().Error(), "batch 2 (1 items): timeout")
}

func TestParseIDScheme(t *testing.T) {
	testCases := []struct {
		in      string
		want    IDScheme
		wantErr bool
	}{
		{"", IDVideoUUID, false},
		{"video_uuid", IDVideoUUID, false},
		{"uuid", IDUUID, false},
		{"sequential", "", true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseIDScheme(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIDSchemeNewID(t *testing.T) {
	id := IDVideoUUID.NewID("talk")
	assert.Regexp(t, `^talk_[0-9a-f-]{36}$`, id)
	assert.NotEqual(t, id, IDVideoUUID.NewID("talk"))
	assert.Len(t, IDVideoUUID.NewID(""), 36)
}

func TestDefaultSchema(t *testing.T) {
	schema := DefaultSchema("VideoFragments", 0)

	assert.Equal(t, DefaultEfConstruction, schema.EfConstruction)
	assert.Equal(t, "cosine", schema.Distance)

	vectorized := map[string]model.Modality{}
	for _, p := range schema.Properties {
		if p.Vectorized {
			vectorized[p.Name] = p.Modality
		}
	}
	assert.Equal(t, map[string]model.Modality{
		PropText:  model.ModalityText,
		PropImage: model.ModalityImage,
		PropAudio: model.ModalityAudio,
	}, vectorized)
	assert.Equal(t, PropAudio, PayloadProperty(model.ModalityAudio))
	assert.Equal(t, PropText, PayloadProperty(model.ModalityText))
}
