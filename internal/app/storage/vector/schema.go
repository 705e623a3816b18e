package vector

import "video-search/internal/app/model"

// DataType of a collection property.
type DataType string

const (
	DataText   DataType = "text"
	DataBlob   DataType = "blob"
	DataInt    DataType = "int"
	DataNumber DataType = "number"
)

// Property names shared by all backends.
const (
	PropText      = "text"
	PropImage     = "image"
	PropAudio     = "audio"
	PropPath      = "path"
	PropMediaType = "media_type"
	PropVideoID   = "video_id"
	PropTimestamp = "timestamp"
	PropStart     = "start_timestamp"
	PropEnd       = "end_timestamp"
)

// Property declares one field of a collection.
// Vectorized properties feed the embedding of their modality; the rest are plain metadata.
type Property struct {
	Name       string
	DataType   DataType
	Vectorized bool
	Modality   model.Modality
}

// CollectionSchema declares a multimodal collection.
type CollectionSchema struct {
	Name           string
	Properties     []Property
	EfConstruction int
	Distance       string
}

// DefaultEfConstruction is the HNSW build parameter used when none is configured.
const DefaultEfConstruction = 300

// DefaultSchema declares one vectorized property per modality plus the fragment metadata.
func DefaultSchema(name string, efConstruction int) CollectionSchema {
	if efConstruction <= 0 {
		efConstruction = DefaultEfConstruction
	}
	return CollectionSchema{
		Name:           name,
		EfConstruction: efConstruction,
		Distance:       "cosine",
		Properties: []Property{
			{Name: PropText, DataType: DataText, Vectorized: true, Modality: model.ModalityText},
			{Name: PropImage, DataType: DataBlob, Vectorized: true, Modality: model.ModalityImage},
			{Name: PropAudio, DataType: DataBlob, Vectorized: true, Modality: model.ModalityAudio},
			{Name: PropPath, DataType: DataText},
			{Name: PropMediaType, DataType: DataText},
			{Name: PropVideoID, DataType: DataText},
			{Name: PropTimestamp, DataType: DataInt},
			{Name: PropStart, DataType: DataNumber},
			{Name: PropEnd, DataType: DataNumber},
		},
	}
}

// ReturnProperties are fetched for every hit.
var ReturnProperties = []string{
	PropMediaType, PropVideoID, PropTimestamp, PropPath, PropText, PropImage, PropAudio, PropStart, PropEnd,
}

// PayloadProperty is the vectorized property that holds a fragment of modality m.
func PayloadProperty(m model.Modality) string {
	switch m {
	case model.ModalityImage:
		return PropImage
	case model.ModalityAudio:
		return PropAudio
	}
	return PropText
}
