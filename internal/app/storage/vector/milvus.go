package vector

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"video-search/internal/app/model"
)

// milvusAPI is the subset of client.Client used by MilvusIndex.
type milvusAPI interface {
	HasCollection(ctx context.Context, collName string) (bool, error)
	CreateCollection(ctx context.Context, schema *entity.Schema, shardsNum int32, opts ...client.CreateCollectionOption) error
	DropCollection(ctx context.Context, collName string, opts ...client.DropCollectionOption) error
	CreateIndex(ctx context.Context, collName string, fieldName string, idx entity.Index, async bool, opts ...client.IndexOption) error
	LoadCollection(ctx context.Context, collName string, async bool, opts ...client.LoadCollectionOption) error
	Insert(ctx context.Context, collName string, partitionName string, columns ...entity.Column) (entity.Column, error)
	Delete(ctx context.Context, collName string, partitionName string, expr string) error
	Search(ctx context.Context, collName string, partitions []string, expr string, outputFields []string,
		vectors []entity.Vector, vectorField string, metricType entity.MetricType, topK int, sp entity.SearchParam,
		opts ...client.SearchQueryOptionFunc) ([]client.SearchResult, error)
	Close() error
}

const (
	milvusFieldID        = "id"
	milvusFieldVector    = "vector"
	milvusFieldText      = "text"
	milvusFieldVideoID   = "video_id"
	milvusFieldMediaType = "media_type"
	milvusFieldPath      = "path"
	milvusFieldTimestamp = "timestamp"
	milvusFieldStart     = "start_timestamp"
	milvusFieldEnd       = "end_timestamp"
)

var milvusOutputFields = []string{
	milvusFieldID, milvusFieldText, milvusFieldVideoID, milvusFieldMediaType,
	milvusFieldPath, milvusFieldTimestamp, milvusFieldStart, milvusFieldEnd,
}

// MilvusConfig holds connection and HNSW settings.
type MilvusConfig struct {
	Address        string
	Username       string
	Password       string
	Collection     string
	M              int
	EfConstruction int
	Ef             int
}

// MilvusIndex stores text fragment vectors in a Milvus collection with an HNSW cosine index.
type MilvusIndex struct {
	milvus milvusAPI
	cfg    MilvusConfig

	mu     sync.Mutex
	dim    int
	loaded bool
}

// NewMilvusIndex connects to Milvus.
func NewMilvusIndex(ctx context.Context, cfg MilvusConfig) (*MilvusIndex, error) {
	var c client.Client
	var err error
	if cfg.Username != "" && cfg.Password != "" {
		c, err = client.NewClient(ctx, client.Config{
			Address:  cfg.Address,
			Username: cfg.Username,
			Password: cfg.Password,
		})
	} else {
		c, err = client.NewClient(ctx, client.Config{
			Address: cfg.Address,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to milvus: %w", err)
	}
	return newMilvusIndex(c, cfg), nil
}

func newMilvusIndex(api milvusAPI, cfg MilvusConfig) *MilvusIndex {
	if cfg.M <= 0 {
		cfg.M = 16
	}
	if cfg.EfConstruction <= 0 {
		cfg.EfConstruction = 256
	}
	if cfg.Ef <= 0 {
		cfg.Ef = 64
	}
	return &MilvusIndex{milvus: api, cfg: cfg}
}

// MilvusSchema declares the text fragment collection for vectors of dim.
func MilvusSchema(collection string, dim int) *entity.Schema {
	varchar := func(name string, maxLen int) *entity.Field {
		return &entity.Field{
			Name:       name,
			DataType:   entity.FieldTypeVarChar,
			TypeParams: map[string]string{"max_length": strconv.Itoa(maxLen)},
		}
	}

	id := varchar(milvusFieldID, 128)
	id.PrimaryKey = true
	id.AutoID = false

	return &entity.Schema{
		CollectionName: collection,
		Description:    "Transcript chunks for video content search",
		Fields: []*entity.Field{
			id,
			{
				Name:       milvusFieldVector,
				DataType:   entity.FieldTypeFloatVector,
				TypeParams: map[string]string{"dim": strconv.Itoa(dim)},
			},
			varchar(milvusFieldText, 65535),
			varchar(milvusFieldVideoID, 128),
			varchar(milvusFieldMediaType, 16),
			varchar(milvusFieldPath, 512),
			{Name: milvusFieldTimestamp, DataType: entity.FieldTypeInt64},
			{Name: milvusFieldStart, DataType: entity.FieldTypeDouble},
			{Name: milvusFieldEnd, DataType: entity.FieldTypeDouble},
		},
	}
}

// Ensure creates, indexes and loads the collection when it does not exist yet.
func (m *MilvusIndex) Ensure(ctx context.Context, dim int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	has, err := m.milvus.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		if err := m.milvus.CreateCollection(ctx, MilvusSchema(m.cfg.Collection, dim), entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		idx, err := entity.NewIndexHNSW(entity.COSINE, m.cfg.M, m.cfg.EfConstruction)
		if err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
		if err := m.milvus.CreateIndex(ctx, m.cfg.Collection, milvusFieldVector, idx, false); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	if err := m.milvus.LoadCollection(ctx, m.cfg.Collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	m.dim = dim
	m.loaded = true
	return nil
}

// Insert writes all documents in one columnar insert.
func (m *MilvusIndex) Insert(ctx context.Context, docs []IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	n := len(docs)
	ids := make([]string, n)
	vectors := make([][]float32, n)
	texts := make([]string, n)
	videoIDs := make([]string, n)
	mediaTypes := make([]string, n)
	paths := make([]string, n)
	timestamps := make([]int64, n)
	starts := make([]float64, n)
	ends := make([]float64, n)

	for i, d := range docs {
		ids[i] = d.Fragment.ID
		vectors[i] = d.Vector
		texts[i] = d.Fragment.Payload
		videoIDs[i] = d.Fragment.VideoID
		mediaTypes[i] = string(d.Fragment.MediaType)
		paths[i] = d.Fragment.Path
		timestamps[i] = d.Fragment.TimestampMs
		starts[i] = d.Fragment.StartSec
		ends[i] = d.Fragment.EndSec
	}

	_, err := m.milvus.Insert(ctx, m.cfg.Collection, "",
		entity.NewColumnVarChar(milvusFieldID, ids),
		entity.NewColumnFloatVector(milvusFieldVector, len(vectors[0]), vectors),
		entity.NewColumnVarChar(milvusFieldText, texts),
		entity.NewColumnVarChar(milvusFieldVideoID, videoIDs),
		entity.NewColumnVarChar(milvusFieldMediaType, mediaTypes),
		entity.NewColumnVarChar(milvusFieldPath, paths),
		entity.NewColumnInt64(milvusFieldTimestamp, timestamps),
		entity.NewColumnDouble(milvusFieldStart, starts),
		entity.NewColumnDouble(milvusFieldEnd, ends),
	)
	if err != nil {
		return fmt.Errorf("failed to insert documents: %w", err)
	}
	return nil
}

// Delete removes documents by primary key.
func (m *MilvusIndex) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := m.milvus.Delete(ctx, m.cfg.Collection, "", idInExpr(ids)); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}

// Drop removes the collection if it exists.
func (m *MilvusIndex) Drop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	has, err := m.milvus.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	m.loaded = false
	if !has {
		return nil
	}
	return m.milvus.DropCollection(ctx, m.cfg.Collection)
}

// Search returns the nearest documents; a missing collection yields no results.
func (m *MilvusIndex) Search(ctx context.Context, vector []float32, limit int, videoID string) ([]model.Result, error) {
	if err := m.ensureLoaded(ctx); err != nil {
		if err == errMilvusNoCollection {
			return []model.Result{}, nil
		}
		return nil, err
	}

	sp, err := entity.NewIndexHNSWSearchParam(m.cfg.Ef)
	if err != nil {
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	expr := ""
	if videoID != "" {
		expr = fmt.Sprintf("%s == %s", milvusFieldVideoID, strconv.Quote(videoID))
	}

	results, err := m.milvus.Search(ctx,
		m.cfg.Collection,
		nil,
		expr,
		milvusOutputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		milvusFieldVector,
		entity.COSINE,
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	var out []model.Result
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			out = append(out, milvusHit(result, i))
		}
	}
	if out == nil {
		out = []model.Result{}
	}
	return out, nil
}

var errMilvusNoCollection = fmt.Errorf("collection does not exist")

func (m *MilvusIndex) ensureLoaded(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loaded {
		return nil
	}
	has, err := m.milvus.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !has {
		return errMilvusNoCollection
	}
	if err := m.milvus.LoadCollection(ctx, m.cfg.Collection, false); err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}
	m.loaded = true
	return nil
}

// milvusHit converts row i of a search result. COSINE scores are similarities.
func milvusHit(result client.SearchResult, i int) model.Result {
	f := model.Fragment{MediaType: model.ModalityText}
	if col, ok := result.Fields.GetColumn(milvusFieldID).(*entity.ColumnVarChar); ok {
		f.ID = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldText).(*entity.ColumnVarChar); ok {
		f.Payload = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldVideoID).(*entity.ColumnVarChar); ok {
		f.VideoID = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldMediaType).(*entity.ColumnVarChar); ok {
		f.MediaType = model.Modality(col.Data()[i])
	}
	if col, ok := result.Fields.GetColumn(milvusFieldPath).(*entity.ColumnVarChar); ok {
		f.Path = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldTimestamp).(*entity.ColumnInt64); ok {
		f.TimestampMs = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldStart).(*entity.ColumnDouble); ok {
		f.StartSec = col.Data()[i]
	}
	if col, ok := result.Fields.GetColumn(milvusFieldEnd).(*entity.ColumnDouble); ok {
		f.EndSec = col.Data()[i]
	}

	score := result.Scores[i]
	return model.Result{Fragment: f, Distance: 1 - score, Certainty: (1 + score) / 2}
}

func idInExpr(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = strconv.Quote(id)
	}
	return fmt.Sprintf("%s in [%s]", milvusFieldID, strings.Join(quoted, ","))
}

func (m *MilvusIndex) Close() error {
	return m.milvus.Close()
}
