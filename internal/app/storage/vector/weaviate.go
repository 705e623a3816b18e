package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"video-search/internal/app/errors"
	"video-search/internal/app/model"
)

// weaviateModule is the multimodal vectorizer module configured on the collection.
const weaviateModule = "multi2vec-bind"

// WeaviateConfig holds connection settings.
type WeaviateConfig struct {
	Host   string
	Scheme string
	APIKey string
}

// WeaviateBackend stores fragments in a Weaviate class vectorized by multi2vec-bind.
// Text and image queries are vectorized by Weaviate; audio is not.
type WeaviateBackend struct {
	client *weaviate.Client
}

// NewWeaviateBackend creates a client for the configured instance.
func NewWeaviateBackend(cfg WeaviateConfig) (*WeaviateBackend, error) {
	wcfg := weaviate.Config{
		Host:   cfg.Host,
		Scheme: cfg.Scheme,
	}
	if cfg.APIKey != "" {
		wcfg.AuthConfig = auth.ApiKey{Value: cfg.APIKey}
	}
	client, err := weaviate.NewClient(wcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %w", err)
	}
	return &WeaviateBackend{client: client}, nil
}

func (w *WeaviateBackend) NativeModalities() []model.Modality {
	return []model.Modality{model.ModalityText, model.ModalityImage}
}

func (w *WeaviateBackend) CollectionExists(ctx context.Context, name string) (bool, error) {
	return w.client.Schema().ClassExistenceChecker().WithClassName(name).Do(ctx)
}

func (w *WeaviateBackend) CreateCollection(ctx context.Context, schema CollectionSchema) error {
	return w.client.Schema().ClassCreator().WithClass(weaviateClass(schema)).Do(ctx)
}

// weaviateClass maps a schema onto a Weaviate class definition.
func weaviateClass(schema CollectionSchema) *models.Class {
	fields := map[model.Modality][]string{}
	props := make([]*models.Property, 0, len(schema.Properties))
	for _, p := range schema.Properties {
		prop := &models.Property{
			Name:     p.Name,
			DataType: []string{string(p.DataType)},
		}
		if p.Vectorized {
			fields[p.Modality] = append(fields[p.Modality], p.Name)
		} else {
			prop.ModuleConfig = map[string]interface{}{
				weaviateModule: map[string]interface{}{"skip": true},
			}
		}
		if p.DataType == DataText && !p.Vectorized {
			prop.Tokenization = models.PropertyTokenizationField
		}
		props = append(props, prop)
	}

	return &models.Class{
		Class:      schema.Name,
		Vectorizer: weaviateModule,
		ModuleConfig: map[string]interface{}{
			weaviateModule: map[string]interface{}{
				"textFields":  fields[model.ModalityText],
				"imageFields": fields[model.ModalityImage],
				"audioFields": fields[model.ModalityAudio],
			},
		},
		VectorIndexType: "hnsw",
		VectorIndexConfig: map[string]interface{}{
			"efConstruction": schema.EfConstruction,
			"distance":       schema.Distance,
		},
		Properties: props,
	}
}

func (w *WeaviateBackend) DeleteCollection(ctx context.Context, name string) error {
	return w.client.Schema().ClassDeleter().WithClassName(name).Do(ctx)
}

// InsertMany writes one batch; any per-object error fails the batch.
func (w *WeaviateBackend) InsertMany(ctx context.Context, collection string, fragments []model.Fragment) error {
	objects := make([]*models.Object, len(fragments))
	for i, f := range fragments {
		objects[i] = &models.Object{
			Class:      collection,
			ID:         strfmt.UUID(f.ID),
			Properties: weaviateProperties(f),
		}
	}

	resp, err := w.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return err
	}
	var msgs []string
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil {
			for _, e := range r.Result.Errors.Error {
				msgs = append(msgs, fmt.Sprintf("%s: %s", r.ID, e.Message))
			}
		}
	}
	if len(msgs) > 0 {
		return fmt.Errorf("%d object errors: %s", len(msgs), strings.Join(msgs, "; "))
	}
	return nil
}

// weaviateProperties stores the payload under the property of its modality.
func weaviateProperties(f model.Fragment) map[string]interface{} {
	return map[string]interface{}{
		PayloadProperty(f.MediaType): f.Payload,
		PropPath:                     f.Path,
		PropMediaType:                string(f.MediaType),
		PropVideoID:                  f.VideoID,
		PropTimestamp:                f.TimestampMs,
		PropStart:                    f.StartSec,
		PropEnd:                      f.EndSec,
	}
}

func (w *WeaviateBackend) DeleteByIDs(ctx context.Context, collection string, ids []string) error {
	for _, id := range ids {
		err := w.client.Data().Deleter().WithClassName(collection).WithID(id).Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete %s: %w", id, err)
		}
	}
	return nil
}

func (w *WeaviateBackend) NearNative(ctx context.Context, collection string, modality model.Modality, value string, opts SearchOptions) ([]model.Result, error) {
	get := w.get(collection, opts)
	switch modality {
	case model.ModalityText:
		get = get.WithNearText(w.client.GraphQL().NearTextArgBuilder().WithConcepts([]string{value}))
	case model.ModalityImage:
		get = get.WithNearImage(w.client.GraphQL().NearImageArgBuilder().WithImage(value))
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedModality, "weaviate cannot vectorize %s", modality)
	}
	return runGet(ctx, get, collection)
}

func (w *WeaviateBackend) NearVector(ctx context.Context, collection string, vector []float32, opts SearchOptions) ([]model.Result, error) {
	get := w.get(collection, opts).
		WithNearVector(w.client.GraphQL().NearVectorArgBuilder().WithVector(vector))
	return runGet(ctx, get, collection)
}

func (w *WeaviateBackend) get(collection string, opts SearchOptions) *graphql.GetBuilder {
	get := w.client.GraphQL().Get().
		WithClassName(collection).
		WithFields(weaviateFields()...).
		WithLimit(opts.Limit)
	if where := weaviateWhere(opts); where != nil {
		get = get.WithWhere(where)
	}
	return get
}

func weaviateFields() []graphql.Field {
	fields := make([]graphql.Field, 0, len(ReturnProperties)+1)
	for _, p := range ReturnProperties {
		fields = append(fields, graphql.Field{Name: p})
	}
	return append(fields, graphql.Field{
		Name: "_additional",
		Fields: []graphql.Field{
			{Name: "id"},
			{Name: "distance"},
			{Name: "certainty"},
		},
	})
}

// weaviateWhere filters on media type and video id; nil when neither is set.
func weaviateWhere(opts SearchOptions) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if opts.MediaType != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{PropMediaType}).
			WithOperator(filters.Equal).
			WithValueText(string(opts.MediaType)))
	}
	if opts.VideoID != "" {
		operands = append(operands, filters.Where().
			WithPath([]string{PropVideoID}).
			WithOperator(filters.Equal).
			WithValueText(opts.VideoID))
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	}
	return filters.Where().WithOperator(filters.And).WithOperands(operands)
}

func runGet(ctx context.Context, get *graphql.GetBuilder, collection string) ([]model.Result, error) {
	resp, err := get.Do(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}
	return parseGetResponse(resp.Data, collection)
}

// parseGetResponse reads data.Get.<collection> into ranked results.
func parseGetResponse(data map[string]models.JSONObject, collection string) ([]model.Result, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected graphql response: missing Get")
	}
	raw, ok := get[collection].([]interface{})
	if !ok {
		if get[collection] == nil {
			return []model.Result{}, nil
		}
		return nil, fmt.Errorf("unexpected graphql response for %s", collection)
	}

	results := make([]model.Result, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		results = append(results, parseObject(obj))
	}
	return results, nil
}

func parseObject(obj map[string]interface{}) model.Result {
	var r model.Result
	f := &r.Fragment

	f.MediaType = model.Modality(stringProp(obj, PropMediaType))
	f.VideoID = stringProp(obj, PropVideoID)
	f.Path = stringProp(obj, PropPath)
	f.Payload = stringProp(obj, PayloadProperty(f.MediaType))
	f.TimestampMs = int64(numberProp(obj, PropTimestamp))
	f.StartSec = numberProp(obj, PropStart)
	f.EndSec = numberProp(obj, PropEnd)

	if add, ok := obj["_additional"].(map[string]interface{}); ok {
		f.ID = stringProp(add, "id")
		r.Distance = float32(numberProp(add, "distance"))
		r.Certainty = float32(numberProp(add, "certainty"))
	}
	return r
}

func stringProp(obj map[string]interface{}, key string) string {
	s, _ := obj[key].(string)
	return s
}

func numberProp(obj map[string]interface{}, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}

// Close is a no-op; the client holds no persistent connection.
func (w *WeaviateBackend) Close() error { return nil }
