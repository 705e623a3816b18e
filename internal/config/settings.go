package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings is the complete runtime configuration of the indexing and query pipeline.
type Settings struct {
	LogLevel    string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`

	Extraction    ExtractionSettings    `yaml:"extraction"`
	Segmenter     SegmenterSettings     `yaml:"segmenter"`
	Store         StoreSettings         `yaml:"store"`
	Embedding     EmbeddingSettings     `yaml:"embedding"`
	Transcription TranscriptionSettings `yaml:"transcription"`
	Milvus        MilvusSettings        `yaml:"milvus"`
	Postgres      PostgresSettings      `yaml:"postgres"`
	Weaviate      WeaviateSettings      `yaml:"weaviate"`
	Vectorizer    VectorizerSettings    `yaml:"vectorizer"`
	Redis         RedisSettings         `yaml:"redis"`
	MinIO         MinIOSettings         `yaml:"minio"`
	Catalog       CatalogSettings       `yaml:"catalog"`
	Server        ServerSettings        `yaml:"server"`
}

type ExtractionSettings struct {
	FrameInterval   int    `yaml:"frame_interval" validate:"min=1"`
	AudioChunkMs    int    `yaml:"audio_chunk_ms" validate:"min=1"`
	FFmpegPath      string `yaml:"ffmpeg_path" validate:"required"`
	FFprobePath     string `yaml:"ffprobe_path" validate:"required"`
	UploadArtifacts bool   `yaml:"upload_artifacts"`
}

type SegmenterSettings struct {
	Granularities []int `yaml:"granularities" validate:"required,min=1,dive,min=1"`
}

// StoreSettings selects the store variant.
// kind=text indexes transcript chunks only; kind=multimodal indexes text, frames and audio.
type StoreSettings struct {
	Kind       string `yaml:"kind" validate:"oneof=text multimodal"`
	TextIndex  string `yaml:"text_index" validate:"oneof=milvus pgvector memory"`
	Collection string `yaml:"collection" validate:"required"`
	IDScheme   string `yaml:"id_scheme" validate:"oneof=video_uuid uuid"`
	BatchSize  int    `yaml:"batch_size" validate:"min=1,max=10000"`
	Limit      int    `yaml:"limit" validate:"min=1,max=1000"`
}

type EmbeddingSettings struct {
	Provider  string `yaml:"provider" validate:"oneof=openai gemini mock"`
	Model     string `yaml:"model"`
	Dimension int    `yaml:"dimension" validate:"min=1"`
}

type TranscriptionSettings struct {
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type MilvusSettings struct {
	Address        string `yaml:"address"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	M              int    `yaml:"m" validate:"min=2"`
	EfConstruction int    `yaml:"ef_construction" validate:"min=1"`
	Ef             int    `yaml:"ef" validate:"min=1"`
}

type PostgresSettings struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

type WeaviateSettings struct {
	Host           string `yaml:"host"`
	Scheme         string `yaml:"scheme" validate:"oneof=http https"`
	APIKey         string `yaml:"api_key"`
	EfConstruction int    `yaml:"ef_construction" validate:"min=1"`
}

type VectorizerSettings struct {
	URL            string `yaml:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=1"`
}

type RedisSettings struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db" validate:"min=0"`
	TTLMinutes int    `yaml:"ttl_minutes" validate:"min=1"`
}

type MinIOSettings struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type CatalogSettings struct {
	Path string `yaml:"path" validate:"required"`
}

type ServerSettings struct {
	Addr string `yaml:"addr" validate:"required"`
}

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel: "info",
		Extraction: ExtractionSettings{
			FrameInterval: 30,
			AudioChunkMs:  5000,
			FFmpegPath:    "ffmpeg",
			FFprobePath:   "ffprobe",
		},
		Segmenter: SegmenterSettings{
			Granularities: []int{3, 5, 20, 30},
		},
		Store: StoreSettings{
			Kind:       "multimodal",
			TextIndex:  "milvus",
			Collection: "VideoFragments",
			IDScheme:   "video_uuid",
			BatchSize:  100,
			Limit:      10,
		},
		Embedding: EmbeddingSettings{
			Provider:  "openai",
			Model:     "text-embedding-ada-002",
			Dimension: 1536,
		},
		Transcription: TranscriptionSettings{
			Model: "whisper-1",
		},
		Milvus: MilvusSettings{
			Address:        "localhost:19530",
			M:              16,
			EfConstruction: 256,
			Ef:             64,
		},
		Postgres: PostgresSettings{
			Table: "video_fragments",
		},
		Weaviate: WeaviateSettings{
			Host:           "localhost:8080",
			Scheme:         "http",
			EfConstruction: 300,
		},
		Vectorizer: VectorizerSettings{
			TimeoutSeconds: 60,
		},
		Redis: RedisSettings{
			TTLMinutes: 60,
		},
		MinIO: MinIOSettings{
			Bucket: "video-artifacts",
		},
		Catalog: CatalogSettings{
			Path: "./data/catalog.db",
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// LoadSettings reads a YAML settings file over the defaults.
// ${VAR} references are expanded from the environment before parsing.
// An empty path returns the validated defaults.
func LoadSettings(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings file %s: %w", path, err)
		}
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SaveSettings writes settings as YAML, creating parent directories.
func SaveSettings(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

var validate = validator.New()

// ValidateSettings applies struct tag rules and the cross-field requirements of the selected store.
func ValidateSettings(s *Settings) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	switch s.Store.Kind {
	case "text":
		switch s.Store.TextIndex {
		case "milvus":
			if s.Milvus.Address == "" {
				return fmt.Errorf("invalid settings: milvus.address is required for the milvus text index")
			}
		case "pgvector":
			if s.Postgres.DSN == "" {
				return fmt.Errorf("invalid settings: postgres.dsn is required for the pgvector text index")
			}
		}
	case "multimodal":
		if s.Weaviate.Host == "" {
			return fmt.Errorf("invalid settings: weaviate.host is required for the multimodal store")
		}
	}

	if s.Extraction.UploadArtifacts {
		if s.MinIO.Endpoint == "" || s.MinIO.Bucket == "" {
			return fmt.Errorf("invalid settings: minio.endpoint and minio.bucket are required to upload artifacts")
		}
	}
	return nil
}
