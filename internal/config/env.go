package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	CorpusDSN      string
	CorpusDataPath string
	StorageBackend string
	AwsAccessKey   string
	AwsSecretKey   string
	AwsRegion      string
	BucketName     string
	AIAPIKey       string
	EmbedModel     string
	EmbedDim       int
	GenModel       string
	Port           string

	// Segmentation and chunking knobs. TitleFontThreshold is tuned per
	// document-template class; documents with non-standard typography
	// need a different value.
	TitleFontThreshold float64
	MinChars           int
	ChunkMaxLen        int
	ChunkOverlap       int
	PageOffset         int
	TopK               int
}

// LoadConfig loads the environment variables and returns config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		CorpusDSN:      getEnv("CORPUS_DSN", ""),
		CorpusDataPath: getEnv("CORPUS_DATA_PATH", ""),
		StorageBackend: getEnv("STORAGE_BACKEND", "filedir"),
		AwsAccessKey:   getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey:   getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:      getEnv("AWS_REGION", "us-east-2"),
		BucketName:     getEnv("BUCKET_NAME", "lectern-corpus"),
		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		EmbedModel:     getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedDim:       getEnvInt("EMBED_DIM", 768),
		GenModel:       getEnv("GEN_MODEL", "gemini-1.5-flash"),
		Port:           getEnv("PORT", "8080"),

		TitleFontThreshold: getEnvFloat("TITLE_FONT_THRESHOLD", 12),
		MinChars:           getEnvInt("MIN_CHARS", 3),
		ChunkMaxLen:        getEnvInt("CHUNK_MAX_LEN", 2000),
		ChunkOverlap:       getEnvInt("CHUNK_OVERLAP", 200),
		PageOffset:         getEnvInt("PAGE_OFFSET", 2),
		TopK:               getEnvInt("TOP_K", 4),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a number, using default %g", key, v, def)
		return def
	}
	return f
}
