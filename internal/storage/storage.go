package storage

import (
	"log"

	"readinghub/internal/ingest"
	"readinghub/pkg/utils"
)

// New picks the image store for the current configuration: OSS with local
// fallback when fully configured, plain local disk otherwise.
func New(cfg utils.StorageConfig, dataDir string) (ingest.ImageStore, *Local) {
	local := NewLocal(dataDir)
	if cfg.Configured() {
		log.Printf("[storage] using oss bucket %s (%s)", cfg.Bucket, cfg.Endpoint)
		return NewOSS(cfg, local), local
	}
	log.Printf("[storage] using local image storage under %s", local.ImagesDir())
	return local, local
}
