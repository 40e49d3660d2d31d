package database

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"itemsync/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PartitionManager hands out one MongoDB collection per partition (tenant or
// subsidiary) and guarantees the natural-key uniqueness index exists before
// the first write. Cross-partition collisions are impossible because lookups
// and writes never leave the partition's collection.
type PartitionManager struct {
	db          *mongo.Database
	collections map[string]*mongo.Collection
	mu          sync.RWMutex
	logger      logger.Logger
	config      *PartitionConfig
}

// PartitionConfig holds naming and index settings for partition collections.
type PartitionConfig struct {
	CollectionPrefix string        `env:"PARTITION_COLLECTION_PREFIX" envDefault:"items_"`
	IndexTimeout     time.Duration `env:"PARTITION_INDEX_TIMEOUT" envDefault:"30s"`
}

// NewPartitionManager creates a partition manager over one database handle.
func NewPartitionManager(db *mongo.Database, config *PartitionConfig, log logger.Logger) *PartitionManager {
	if config == nil {
		config = &PartitionConfig{
			CollectionPrefix: "items_",
			IndexTimeout:     30 * time.Second,
		}
	}
	return &PartitionManager{
		db:          db,
		collections: make(map[string]*mongo.Collection),
		logger:      log,
		config:      config,
	}
}

// CollectionForPartition returns the collection backing a partition,
// creating the unique natural-key index on first use.
func (pm *PartitionManager) CollectionForPartition(ctx context.Context, partition string) (*mongo.Collection, error) {
	if err := ValidatePartitionID(partition); err != nil {
		return nil, err
	}

	pm.mu.RLock()
	if coll, exists := pm.collections[partition]; exists {
		pm.mu.RUnlock()
		return coll, nil
	}
	pm.mu.RUnlock()

	pm.mu.Lock()
	defer pm.mu.Unlock()

	if coll, exists := pm.collections[partition]; exists {
		return coll, nil
	}

	coll := pm.db.Collection(pm.collectionName(partition))

	indexCtx, cancel := context.WithTimeout(ctx, pm.config.IndexTimeout)
	defer cancel()
	if err := pm.ensureNaturalKeyIndex(indexCtx, coll); err != nil {
		return nil, fmt.Errorf("failed to ensure natural key index: %w", err)
	}

	pm.collections[partition] = coll

	pm.logger.WithFields(map[string]interface{}{
		"partition":  partition,
		"collection": coll.Name(),
	}).Info("Initialized partition collection")

	return coll, nil
}

// PartitionCount returns the number of initialized partitions.
func (pm *PartitionManager) PartitionCount() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.collections)
}

// collectionName sanitizes the partition ID for use as a collection name.
func (pm *PartitionManager) collectionName(partition string) string {
	sanitized := strings.ToLower(partition)
	sanitized = strings.ReplaceAll(sanitized, "-", "_")
	sanitized = strings.ReplaceAll(sanitized, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	return pm.config.CollectionPrefix + sanitized
}

// ensureNaturalKeyIndex creates the unique index that turns a concurrent
// double-create into a detectable duplicate key error.
func (pm *PartitionManager) ensureNaturalKeyIndex(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "naturalKey", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_natural_key"),
	})
	return err
}

// ValidatePartitionID validates a partition identifier.
func ValidatePartitionID(partition string) error {
	if partition == "" {
		return fmt.Errorf("partition ID cannot be empty")
	}
	if len(partition) > 100 {
		return fmt.Errorf("partition ID too long (max 100 characters)")
	}
	for _, char := range partition {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '-' || char == '_' || char == '.') {
			return fmt.Errorf("partition ID contains invalid characters")
		}
	}
	return nil
}
