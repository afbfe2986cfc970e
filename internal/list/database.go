package list

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName      = "collections"
	keyShoppingList = "shopping_list"
	keyScannedItems = "scanned_items"
	keyItemHistory  = "item_history"
)

// Store defines the interface for the persistent store: three independent
// collections, each read and written whole. No transactions span
// collections; the last write to a collection wins.
type Store interface {
	// GetShoppingList returns the stored shopping list, empty when no data
	// exists
	GetShoppingList() ([]ShoppingItem, error)

	// SaveShoppingList replaces the stored shopping list
	SaveShoppingList(items []ShoppingItem) error

	// GetScannedItems returns the stored scanned-item metadata
	GetScannedItems() ([]ScannedItemMetadata, error)

	// SaveScannedItems replaces the stored scanned-item metadata
	SaveScannedItems(items []ScannedItemMetadata) error

	// GetItemHistory returns the stored item-name history
	GetItemHistory() ([]string, error)

	// SaveItemHistory replaces the stored item-name history
	SaveItemHistory(names []string) error

	// Close closes the store
	Close() error
}

// BoltStore implements the Store interface using BoltDB
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore creates a new BoltStore instance
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// getCollection unmarshals the JSON array stored under key into out. A
// missing key leaves out untouched.
func (b *BoltStore) getCollection(key string, out any) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshaling %s: %w", key, err)
		}
		return nil
	})
}

// saveCollection marshals value as a JSON array and replaces the key
func (b *BoltStore) saveCollection(key string, value any) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshaling %s: %w", key, err)
		}
		return tx.Bucket([]byte(bucketName)).Put([]byte(key), data)
	})
}

// GetShoppingList returns the stored shopping list
func (b *BoltStore) GetShoppingList() ([]ShoppingItem, error) {
	items := make([]ShoppingItem, 0)
	if err := b.getCollection(keyShoppingList, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveShoppingList replaces the stored shopping list
func (b *BoltStore) SaveShoppingList(items []ShoppingItem) error {
	return b.saveCollection(keyShoppingList, items)
}

// GetScannedItems returns the stored scanned-item metadata
func (b *BoltStore) GetScannedItems() ([]ScannedItemMetadata, error) {
	items := make([]ScannedItemMetadata, 0)
	if err := b.getCollection(keyScannedItems, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveScannedItems replaces the stored scanned-item metadata
func (b *BoltStore) SaveScannedItems(items []ScannedItemMetadata) error {
	return b.saveCollection(keyScannedItems, items)
}

// GetItemHistory returns the stored item-name history
func (b *BoltStore) GetItemHistory() ([]string, error) {
	names := make([]string, 0)
	if err := b.getCollection(keyItemHistory, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SaveItemHistory replaces the stored item-name history
func (b *BoltStore) SaveItemHistory(names []string) error {
	return b.saveCollection(keyItemHistory, names)
}

// Close closes the database connection
func (b *BoltStore) Close() error {
	return b.db.Close()
}
