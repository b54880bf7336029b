package main

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"go-file-manager/internal/config"
	"go-file-manager/internal/storage"
)

// Smoke check for the configured blob store: save, read back, delete.
// Run it against a fresh LocalStack, SeaweedFS filer, or local disk
// before pointing the API at it.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage provider %q: %v", cfg.Storage.Provider, err)
	}

	key := fmt.Sprintf("storage-check-%d.txt", time.Now().Unix())
	content := "storage check payload"

	fmt.Printf("Provider: %s\n", cfg.Storage.Provider)

	fmt.Printf("Saving %s...\n", key)
	if err := store.Save(key, strings.NewReader(content)); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	fmt.Println("Reading back...")
	rc, err := store.Open(key)
	if err != nil {
		log.Fatalf("Failed to open: %v", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		log.Fatalf("Failed to read: %v", err)
	}
	if string(data) != content {
		log.Fatalf("Content mismatch: got %q", data)
	}

	fmt.Println("Deleting...")
	if err := store.Delete(key); err != nil {
		log.Fatalf("Failed to delete: %v", err)
	}

	fmt.Println("Storage check completed successfully!")
}
