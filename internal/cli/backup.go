package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

// Export snapshots the whole store (all profiles, not just the current
// session's) and writes the aggregate to a JSON file. An empty path gets a
// generated lockbox-backup-<random>.json name in the working directory.
func (a *App) Export(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter backup file path (empty for a generated name)", os.Stdout)
	if err != nil {
		return err
	}
	if path == "" {
		suffix, err := common.MakeRandHexString(4)
		if err != nil {
			return err
		}
		path = fmt.Sprintf("lockbox-backup-%s.json", suffix)
	}

	b, err := a.backupService.Export(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	data, err := json.Marshal(b)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Exported %d profile(s), %d object(s)\n", len(b.Profiles), len(b.Objects))
	return nil
}

// Import reads a backup file and upserts its records into the store.
// Importing the same file twice is harmless.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter backup file path", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	var b models.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	if err := a.backupService.Import(ctx, &b); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Imported %d profile(s), %d object(s)\n", len(b.Profiles), len(b.Objects))
	return nil
}
