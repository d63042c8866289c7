package cli

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/lockbox/internal/filex"
	"github.com/dmitrijs2005/lockbox/internal/vault/services"
)

// detectContentType resolves the content type of a payload from the file
// extension first, falling back to content sniffing.
func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// Put reads a local file and stores it in the authenticated vault. The
// display name defaults to the file's base name.
func (a *App) Put(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter file path", os.Stdout)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	meta := services.ObjectMeta{
		DisplayName: filepath.Base(path),
		ContentType: detectContentType(path, data),
	}

	o, err := a.objectService.Store(ctx, a.vaultID, a.masterKey, data, meta)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Stored %s (%s, %d bytes)\n", o.ID, o.Kind, o.OriginalSize)
	return nil
}

// Note collects a multi-line text and stores it as a plain-text object.
func (a *App) Note(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter note name", os.Stdout)
	if err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "Enter note text (double Enter to finish):", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	meta := services.ObjectMeta{DisplayName: name, ContentType: "text/plain"}
	o, err := a.objectService.Store(ctx, a.vaultID, a.masterKey, []byte(text), meta)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	fmt.Printf("Stored %s\n", o.ID)
	return nil
}

// List prints a short line for each object in the authenticated vault.
func (a *App) List(ctx context.Context) error {
	items, err := a.objectService.List(ctx, a.vaultID)
	if err != nil {
		return err
	}
	for _, o := range items {
		marker := ""
		if o.Chunked {
			marker = " [chunked]"
		}
		fmt.Printf("%s  %-10s %-30s %d bytes%s\n", o.ID, o.Kind, o.DisplayName, o.OriginalSize, marker)
	}
	return nil
}

// Show fetches a single object by ID, decrypts it with the session master
// key and writes the plaintext to ./download/<display name>.
func (a *App) Show(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter object id to show", os.Stdout)
	if err != nil {
		return err
	}

	items, err := a.objectService.List(ctx, a.vaultID)
	if err != nil {
		return err
	}
	displayName := id
	for _, o := range items {
		if o.ID == id {
			displayName = o.DisplayName
			break
		}
	}

	data, err := a.objectService.Retrieve(ctx, a.vaultID, a.masterKey, id)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureSubDir("download")
	if err != nil {
		return err
	}

	outputFile := filepath.Join(dir, filepath.Base(displayName))
	if err := os.WriteFile(outputFile, data, 0o600); err != nil {
		return err
	}
	log.Printf("File saved to: %s", outputFile)
	return nil
}

// Rename updates an object's display name.
func (a *App) Rename(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter object id to rename", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter new name", os.Stdout)
	if err != nil {
		return err
	}
	return a.objectService.Rename(ctx, id, name)
}

// Delete removes an object by its identifier, prompting the user for the ID.
func (a *App) Delete(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter object id to delete", os.Stdout)
	if err != nil {
		return err
	}
	return a.objectService.Delete(ctx, id)
}
