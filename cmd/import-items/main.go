// Command import-items catalogs a modpack: it records every mod's id and
// version from the JARs' mods.toml and bulk-registers tradeable items from
// a manifest, so admins don't hand-enter hundreds of catalog rows after a
// pack update.
//
// Usage:
//
//	import-items -jars /srv/minecraft/mods -manifest items.toml
package main

import (
	"archive/zip"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/ktsuchiya/blockmarket-backend/internal/config"
	"github.com/ktsuchiya/blockmarket-backend/internal/db"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// modsToml mirrors the [[mods]] tables of a Forge/NeoForge mods.toml.
type modsToml struct {
	Mods []struct {
		ModID       string `toml:"modId"`
		Version     string `toml:"version"`
		DisplayName string `toml:"displayName"`
	} `toml:"mods"`
}

// itemManifest is the admin-maintained list of tradeable items.
type itemManifest struct {
	Items []struct {
		Name        string `toml:"name"`
		RegistryKey string `toml:"registry_key"`
		ModID       string `toml:"mod_id"`
		StackSize   uint   `toml:"stack_size"`
	} `toml:"items"`
}

func main() {
	jarsDir := flag.String("jars", "", "directory containing mod JARs")
	manifest := flag.String("manifest", "", "TOML manifest of tradeable items")
	flag.Parse()

	if err := run(*jarsDir, *manifest); err != nil {
		log.Fatalf("import failed: %v", err)
	}
}

func run(jarsDir, manifestPath string) error {
	if jarsDir == "" && manifestPath == "" {
		return fmt.Errorf("nothing to do: pass -jars and/or -manifest")
	}
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := conn.AutoMigrate(&model.Item{}, &model.ModVersion{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	var mods []model.ModVersion
	if jarsDir != "" {
		mods, err = scanJars(jarsDir)
		if err != nil {
			return err
		}
	}

	var items []model.Item
	if manifestPath != "" {
		items, err = readManifest(manifestPath)
		if err != nil {
			return err
		}
	}

	// One transaction: a half-imported pack is worse than no import.
	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range mods {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&mods[i]).Error; err != nil {
				return fmt.Errorf("record mod %s: %w", mods[i].ModID, err)
			}
		}
		for i := range items {
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "registry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "mod_id", "stack_size"}),
			}).Create(&items[i]).Error; err != nil {
				return fmt.Errorf("upsert item %s: %w", items[i].RegistryKey, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("imported %d mod versions and %d items", len(mods), len(items))
	return nil
}

func scanJars(dir string) ([]model.ModVersion, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read jars dir: %w", err)
	}
	var mods []model.ModVersion
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jar") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		found, err := readModsToml(path)
		if err != nil {
			// A JAR without metadata (libraries, coremods) is normal.
			log.Printf("skipping %s: %v", e.Name(), err)
			continue
		}
		mods = append(mods, found...)
	}
	return mods, nil
}

// readModsToml opens the JAR as the zip it is and parses
// META-INF/mods.toml.
func readModsToml(jarPath string) ([]model.ModVersion, error) {
	zr, err := zip.OpenReader(jarPath)
	if err != nil {
		return nil, fmt.Errorf("open jar: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "META-INF/mods.toml" && f.Name != "META-INF/neoforge.mods.toml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		var mt modsToml
		if err := toml.Unmarshal(data, &mt); err != nil {
			return nil, fmt.Errorf("parse mods.toml: %w", err)
		}
		var mods []model.ModVersion
		for _, m := range mt.Mods {
			if m.ModID == "" {
				continue
			}
			mods = append(mods, model.ModVersion{
				ModID:       m.ModID,
				Version:     m.Version,
				DisplayName: m.DisplayName,
			})
		}
		return mods, nil
	}
	return nil, fmt.Errorf("no mods.toml")
}

func readManifest(path string) ([]model.Item, error) {
	var mf itemManifest
	if _, err := toml.DecodeFile(path, &mf); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	var items []model.Item
	for _, it := range mf.Items {
		if it.RegistryKey == "" || it.Name == "" {
			return nil, fmt.Errorf("manifest entry missing name or registry_key")
		}
		modID := it.ModID
		if modID == "" {
			modID = strings.SplitN(it.RegistryKey, ":", 2)[0]
		}
		stack := it.StackSize
		if stack == 0 {
			stack = 64
		}
		items = append(items, model.Item{
			Name:        it.Name,
			RegistryKey: it.RegistryKey,
			ModID:       modID,
			StackSize:   stack,
		})
	}
	return items, nil
}
