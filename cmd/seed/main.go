package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/ktsuchiya/blockmarket-backend/internal/config"
	"github.com/ktsuchiya/blockmarket-backend/internal/db"
	"github.com/ktsuchiya/blockmarket-backend/internal/model"
	"github.com/ktsuchiya/blockmarket-backend/internal/repository"
)

// Seeds the vanilla items players trade most. Mod items come in through
// cmd/import-items.
var seedItems = []model.Item{
	{Name: "Emerald", RegistryKey: "minecraft:emerald", ModID: "minecraft", StackSize: 64},
	{Name: "Emerald Block", RegistryKey: "minecraft:emerald_block", ModID: "minecraft", StackSize: 64},
	{Name: "Diamond", RegistryKey: "minecraft:diamond", ModID: "minecraft", StackSize: 64},
	{Name: "Iron Ingot", RegistryKey: "minecraft:iron_ingot", ModID: "minecraft", StackSize: 64},
	{Name: "Gold Ingot", RegistryKey: "minecraft:gold_ingot", ModID: "minecraft", StackSize: 64},
	{Name: "Netherite Ingot", RegistryKey: "minecraft:netherite_ingot", ModID: "minecraft", StackSize: 64},
	{Name: "Elytra", RegistryKey: "minecraft:elytra", ModID: "minecraft", StackSize: 1},
	{Name: "Shulker Box", RegistryKey: "minecraft:shulker_box", ModID: "minecraft", StackSize: 1},
	{Name: "Ender Pearl", RegistryKey: "minecraft:ender_pearl", ModID: "minecraft", StackSize: 16},
	{Name: "Golden Carrot", RegistryKey: "minecraft:golden_carrot", ModID: "minecraft", StackSize: 64},
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
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
	if err := conn.AutoMigrate(&model.Item{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	repo := repository.NewItemRepository(conn)

	var count int64
	if err := conn.WithContext(ctx).Model(&model.Item{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 && os.Getenv("FORCE_SEED") != "true" {
		log.Printf("items already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	for i := range seedItems {
		if err := repo.Upsert(ctx, &seedItems[i]); err != nil {
			return fmt.Errorf("upsert %s: %w", seedItems[i].RegistryKey, err)
		}
	}
	log.Printf("seeded %d items", len(seedItems))
	return nil
}
