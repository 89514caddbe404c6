package main

import (
	"fmt"
	"log"

	"github.com/localnerve/endowment-crm/internal/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Prints the tables and indexes GORM creates for the CRM models on SQLite.
func main() {
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: database.NewLogger("silent"),
	})
	if err != nil {
		log.Fatal(err)
	}

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	var objects []struct {
		Type string
		Name string
		SQL  string
	}
	if err := db.Raw("SELECT type, name, sql FROM sqlite_master WHERE type IN ('table', 'index') AND sql IS NOT NULL ORDER BY tbl_name, type DESC, name").
		Scan(&objects).Error; err != nil {
		log.Fatal(err)
	}

	for _, o := range objects {
		fmt.Printf("\n=== %s: %s ===\n%s\n", o.Type, o.Name, o.SQL)
	}
}
