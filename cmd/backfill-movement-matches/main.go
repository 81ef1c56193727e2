package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/gestionsur/gestion_backend/config"
	"bitbucket.org/gestionsur/gestion_backend/models"
	"gorm.io/gorm"
)

// Backfills movement_matches rows for movements reconciled before the
// join table existed, when the selection lived only in the single
// match_id column. Safe to re-run: movements that already have match
// rows are skipped.
func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would be inserted without writing anything.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}

	// Ensure schema is up-to-date (creates movement_matches if missing).
	models.MigrateTable()

	var pending int64
	err := db.WithContext(ctx).Raw(`
		SELECT COUNT(*)
		FROM bank_movements bm
		WHERE bm.status = 'Reconciled'
			AND bm.match_type IN ('Expense', 'Invoice')
			AND bm.match_id > 0
			AND NOT EXISTS (
				SELECT 1 FROM movement_matches mm WHERE mm.bank_movement_id = bm.id
			)
	`).Scan(&pending).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to count movements needing backfill: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("movements missing match rows: %d\n", pending)
	if pending == 0 {
		return
	}
	if *dryRun {
		fmt.Println("dry-run: nothing written")
		return
	}

	if err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Exec(`
			INSERT INTO movement_matches (bank_movement_id, counterpart_type, counterpart_id, created_at)
			SELECT bm.id, bm.match_type, bm.match_id, NOW()
			FROM bank_movements bm
			WHERE bm.status = 'Reconciled'
				AND bm.match_type IN ('Expense', 'Invoice')
				AND bm.match_id > 0
				AND NOT EXISTS (
					SELECT 1 FROM movement_matches mm WHERE mm.bank_movement_id = bm.id
				)
		`).Error
	}); err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("backfilled %d movements\n", pending)
}
