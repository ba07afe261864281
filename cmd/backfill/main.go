package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/db"
	"rental-backend/internal/repositories"
	"rental-backend/internal/services"
	"rental-backend/internal/timeutil"
)

// Reconciliation sweep for operators: repairs cleared cheques that are
// missing their payment and drains unallocated payment remainders.
func main() {
	dryRun := flag.Bool("dry-run", false, "Report what would change without writing")
	flag.Parse()

	cfg := config.Load()
	pool := db.Connect(cfg)
	defer pool.Close()

	chequeRepo := repositories.NewChequeRepository(pool)
	paymentRepo := repositories.NewPaymentRepository(pool)
	leaseRepo := repositories.NewLeaseRepository(pool)
	allocator := services.NewAllocationService(leaseRepo, paymentRepo, timeutil.System)
	backfill := services.NewBackfillService(chequeRepo, paymentRepo, allocator, timeutil.System)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := backfill.Run(ctx, *dryRun)
	if err != nil {
		log.Fatalf("Backfill failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
}
