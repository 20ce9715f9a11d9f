package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/uriel-reyes/sellertools-sub000/internal/config"
	"github.com/uriel-reyes/sellertools-sub000/internal/ctp"
	"github.com/uriel-reyes/sellertools-sub000/internal/service"
)

// Operator tool: list interrupted price workflows and optionally resume them.
//
//	resume-price-workflows            # list
//	resume-price-workflows -id <id>   # resume one
//	resume-price-workflows -all       # resume everything
func main() {
	id := flag.String("id", "", "resume a single workflow by id")
	all := flag.Bool("all", false, "resume every interrupted workflow")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := ctp.NewClient(cfg.Platform, logger)
	checkpoints := service.NewRemoteCheckpointStore(client, logger)
	prices := service.NewPriceService(client, checkpoints, cfg.Price.SettleDelay, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if *id != "" {
		wf, err := prices.Resume(ctx, *id)
		if err != nil {
			logger.Fatal("Resume failed", zap.String("workflowId", *id), zap.Error(err))
		}
		fmt.Printf("workflow %s -> %s\n", wf.ID, wf.State)
		return
	}

	workflows, err := prices.ListInterrupted(ctx)
	if err != nil {
		logger.Fatal("Failed to list interrupted workflows", zap.Error(err))
	}
	if len(workflows) == 0 {
		fmt.Println("no interrupted price workflows")
		return
	}

	failed := 0
	for _, wf := range workflows {
		fmt.Printf("%s  state=%s  product=%s  channel=%s  updated=%s\n",
			wf.ID, wf.State, wf.ProductID, wf.ChannelKey, wf.UpdatedAt.Format(time.RFC3339))
		if !*all {
			continue
		}
		resumed, err := prices.Resume(ctx, wf.ID)
		if err != nil {
			logger.Error("Resume failed", zap.String("workflowId", wf.ID), zap.Error(err))
			failed++
			continue
		}
		fmt.Printf("  -> %s\n", resumed.State)
	}
	if failed > 0 {
		os.Exit(1)
	}
}
