// Command delaysim publishes synthetic predicted-delay events, and seeds
// matching risk factors when a database is available. Useful for local
// development and load testing of the risk engine.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freightwatch-systems/risk-engine/internal/config"
	"github.com/freightwatch-systems/risk-engine/internal/messaging"
	natsclient "github.com/freightwatch-systems/risk-engine/internal/messaging/nats"
	"github.com/freightwatch-systems/risk-engine/internal/models"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	count := flag.Int("count", 100, "number of events to publish")
	interval := flag.Duration("interval", 50*time.Millisecond, "delay between events")
	seedFactors := flag.Bool("seed-factors", true, "insert matching rows into shipment_risk_factors")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *count, *interval, *seedFactors); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, count int, interval time.Duration, seedFactors bool) error {
	ctx := context.Background()

	natsCfg := natsclient.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Username = cfg.NATS.Username
	natsCfg.Password = cfg.NATS.Password
	natsCfg.Name = "freightwatch-delaysim"

	js, err := natsclient.NewJetStreamClient(natsCfg)
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	defer js.Close()

	if _, err := js.CreateOrUpdateStream(ctx, natsclient.DelayEventsStream); err != nil {
		return fmt.Errorf("ensure stream: %w", err)
	}

	var pool *pgxpool.Pool
	if seedFactors {
		pool, err = pgxpool.New(ctx, cfg.Database.Postgres.ConnString())
		if err != nil {
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pool.Close()
	}

	fmt.Printf("Publishing %d predicted-delay events to %s\n", count, messaging.SubjectDelayPredicted)

	for i := 0; i < count; i++ {
		event := generateEvent()

		if pool != nil {
			if err := seedFactorRow(ctx, pool, event.ShipmentID); err != nil {
				return fmt.Errorf("seed factors for %s: %w", event.ShipmentID, err)
			}
		}

		data, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		if err := js.Publish(ctx, messaging.SubjectDelayPredicted, data); err != nil {
			return fmt.Errorf("publish event: %w", err)
		}

		if interval > 0 {
			time.Sleep(interval)
		}
	}

	fmt.Printf("Published %d events\n", count)
	return nil
}

// generateEvent produces a delay distribution that exercises all three risk
// levels: roughly a third minor, a third moderate, a third severe.
func generateEvent() models.PredictedDelayEvent {
	var delay int
	switch rand.Intn(3) {
	case 0:
		delay = rand.Intn(61) // 0-60: LOW
	case 1:
		delay = 61 + rand.Intn(120) // 61-180: MEDIUM
	default:
		delay = 181 + rand.Intn(300) // 181+: MEDIUM or HIGH depending on factors
	}

	return models.PredictedDelayEvent{
		ShipmentID:   fmt.Sprintf("SHIP%04d", gofakeit.Number(0, 9999)),
		PredictedETA: time.Now().UTC().Add(time.Duration(6+rand.Intn(72)) * time.Hour),
		DelayMinutes: delay,
		IsDelayed:    delay > 0,
	}
}

func seedFactorRow(ctx context.Context, pool *pgxpool.Pool, shipmentID string) error {
	query := `
		INSERT INTO shipment_risk_factors (shipment_id, route_risk_score, vendor_reliable, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (shipment_id) DO NOTHING
	`
	_, err := pool.Exec(ctx, query,
		shipmentID,
		gofakeit.Float64Range(0, 1),
		gofakeit.Bool(),
	)
	return err
}
