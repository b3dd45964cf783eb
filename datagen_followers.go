//go:build datagen_followers
// +build datagen_followers

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"followerspoc/src/domain/entities"
	"followerspoc/src/helper/env"
	"followerspoc/src/infra/postgres"

	"github.com/go-faker/faker/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DataBundle agrupa um usuário recém gerado e as arestas de follow dele
// contra usuários já emitidos anteriormente.
type DataBundle struct {
	User    entities.Entity
	Follows []entities.Follower
}

var entityTypes = []string{"user", "user", "user", "organization", "page"}

func newSQLClient() (*pgxpool.Pool, error) {
	dbHost := env.MustGetString("DB_WRITE_HOST")
	dbPort := env.GetString("DB_WRITE_PORT", "5432")
	dbname := env.MustGetString("DB_NAME")
	dbUser := env.MustGetString("DB_USER")
	dbPassword := env.MustGetString("DB_PASSWORD")
	maxConnections := 100
	return postgres.NewPostgresClient(dbHost, dbPort, dbname, dbUser, dbPassword, maxConnections)
}

func main() {
	rand.Seed(time.Now().UnixNano())

	numEntities := flag.Int("entities", -1, "Número de entidades a serem criadas. Use -1 para infinito.")
	bulkSize := flag.Int("bulk-size", 1000, "Tamanho do lote de inserts")
	maxFollows := flag.Int("max-follows", 20, "Máximo de follows por entidade gerada")
	numConsumers := flag.Int("consumers", 8, "Consumers concorrentes de insert")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := newSQLClient()
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	chanSize := (*bulkSize) * (*numConsumers) * 5
	dataChan := make(chan DataBundle, chanSize)

	var wg sync.WaitGroup
	var totalProcessed, totalErrors int64
	startTime := time.Now()

	// Métricas a cada 2 segundos
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				processed := atomic.LoadInt64(&totalProcessed)
				errors := atomic.LoadInt64(&totalErrors)
				elapsed := time.Since(startTime)
				rate := float64(processed) / elapsed.Seconds()

				fmt.Printf("📊 Processed: %d | Errors: %d | Rate: %.1f/s | Elapsed: %v\n",
					processed, errors, rate, elapsed.Round(time.Second))
			}
		}
	}()

	for i := 0; i < *numConsumers; i++ {
		wg.Add(1)
		go insertConsumer(ctx, &wg, db, dataChan, *bulkSize, i+1, &totalProcessed, &totalErrors)
	}

	wg.Add(1)
	go producer(ctx, &wg, dataChan, *numEntities, *maxFollows)

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n🛑 Shutdown signal received, stopping...")
		cancel()
	}()

	wg.Wait()

	elapsed := time.Since(startTime)
	processed := atomic.LoadInt64(&totalProcessed)
	errors := atomic.LoadInt64(&totalErrors)
	avgRate := float64(processed) / elapsed.Seconds()

	fmt.Printf("\n🏁 Seeding finished!\n")
	fmt.Printf("📊 Total processed: %d\n", processed)
	fmt.Printf("❌ Total errors: %d\n", errors)
	fmt.Printf("⏱️  Total time: %v\n", elapsed.Round(time.Second))
	fmt.Printf("🚀 Average rate: %.1f records/s\n", avgRate)
}

func producer(ctx context.Context, wg *sync.WaitGroup, dataChan chan<- DataBundle, numEntities, maxFollows int) {
	defer wg.Done()
	defer close(dataChan)

	isInfinite := numEntities == -1
	generated := 0

	// Janela de refs recentes para sortear destinos de follow. Não
	// precisa ser global: grafos sociais reais são fortemente locais.
	recent := make([]entities.Ref, 0, 4096)

	for isInfinite || generated < numEntities {
		select {
		case <-ctx.Done():
			fmt.Println("Producer stopping.")
			return
		default:
			user := generateFakeEntity()
			follows := generateFakeFollows(user.Ref(), recent, maxFollows)

			select {
			case dataChan <- DataBundle{User: user, Follows: follows}:
				generated++
				recent = append(recent, user.Ref())
				if len(recent) > 4096 {
					recent = recent[len(recent)-4096:]
				}
				if generated%100 == 0 {
					fmt.Printf("Generated %d entities\n", generated)
				}
			case <-ctx.Done():
				return
			}

			if generated%1000 == 0 {
				time.Sleep(10 * time.Millisecond)
			}
		}
	}
}

func insertConsumer(ctx context.Context, wg *sync.WaitGroup, db *pgxpool.Pool, dataChan <-chan DataBundle, bulkSize, consumerID int, totalProcessed, totalErrors *int64) {
	defer wg.Done()
	log.Printf("🚀 Consumer %d started", consumerID)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	bundles := make([]DataBundle, 0, bulkSize)

	flush := func() {
		if len(bundles) == 0 {
			return
		}
		if err := bulkInsert(ctx, db, bundles); err != nil {
			log.Printf("❌ Consumer %d: ERROR on bulk insert: %v", consumerID, err)
			atomic.AddInt64(totalErrors, 1)
		} else {
			atomic.AddInt64(totalProcessed, int64(len(bundles)))
		}
		bundles = make([]DataBundle, 0, bulkSize)
	}

	for {
		select {
		case b, ok := <-dataChan:
			if !ok {
				flush()
				log.Printf("✅ Consumer %d stopping.", consumerID)
				return
			}
			bundles = append(bundles, b)
			if len(bundles) >= bulkSize {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-ctx.Done():
			log.Printf("🛑 Consumer %d received stop signal.", consumerID)
			return
		}
	}
}

func bulkInsert(ctx context.Context, db *pgxpool.Pool, bundles []DataBundle) error {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// 1. INSERIR TODAS AS ENTIDADES DE UMA VEZ
	types := make([]string, 0, len(bundles))
	references := make([]string, 0, len(bundles))
	properties := make([]string, 0, len(bundles))
	for _, b := range bundles {
		types = append(types, b.User.Type)
		references = append(references, b.User.Reference)
		properties = append(properties, string(b.User.Properties))
	}

	entitySQL := `
		INSERT INTO entities (type, reference, properties)
		SELECT unnest($1::text[]), unnest($2::text[]), unnest($3::jsonb[])
		ON CONFLICT (type, reference) DO NOTHING
	`
	if _, err := tx.Exec(ctx, entitySQL, types, references, properties); err != nil {
		return fmt.Errorf("failed to insert entities: %w", err)
	}

	// 2. INSERIR TODAS AS ARESTAS DE FOLLOW DE UMA VEZ
	senderTypes := make([]string, 0, len(bundles)*4)
	senderIDs := make([]string, 0, len(bundles)*4)
	recipientTypes := make([]string, 0, len(bundles)*4)
	recipientIDs := make([]string, 0, len(bundles)*4)
	statuses := make([]int16, 0, len(bundles)*4)
	for _, b := range bundles {
		for _, f := range b.Follows {
			senderTypes = append(senderTypes, f.SenderType)
			senderIDs = append(senderIDs, f.SenderID)
			recipientTypes = append(recipientTypes, f.RecipientType)
			recipientIDs = append(recipientIDs, f.RecipientID)
			statuses = append(statuses, int16(f.Status))
		}
	}

	if len(senderIDs) > 0 {
		followSQL := `
			INSERT INTO followers (sender_type, sender_id, recipient_type, recipient_id, status)
			SELECT unnest($1::text[]), unnest($2::text[]), unnest($3::text[]), unnest($4::text[]), unnest($5::smallint[])
			ON CONFLICT (sender_type, sender_id, recipient_type, recipient_id) DO NOTHING
		`
		if _, err := tx.Exec(ctx, followSQL, senderTypes, senderIDs, recipientTypes, recipientIDs, statuses); err != nil {
			return fmt.Errorf("failed to insert followers: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// ==== FAKE DATA ====

func generateFakeEntity() entities.Entity {
	entityType := entityTypes[rand.Intn(len(entityTypes))]

	var props map[string]interface{}
	switch entityType {
	case "organization":
		props = map[string]interface{}{
			"company_name": faker.GetRealAddress().City + " " + faker.Word(),
			"email":        faker.Email(),
		}
	case "page":
		props = map[string]interface{}{
			"title": faker.Sentence(),
			"owner": faker.Username(),
		}
	default:
		props = map[string]interface{}{
			"full_name": faker.Name(),
			"email":     faker.Email(),
			"username":  faker.Username(),
		}
	}

	propsBytes, _ := json.Marshal(props)
	return entities.Entity{
		Type:       entityType,
		Reference:  entityType[:1] + "-" + faker.UUIDHyphenated(),
		Properties: propsBytes,
	}
}

func generateFakeFollows(sender entities.Ref, recent []entities.Ref, maxFollows int) []entities.Follower {
	if len(recent) == 0 || maxFollows <= 0 {
		return nil
	}

	numFollows := rand.Intn(maxFollows + 1)
	seen := make(map[entities.Ref]struct{}, numFollows)
	follows := make([]entities.Follower, 0, numFollows)

	for i := 0; i < numFollows; i++ {
		recipient := recent[rand.Intn(len(recent))]
		if recipient.Equals(sender) {
			continue
		}
		if _, dup := seen[recipient]; dup {
			continue
		}
		seen[recipient] = struct{}{}

		// Distribuição aproximada de um grafo real: maioria aceita,
		// cauda de pendentes/negados e raros bloqueios.
		status := entities.StatusAccepted
		switch roll := rand.Float64(); {
		case roll < 0.10:
			status = entities.StatusPending
		case roll < 0.14:
			status = entities.StatusDenied
		case roll < 0.16:
			status = entities.StatusBlocked
		}

		follows = append(follows, entities.Follower{
			SenderType:    sender.Type,
			SenderID:      sender.ID,
			RecipientType: recipient.Type,
			RecipientID:   recipient.ID,
			Status:        status,
		})
	}

	return follows
}
