package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/requestlog"
	"github.com/segmentio/kafka-go"
)

// generateRequests creates a stream of order-lifecycle requests around a base
// price: mostly creates, with occasional replaces and cancels against ids
// that were created earlier.
func generateRequests(count int, basePrice uint64, priceSpread uint64) []orderv1.Request {
	requests := make([]orderv1.Request, 0, count)
	created := make(map[uint64]orderv1.OrderContent)
	var ids []uint64
	nextID := uint64(1)

	for i := 0; i < count; i++ {
		roll := rand.Float64()

		switch {
		case roll < 0.7 || len(ids) == 0:
			isBid := rand.Float64() < 0.5
			side := orderv1.SideSell
			price := basePrice + uint64(rand.Int63n(int64(priceSpread)))
			if isBid {
				side = orderv1.SideBuy
				price = basePrice - uint64(rand.Int63n(int64(priceSpread)))
			}

			content := orderv1.OrderContent{
				Side:     side,
				Price:    price,
				Quantity: uint64(rand.Int63n(100)) + 1,
			}
			requests = append(requests, orderv1.Request{
				Timestamp: time.Now(),
				OrderID:   nextID,
				Type:      orderv1.RequestTypeCreate,
				Content:   content,
			})
			created[nextID] = content
			ids = append(ids, nextID)
			nextID++

		case roll < 0.85:
			// quantity-only replace; the engine rejects it if the order has
			// already filled or been cancelled
			target := ids[rand.Intn(len(ids))]
			content := created[target]
			content.Quantity = uint64(rand.Int63n(100)) + 1
			requests = append(requests, orderv1.Request{
				Timestamp: time.Now(),
				OrderID:   target,
				Type:      orderv1.RequestTypeReplace,
				Content:   content,
			})

		default:
			target := ids[rand.Intn(len(ids))]
			requests = append(requests, orderv1.Request{
				Timestamp: time.Now(),
				OrderID:   target,
				Type:      orderv1.RequestTypeCancel,
			})
		}
	}

	return requests
}

// loadRequests parses a request log file into requests.
func loadRequests(path string) ([]orderv1.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var requests []orderv1.Request
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		request, err := requestlog.ParseLine(line)
		if err != nil {
			log.Printf("Skipping malformed line: %v", err)
			continue
		}
		requests = append(requests, *request)
	}
	return requests, nil
}

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "order-requests", "Kafka topic name")
		file        = flag.String("file", "", "Request log file (optional, generates requests if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending requests")
		count       = flag.Int("count", 1000, "Number of requests to generate")
		basePrice   = flag.Uint64("base-price", 10_000, "Base price for generated orders")
		priceSpread = flag.Uint64("price-spread", 200, "Price spread range")
	)
	flag.Parse()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(*brokers, ",")...),
		Topic:        *topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	defer writer.Close()

	ctx := context.Background()

	var requests []orderv1.Request
	if *file != "" {
		loaded, err := loadRequests(*file)
		if err != nil {
			log.Fatalf("Failed to load requests from %s: %v", *file, err)
		}
		requests = loaded
		log.Printf("Loaded %d requests from file: %s", len(requests), *file)
	} else {
		log.Printf("Generating %d requests...", *count)
		requests = generateRequests(*count, *basePrice, *priceSpread)
	}

	log.Printf("Sending requests to Kafka broker: %s, topic: %s", *brokers, *topic)

	for i, request := range requests {
		payload, err := json.Marshal(request)
		if err != nil {
			log.Printf("Failed to marshal request %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Value: payload,
			Time:  time.Now(),
		}

		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send request %d (order %d): %v", i+1, request.OrderID, err)
			continue
		}

		if (i+1)%100 == 0 || i == len(requests)-1 {
			log.Printf("Sent request %d/%d: order %d %s", i+1, len(requests), request.OrderID, request.Type)
		}

		if i < len(requests)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Successfully sent all %d requests!", len(requests))
}
