package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	v1 "github.com/Satyam-Vyas/order-book/internal/domain/order-consumer/v1"
	"github.com/Satyam-Vyas/order-book/internal/pkg/idgen"
)

func main() {
	var (
		brokers     = flag.String("brokers", "localhost:9092", "Kafka broker addresses (comma-separated)")
		topic       = flag.String("topic", "orders", "Kafka topic name")
		file        = flag.String("file", "", "JSON file with orders (optional, generates orders if not provided)")
		delay       = flag.Duration("delay", 100*time.Millisecond, "Delay between sending orders")
		count       = flag.Int("count", 1000, "Number of orders to generate")
		users       = flag.Int("users", 20, "Number of distinct submitters")
		basePrice   = flag.String("base-price", "100.00", "Base price for orders")
		priceSpread = flag.String("price-spread", "5.00", "Price spread range")
		maxQty      = flag.Int64("max-quantity", 50, "Largest order quantity")
		seed        = flag.Uint64("seed", uint64(time.Now().UnixNano()), "Random seed")
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

	var orders []v1.PlaceOrderEvent
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read file %s: %v", *file, err)
		}
		if err := json.Unmarshal(data, &orders); err != nil {
			log.Fatalf("Failed to parse JSON from file: %v", err)
		}
		log.Printf("Loaded %d orders from file: %s", len(orders), *file)
	} else {
		g := &generator{
			rnd:    rand.New(rand.NewPCG(*seed, *seed>>1)),
			ids:    idgen.New(),
			users:  *users,
			base:   decimal.RequireFromString(*basePrice),
			spread: decimal.RequireFromString(*priceSpread),
			maxQty: *maxQty,
		}
		for i := 0; i < *count; i++ {
			orders = append(orders, g.next(time.Now()))
		}
		log.Printf("Generated %d orders", len(orders))
	}

	log.Printf("Sending orders to Kafka broker: %s, topic: %s", *brokers, *topic)

	sent := 0
	for i, order := range orders {
		value, err := json.Marshal(order)
		if err != nil {
			log.Printf("Failed to marshal order %d: %v", i+1, err)
			continue
		}

		msg := kafka.Message{
			Key:   []byte(order.UserID),
			Value: value,
			Time:  time.Now(),
		}
		if err := writer.WriteMessages(ctx, msg); err != nil {
			log.Printf("Failed to send order %d (%s): %v", i+1, order.EventID, err)
			continue
		}
		sent++

		if (i+1)%100 == 0 || i == len(orders)-1 {
			log.Printf("Sent order %d/%d: %s | %s %s x%d @ %s",
				i+1, len(orders), order.UserID, order.OrderType, order.EventID, order.Quantity, order.Price.StringFixed(2))
		}

		if i < len(orders)-1 {
			time.Sleep(*delay)
		}
	}

	log.Printf("Sent %d of %d orders", sent, len(orders))
}
