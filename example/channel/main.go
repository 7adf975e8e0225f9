package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hawkmon/breachwatch"
)

func main() {
	flow, err := breachwatch.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink, batches, closeBatches := breachwatch.NewChannelSink("fanout", 32)
	defer closeBatches()

	go fanoutWorker("ingest", batches)

	if err := flow.Run(ctx, breachwatch.StreamOutSink(sink)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}

func fanoutWorker(name string, batches <-chan []breachwatch.Assessment) {
	for batch := range batches {
		for _, e := range batch {
			fmt.Printf("[%s] %s breach level %d/10: %s\n",
				name, time.Now().Format(time.RFC3339), e.Level, e.Recommendation)
		}
	}
}
