package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hawkmon/breachwatch/pkg/breachwatch"
)

func main() {
	flow, err := breachwatch.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	callback := func(batch []breachwatch.Assessment) error {
		for _, event := range batch {
			fmt.Printf("%s sensor=%s level=%d/10 metrics=%v %s\n",
				event.Timestamp.Format(time.RFC3339Nano),
				event.SensorID,
				event.Level,
				event.Metrics,
				event.Label,
			)
		}
		return nil
	}

	if err := flow.Run(ctx, breachwatch.StreamOutCallback("stdout", callback)); err != nil && err != context.Canceled {
		log.Fatalf("runtime error: %v", err)
	}
}
