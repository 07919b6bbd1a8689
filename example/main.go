package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/openframebox/emitter"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// --- Listener Object Example ---

// AuditListener keeps a log of every event it sees.
type AuditListener struct {
	seen []string
}

func (al *AuditListener) HandleEvent(event *emitter.Event) any {
	al.seen = append(al.seen, event.Type())
	fmt.Printf("[AUDIT] %s\n", event.Type())
	return nil
}

// --- Payload Types ---

type UserCreated struct {
	ID   int
	Name string
}

type PriceQuery struct {
	SKU string
}

func main() {
	app := &cli.App{
		Name:  "emitter-example",
		Usage: "walks through the emitter dispatch modes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config_path",
				Usage:   "sets custom configuration path",
				Aliases: []string{"config", "c"},
			},
		},
		Action: func(c *cli.Context) error {
			config, err := emitter.LoadConfig(c.Context, c.String("config_path"))
			if err != nil {
				return err
			}
			return run(c.Context, config)
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func run(ctx context.Context, config emitter.Config) error {
	fmt.Println("=== Emitter Example ===")

	em := emitter.New(emitter.WithConfig(config))
	audit := &AuditListener{}

	// Catch-all listeners run after type-specific ones.
	em.OnAny(audit)
	em.On("user.created", emitter.Handle(func(e *emitter.Event, u UserCreated) any {
		fmt.Printf("[SYNC] welcome %s (#%d)\n", u.Name, u.ID)
		return nil
	}))

	// Pattern 1: Fire-and-forget
	fmt.Println("\n--- Pattern 1: Emit ---")
	had := em.EmitType("user.created", UserCreated{ID: 123, Name: "ada"})
	fmt.Printf("had listeners: %v\n", had)

	// Pattern 2: Collect every outcome
	fmt.Println("\n--- Pattern 2: EmitAsPromise ---")
	em.On("price", emitter.Handle(func(e *emitter.Event, q PriceQuery) any {
		return emitter.Async(func() (any, error) {
			time.Sleep(10 * time.Millisecond)
			return 42, nil
		})
	}))
	em.On("price", emitter.ListenerFunc(func(e *emitter.Event) any {
		return errors.New("price service unavailable")
	}))

	for i, outcome := range em.EmitAsPromise(ctx, em.CreateEvent("price", PriceQuery{SKU: "A-1"})) {
		if outcome.Fulfilled() {
			fmt.Printf("  #%d value: %v\n", i, outcome.Value)
		} else {
			fmt.Printf("  #%d error: %v\n", i, outcome.Err)
		}
	}

	// Pattern 3: First listener with an answer wins
	fmt.Println("\n--- Pattern 3: EmitAsGenerator ---")
	em.On("resolve", emitter.ListenerFunc(func(e *emitter.Event) any { return "" }))
	em.On("resolve", emitter.ListenerFunc(func(e *emitter.Event) any { return "cache" }))
	em.On("resolve", emitter.ListenerFunc(func(e *emitter.Event) any {
		fmt.Println("  never reached")
		return "network"
	}))

	winner, ok := emitter.First(em.EmitAsGenerator(emitter.NewEvent("resolve", nil)), emitter.Truthy)
	fmt.Printf("winner: %v (%v)\n", winner, ok)

	// Pattern 4: Forwarding through a bus
	fmt.Println("\n--- Pattern 4: Forwarding ---")
	bus := EventBus.New()
	downstream := emitter.New(emitter.WithConfig(config))
	downstream.On("user.created", emitter.ListenerFunc(func(e *emitter.Event) any {
		fmt.Printf("[DOWNSTREAM] got %s\n", e)
		return nil
	}))

	unsubscribe, err := downstream.ListenTo(bus, "user.created")
	if err != nil {
		return err
	}
	defer unsubscribe()

	stop := em.ForwardTo(bus, "user.created")
	defer stop()

	em.EmitType("user.created", UserCreated{ID: 7, Name: "grace"})

	// Pattern 5: One-shot and cancellable listeners
	fmt.Println("\n--- Pattern 5: Once and Cancel ---")
	em.Once("tick", emitter.ListenerFunc(func(e *emitter.Event) any {
		fmt.Println("  first tick only")
		return nil
	}))
	sub := em.On("tick", emitter.ListenerFunc(func(e *emitter.Event) any {
		fmt.Println("  every tick until cancelled")
		return nil
	}))
	em.EmitType("tick", 1)
	sub.Cancel()
	em.EmitType("tick", 2)

	fmt.Println("\n--- Summary ---")
	fmt.Printf("audited events: %v\n", audit.seen)
	fmt.Printf("listener errors recorded: %d\n", len(em.Errors()))

	fmt.Println("\n=== Example Complete ===")
	return nil
}
