package main

import (
	"context"
	"log"
	"missing-maps-service/internal/adapters/navlink"
	"missing-maps-service/internal/config"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

const reconnectDelay = 5 * time.Second

// logSink prints navigation app events and reports disconnects on lost.
type logSink struct {
	lost chan error
}

func (s *logSink) OnAppInitialized()    { log.Println("navlink: app initialized") }
func (s *logSink) OnUpdate()            { log.Println("navlink: update") }
func (s *logSink) OnVoiceRouterNotify() { log.Println("navlink: voice router notify") }

func (s *logSink) OnNavigationInfo(info navlink.DirectionInfo) {
	log.Printf("navlink: navigation info distance_to=%d turn_type=%d left=%t",
		info.DistanceTo, info.TurnType, info.IsLeftSide)
}

func (s *logSink) OnDisconnected(err error) {
	select {
	case s.lost <- err:
	default:
	}
}

// navwatch follows a navigation app's event socket and logs what it reports.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	url := config.Get("NAVLINK_URL", "")
	if strings.TrimSpace(url) == "" {
		log.Fatal("NAVLINK_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := &logSink{lost: make(chan error, 1)}
	client := navlink.New(url, sink, navlink.WithLogger(log.Printf))
	defer client.Close()

	for {
		if err := connect(ctx, client); err != nil {
			log.Printf("navlink: connect failed url=%s err=%v", url, err)
		} else {
			select {
			case err := <-sink.lost:
				log.Printf("navlink: disconnected err=%v", err)
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return
		}
	}
}

func connect(ctx context.Context, client *navlink.Client) error {
	if err := client.Connect(ctx); err != nil {
		return err
	}
	log.Printf("navlink: connected state=%s", client.State())
	return client.RegisterForVoiceRouterMessages(ctx)
}
