package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tg "github.com/go-telegram/bot"

	"github.com/safememefi/riskscan/internal/analyzer"
	"github.com/safememefi/riskscan/internal/api"
	"github.com/safememefi/riskscan/internal/config"
	"github.com/safememefi/riskscan/internal/health"
	"github.com/safememefi/riskscan/internal/mentions"
	"github.com/safememefi/riskscan/internal/store"
	"github.com/safememefi/riskscan/internal/telegram"
	"github.com/safememefi/riskscan/internal/tracker"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lmsgprefix)
	log.SetPrefix("riskscan ")

	cfg := config.MustLoad()
	log.Println(cfg.RedactedSummary())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := store.NewBolt(cfg.DBPath)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer func() {
		if e := st.Close(); e != nil {
			log.Printf("store close: %v", e)
		}
	}()

	an := analyzer.NewDefault(cfg.MarketProvider, cfg.SolanaRPCURL)

	// The tracker notifies through the Telegram handler, which in turn
	// needs the tracker for /watch. Late-bind the handler to break the cycle.
	var th *telegram.Handler
	tm := tracker.NewManager(cfg.SolanaWSS, cfg.Commitment, func(mint, signature string) {
		if th != nil {
			th.NotifyActivity(mint, signature)
		}
	})

	twitter := mentions.NewTwitterClient(cfg.TwitterBearerToken, cfg.TwitterAccessToken, cfg.TwitterUserID)

	var source mentions.Source = twitter
	if cfg.MentionSource == "nitter" {
		source = mentions.NewNitterSource(cfg.NitterInstance, cfg.TwitterUsername)
	}

	loop := mentions.NewLoop(source, twitter, an, st, cfg.PollInterval, cfg.ReplyDelay, cfg.AnalyzeTimeout)
	hlth := health.New(loop, tm, st)

	bot, err := tg.New(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("telegram init: %v", err)
	}
	th = telegram.New(bot, an, tm, st, hlth, cfg.TelegramAdminChatID)

	// Resume persisted watch subscriptions.
	if mints, err := st.ListWatches(ctx); err != nil {
		log.Printf("store list watches: %v", err)
	} else {
		for _, m := range mints {
			if err := tm.Watch(ctx, m); err != nil {
				log.Printf("watch %s: %v", m, err)
			}
		}
	}

	srv := api.NewServer(twitter, hlth)
	go func() {
		log.Printf("http listening on %s", cfg.ListenAddr)
		if err := srv.Start(cfg.ListenAddr); err != nil {
			log.Printf("http server: %v", err)
			cancel()
		}
	}()

	go loop.Run(ctx)

	log.Println("started; polling mentions and awaiting Telegram commands")
	th.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	tm.StopAll()
	log.Println("shutdown complete")
}
