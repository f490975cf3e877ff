package bot

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"cross-market-pulse/internal/service"

	tele "gopkg.in/telebot.v3"
)

const dateLayout = "2006-01-02"

// StartTelegramBot exposes the exploration queries over Telegram. Skipped
// entirely when no token is configured.
func StartTelegramBot(explore *service.ExploreService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/coins", func(c tele.Context) error {
		coins, err := explore.ListTrackedCoins(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error listing coins: %v", err))
		}
		if len(coins) == 0 {
			return c.Send("No coins loaded yet. Run the pipeline first.")
		}
		var sb strings.Builder
		sb.WriteString("Tracked coins:\n")
		for _, coin := range coins {
			fmt.Fprintf(&sb, "%s (%s) — %s\n", coin.ID, coin.Symbol, coin.Name)
		}
		return c.Send(sb.String())
	})

	b.Handle("/avg", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send("Usage: /avg <coin_id> [days]\nExample: /avg bitcoin 30")
		}
		coinID := strings.ToLower(args[0])
		days := 30
		if len(args) > 1 {
			if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
				days = n
			}
		}
		start, end := trailingRange(days)
		avg, err := explore.AverageCoinPrice(context.Background(), coinID, start, end)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching average for %s: %v", coinID, err))
		}
		if avg == 0 {
			return c.Send(fmt.Sprintf("No price data for %s in the last %d days", coinID, days))
		}
		return c.Send(fmt.Sprintf("%s average over %d days: $%.2f", coinID, days, avg))
	})

	b.Handle("/oil", func(c tele.Context) error {
		days := 30
		if args := c.Args(); len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
				days = n
			}
		}
		start, end := trailingRange(days)
		avg, err := explore.AverageOilPrice(context.Background(), start, end)
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching oil average: %v", err))
		}
		if avg == 0 {
			return c.Send(fmt.Sprintf("No oil data in the last %d days", days))
		}
		return c.Send(fmt.Sprintf("WTI average over %d days: $%.2f", days, avg))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func trailingRange(days int) (string, string) {
	now := time.Now().UTC()
	return now.AddDate(0, 0, -days).Format(dateLayout), now.Format(dateLayout)
}
