package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	OwnerID  int64 // the only identity allowed to mutate the ledger
	AdminID  int64 // destination for approval requests (defaults to OwnerID)

	DataDir     string // jsonfile store directory
	DatabaseURL string // when set, storage runs on postgres instead

	Timezone         string
	ReminderInterval time.Duration
	RemindDaysBefore []int // e.g. [7,1,0]

	AIAPIURL string // opaque free-text responder; empty disables the fallback
}

func MustLoad() Config {
	_ = godotenv.Load()

	bt := os.Getenv("BOT_TOKEN")
	if bt == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	owner, err := strconv.ParseInt(os.Getenv("OWNER_ID"), 10, 64)
	if err != nil || owner == 0 {
		log.Fatal("OWNER_ID is required (numeric chat id)")
	}

	admin := owner
	if v := os.Getenv("ADMIN_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id != 0 {
			admin = id
		}
	}

	tz := os.Getenv("TZ")
	if tz == "" {
		tz = "America/Mexico_City"
	}

	interval := 24 * time.Hour
	if v := os.Getenv("REMINDER_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	return Config{
		BotToken:         bt,
		OwnerID:          owner,
		AdminID:          admin,
		DataDir:          fallback(os.Getenv("DATA_DIR"), "./data"),
		DatabaseURL:      strings.TrimSpace(os.Getenv("DATABASE_URL")),
		Timezone:         tz,
		ReminderInterval: interval,
		RemindDaysBefore: parseRemindDays(os.Getenv("REMIND_DAYS_BEFORE")),
		AIAPIURL:         strings.TrimSpace(os.Getenv("AI_API_URL")),
	}
}

func parseRemindDays(raw string) []int {
	if raw == "" {
		raw = "7,1,0"
	}
	var days []int
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > 31 {
			continue
		}
		days = append(days, n)
	}
	if len(days) == 0 {
		days = []int{7, 1, 0}
	}
	return days
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return strings.TrimSpace(value)
}
