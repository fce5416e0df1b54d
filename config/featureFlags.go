package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AllowNegativeStock disables the all-or-nothing availability pre-check on
// order allocation. With it on, allocations may push allocated_stock past
// quantity_in_stock; the ledger still records every movement.
//
// Set via env:
// - ALLOW_NEGATIVE_STOCK=true
func AllowNegativeStock() bool {
	return boolFromEnv("ALLOW_NEGATIVE_STOCK")
}

// StrictStockLock turns the per-product redis lock from best-effort into a
// hard requirement: stock mutations fail when the lock cannot be obtained.
//
// Set via env:
// - STRICT_STOCK_LOCK=true
func StrictStockLock() bool {
	return boolFromEnv("STRICT_STOCK_LOCK")
}

// NotifySettingsCacheTTL is how long notification type/role settings are
// served from redis before re-reading the database. Settings mutations must
// call workflow.ClearSettingsCache; within the TTL stale reads are expected.
//
// Set via env:
// - NOTIFY_CACHE_TTL_SECONDS=60
func NotifySettingsCacheTTL() time.Duration {
	raw := strings.TrimSpace(os.Getenv("NOTIFY_CACHE_TTL_SECONDS"))
	if raw == "" {
		return 60 * time.Second
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 60 * time.Second
	}
	return time.Duration(n) * time.Second
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
