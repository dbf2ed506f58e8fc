//go:build darwin && !mock

package main

import (
	"log/slog"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
	"github.com/keithrbennett/wifiwand-sub000/wifi/darwin"
)

func GetAdapter(logger *slog.Logger) (wifi.Adapter, error) {
	return darwin.New(logger)
}
