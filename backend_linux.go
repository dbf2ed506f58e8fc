//go:build linux && !mock

package main

import (
	"log/slog"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
	"github.com/keithrbennett/wifiwand-sub000/wifi/networkmanager"
)

func GetAdapter(logger *slog.Logger) (wifi.Adapter, error) {
	return networkmanager.New(logger)
}
