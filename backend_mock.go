//go:build mock

package main

import (
	"log/slog"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
	mockAdapter "github.com/keithrbennett/wifiwand-sub000/wifi/mock"
)

func GetAdapter(_ *slog.Logger) (wifi.Adapter, error) {
	return mockAdapter.New(), nil
}
