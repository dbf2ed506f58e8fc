//go:build !linux && !darwin && !mock

package main

import (
	"fmt"
	"log/slog"

	"github.com/keithrbennett/wifiwand-sub000/wifi"
)

func GetAdapter(_ *slog.Logger) (wifi.Adapter, error) {
	return nil, fmt.Errorf("unsupported operating system")
}
