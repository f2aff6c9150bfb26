package infra

import (
	"fmt"
	"strings"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// PrintBanner displays the startup banner with mode-specific warnings.
func PrintBanner(cfg *Config, sharesToBuy int64) {
	mode := strings.ToUpper(cfg.Trading.Mode)

	color := ColorCyan
	modeDesc := "SIMULATED FILLS"
	if mode == ModeLive {
		color = ColorRed
		modeDesc = "LIVE ORDER ENTRY"
	}

	fmt.Println()
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Printf("%s#  %s %s%s\n", color, cfg.App.Name, cfg.App.Version, ColorReset)
	fmt.Printf("%s#  mode: %s (%s)%s\n", color, mode, modeDesc, ColorReset)
	fmt.Printf("%s#  %s / %s / %s%s\n", color, cfg.Venue.Account, cfg.Venue.Venue, cfg.Venue.Stock, ColorReset)
	fmt.Printf("%s#  shares to buy: %d%s\n", color, sharesToBuy, ColorReset)
	fmt.Printf("%s###########################################################%s\n", color, ColorReset)
	fmt.Println()
}
