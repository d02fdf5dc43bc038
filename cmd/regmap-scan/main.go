// Command regmap-scan browses the local network for Modbus TCP gateways
// announced over mDNS and prints what it finds.
//
// Usage:
//
//	regmap-scan [flags]
//
// Flags:
//
//	-timeout duration  How long to browse (default 10s)
//	-instance string   Look for one gateway by instance name
//	-iface string      Network interface to browse on (default: all)
//
// Exit code is 0 when the scan completes, 1 when -instance names a
// gateway that was not found, 2 on configuration errors.
//
// Examples:
//
//	# List everything on the local network
//	regmap-scan
//
//	# Quick scan on one interface
//	regmap-scan -timeout 3s -iface eth0
//
//	# Wait for a specific gateway to appear
//	regmap-scan -instance plant-gw -timeout 30s
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/regmap-proto/regmap-go/pkg/discovery"
)

func main() {
	var timeout time.Duration
	var instance string
	var iface string
	flag.DurationVar(&timeout, "timeout", discovery.BrowseTimeout, "How long to browse")
	flag.StringVar(&instance, "instance", "", "Look for one gateway by instance name")
	flag.StringVar(&iface, "iface", "", "Network interface to browse on (default: all)")
	flag.Parse()

	if timeout <= 0 {
		fmt.Fprintln(os.Stderr, "error: timeout must be positive")
		os.Exit(2)
	}

	browser, err := discovery.NewBrowser(discovery.BrowserConfig{
		BrowseTimeout: timeout,
		Interface:     iface,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	defer browser.Stop()

	if instance != "" {
		findOne(browser, instance, timeout)
		return
	}

	fmt.Fprintf(os.Stderr, "Browsing for gateways (%s)...\n", timeout)

	gateways, err := browser.FindAll(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if len(gateways) == 0 {
		fmt.Println("No gateways found")
		return
	}

	printTable(gateways)
}

// findOne waits for a single gateway by instance name and prints its
// details.
func findOne(browser *discovery.Browser, instance string, timeout time.Duration) {
	fmt.Fprintf(os.Stderr, "Waiting for %q (%s)...\n", instance, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	gw, err := browser.FindByInstance(ctx, instance)
	if err != nil {
		if errors.Is(err, discovery.ErrNotFound) || errors.Is(err, context.DeadlineExceeded) {
			fmt.Fprintf(os.Stderr, "Gateway %q not found\n", instance)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	printDetail(gw)
}

// printTable prints the scan result as an aligned table.
func printTable(gateways []*discovery.Gateway) {
	fmt.Println()
	fmt.Printf("%-24s %-20s %5s  %-14s %s\n",
		"INSTANCE", "ADDRESS", "PORT", "UNITS", "PROFILE")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, gw := range gateways {
		host := gw.Host
		if len(gw.Addresses) > 0 {
			host = gw.Addresses[0]
		}
		fmt.Printf("%-24s %-20s %5d  %-14s %s\n",
			clip(gw.InstanceName, 24), clip(host, 20), gw.Port,
			clip(formatUnits(gw.Units), 14), gw.Profile)
	}

	fmt.Println("--------------------------------------------------------------------------------")
	fmt.Printf("%d gateway(s) found\n", len(gateways))
}

// printDetail prints everything a gateway announced.
func printDetail(gw *discovery.Gateway) {
	fmt.Printf("\n%s\n", gw.InstanceName)
	fmt.Println("-------------------------------------------")
	fmt.Printf("  Host:      %s\n", gw.Host)
	fmt.Printf("  Port:      %d\n", gw.Port)
	if len(gw.Addresses) > 0 {
		fmt.Printf("  Addresses: %s\n", strings.Join(gw.Addresses, ", "))
	}
	fmt.Printf("  Units:     %s\n", formatUnits(gw.Units))
	if gw.Profile != "" {
		fmt.Printf("  Profile:   %s\n", gw.Profile)
	}
	if gw.Vendor != "" {
		fmt.Printf("  Vendor:    %s\n", gw.Vendor)
	}
	if gw.Model != "" {
		fmt.Printf("  Model:     %s\n", gw.Model)
	}
	if gw.Serial != "" {
		fmt.Printf("  Serial:    %s\n", gw.Serial)
	}
	fmt.Println()
}

func formatUnits(units []uint8) string {
	if len(units) == 0 {
		return "-"
	}
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.Itoa(int(u))
	}
	return strings.Join(parts, ",")
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
