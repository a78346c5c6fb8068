// shopclient is a CLI tool for exercising the storefront gateway.
// Each command performs a single operation, making it composable for scripts.
//
// Commands:
//
//	shopclient price -gateway URL -product ID [-as-of RFC3339]
//	shopclient list -gateway URL [-collection KEY]
//	shopclient toggle -gateway URL [-collection KEY] ITEM [ITEM...]
//	shopclient watch -gateway URL [-collection KEY] [-interval DUR]
//
// Examples:
//
//	shopclient price -gateway http://localhost:8080 -product 60
//	shopclient list -gateway http://localhost:8080
//	shopclient toggle -gateway http://localhost:8080 60 61
//
// The toggle command drives the optimistic reconciler: membership flips
// locally before the gateway confirms, and rolls back with a notice if
// the call fails.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"storefront-gateway/internal/membership"
	"storefront-gateway/internal/model"
)

var client = &http.Client{Timeout: 30 * time.Second}

// shopClientHeader identifies this CLI to the gateway's client gate.
const shopClientHeader = `app="shopclient", version="1.0.0", platform="cli"`

// Global flags (apply to all commands)
var (
	gatewayURL string
	quiet      bool
	noColor    bool
	verbose    bool
)

// ANSI color codes
var (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		disableColors()
	}
}

func disableColors() {
	colorReset, colorRed, colorGreen = "", "", ""
	colorYellow, colorCyan, colorGray, colorBold = "", "", "", ""
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "price":
		runPrice(args)
	case "list":
		runList(args)
	case "toggle":
		runToggle(args)
	case "watch":
		runWatch(args)
	case "-h", "-help", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `shopclient - storefront gateway test tool

Usage:
  shopclient <command> [options]

Commands:
  price    Quote the current price of a product
  list     List the members of a collection
  toggle   Toggle items in and out of a collection (optimistic)
  watch    Poll a collection and print membership changes

Examples:
  # Quote a product's price
  shopclient price -gateway http://localhost:8080 -product 60

  # Quote as of a specific instant
  shopclient price -gateway http://localhost:8080 -product 60 -as-of 2026-03-15T12:00:00Z

  # List the wishlist
  shopclient list -gateway http://localhost:8080

  # Toggle two items in the wishlist
  shopclient toggle -gateway http://localhost:8080 60 61

Run 'shopclient <command> -h' for command-specific options.
`)
}

// =============================================================================
// PRICE COMMAND
// =============================================================================

func runPrice(args []string) {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	fs.StringVar(&gatewayURL, "gateway", "http://localhost:8080", "Gateway base URL")
	var productID, asOf string
	fs.StringVar(&productID, "product", "", "Product ID (required)")
	fs.StringVar(&asOf, "as-of", "", "Resolve the price at this RFC 3339 instant (default now)")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output the final price")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopclient price -product ID [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	if productID == "" {
		fs.Usage()
		os.Exit(1)
	}

	path := "/products/" + url.PathEscape(productID) + "/price"
	if asOf != "" {
		path += "?as_of=" + url.QueryEscape(asOf)
	}

	body, err := doRequest("GET", path)
	if err != nil {
		fatal("Failed to quote price: %v", err)
	}

	var quote model.PriceQuote
	if err := json.Unmarshal(body, &quote); err != nil {
		fatal("Failed to parse quote: %v", err)
	}

	if quiet {
		fmt.Println(model.FormatMinorUnits(quote.FinalPrice))
		return
	}

	printSuccess("Price quoted")
	fmt.Printf("  Product: %s%s%s\n", colorCyan, quote.ProductID, colorReset)
	if quote.DiscountPercent > 0 {
		fmt.Printf("  Original: %s %s\n", model.FormatMinorUnits(quote.OriginalPrice), quote.Currency)
		fmt.Printf("  Discount: %s%s%s (rule %s)\n", colorYellow, quote.DiscountLabel, colorReset, quote.RuleID)
	}
	fmt.Printf("  Price: %s%s %s%s\n", colorGreen, model.FormatMinorUnits(quote.FinalPrice), quote.Currency, colorReset)
}

// =============================================================================
// LIST COMMAND
// =============================================================================

func runList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.StringVar(&gatewayURL, "gateway", "http://localhost:8080", "Gateway base URL")
	var collection string
	fs.StringVar(&collection, "collection", "wishlist", "Collection key")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - one item ID per line")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopclient list [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	body, err := doRequest("GET", "/collections/"+url.PathEscape(collection))
	if err != nil {
		fatal("Failed to list collection: %v", err)
	}

	var coll model.Collection
	if err := json.Unmarshal(body, &coll); err != nil {
		fatal("Failed to parse collection: %v", err)
	}

	if quiet {
		for _, id := range coll.ItemIDs {
			fmt.Println(id)
		}
		return
	}

	printSuccess("%s has %d items", coll.Key, len(coll.ItemIDs))
	for _, id := range coll.ItemIDs {
		fmt.Printf("  - %s%s%s\n", colorCyan, id, colorReset)
	}
}

// =============================================================================
// TOGGLE COMMAND
// =============================================================================

func runToggle(args []string) {
	fs := flag.NewFlagSet("toggle", flag.ExitOnError)
	fs.StringVar(&gatewayURL, "gateway", "http://localhost:8080", "Gateway base URL")
	var collection string
	fs.StringVar(&collection, "collection", "wishlist", "Collection key")
	fs.BoolVar(&quiet, "q", false, "Quiet mode - only output final membership")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopclient toggle [options] ITEM [ITEM...]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	items := fs.Args()
	if len(items) == 0 {
		fs.Usage()
		os.Exit(1)
	}

	ctx := context.Background()
	rec := membership.New(&gatewayService{}, collection)
	defer rec.Close()

	// Seed local state from the gateway before toggling
	if err := rec.Refresh(ctx); err != nil {
		fatal("Failed to fetch collection: %v", err)
	}

	for _, itemID := range items {
		wasMember := rec.Contains(itemID)

		changed, err := rec.Toggle(ctx, itemID)
		if err != nil {
			// The reconciler has already rolled the item back
			printError("Toggle %s failed, rolled back: %v", itemID, err)
			continue
		}
		if !changed {
			printInfo("Toggle %s skipped (already in flight)", itemID)
			continue
		}

		if wasMember {
			printSuccess("Removed %s from %s", itemID, collection)
		} else {
			printSuccess("Added %s to %s", itemID, collection)
		}
	}

	final := rec.Membership()
	if quiet {
		for _, id := range final {
			fmt.Println(id)
		}
		return
	}

	fmt.Printf("\n%s%s%s now has %d items:\n", colorBold, collection, colorReset, len(final))
	for _, id := range final {
		fmt.Printf("  - %s%s%s\n", colorCyan, id, colorReset)
	}
}

// =============================================================================
// WATCH COMMAND
// =============================================================================

func runWatch(args []string) {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	fs.StringVar(&gatewayURL, "gateway", "http://localhost:8080", "Gateway base URL")
	var collection string
	var interval time.Duration
	fs.StringVar(&collection, "collection", "wishlist", "Collection key")
	fs.DurationVar(&interval, "interval", 5*time.Second, "Poll interval")
	fs.BoolVar(&noColor, "no-color", false, "Disable colored output")
	fs.BoolVar(&verbose, "v", false, "Verbose - show full request/response")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: shopclient watch [options]\n\nOptions:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if noColor {
		disableColors()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec := membership.New(&gatewayService{}, collection)
	defer rec.Close()

	if err := rec.Refresh(ctx); err != nil {
		fatal("Failed to fetch collection: %v", err)
	}

	last := rec.Membership()
	printInfo("Watching %s (%d items, every %v). Ctrl-C to stop.", collection, len(last), interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			printInfo("Stopped")
			return
		case <-ticker.C:
			if err := rec.Refresh(ctx); err != nil {
				printError("Refresh failed: %v", err)
				continue
			}
			current := rec.Membership()
			for _, id := range diff(current, last) {
				printSuccess("+ %s", id)
			}
			for _, id := range diff(last, current) {
				printError("- %s", id)
			}
			last = current
		}
	}
}

// diff returns the elements of a that are not in b.
func diff(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	var out []string
	for _, id := range a {
		if _, ok := set[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// =============================================================================
// GATEWAY SERVICE
// =============================================================================

// gatewayService implements membership.Service against the gateway's
// collection endpoints.
type gatewayService struct{}

func (s *gatewayService) Add(ctx context.Context, collection, itemID string) error {
	path := "/collections/" + url.PathEscape(collection) + "/items/" + url.PathEscape(itemID)
	_, err := doRequestCtx(ctx, "POST", path)
	return err
}

func (s *gatewayService) Remove(ctx context.Context, collection, itemID string) error {
	path := "/collections/" + url.PathEscape(collection) + "/items/" + url.PathEscape(itemID)
	_, err := doRequestCtx(ctx, "DELETE", path)
	return err
}

func (s *gatewayService) Fetch(ctx context.Context, collection string) ([]string, error) {
	body, err := doRequestCtx(ctx, "GET", "/collections/"+url.PathEscape(collection))
	if err != nil {
		return nil, err
	}

	var coll model.Collection
	if err := json.Unmarshal(body, &coll); err != nil {
		return nil, fmt.Errorf("parsing collection: %w", err)
	}
	return coll.ItemIDs, nil
}

// =============================================================================
// HTTP HELPERS
// =============================================================================

func doRequest(method, path string) ([]byte, error) {
	return doRequestCtx(context.Background(), method, path)
}

func doRequestCtx(ctx context.Context, method, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, gatewayURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Shop-Client", shopClientHeader)

	if !quiet && verbose {
		printRequest(method, path)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if !quiet && verbose {
		printResponse(resp.StatusCode, respBody, duration)
	}

	if resp.StatusCode >= 400 {
		if msg := errorMessage(respBody); msg != "" {
			return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// errorMessage extracts the message from a gateway error envelope.
func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Code == "" {
		return envelope.Error.Message
	}
	return envelope.Error.Code + ": " + envelope.Error.Message
}

// =============================================================================
// OUTPUT HELPERS
// =============================================================================

func printRequest(method, path string) {
	fmt.Printf("\n%s▶ REQUEST%s %s%s %s%s\n", colorYellow, colorReset, colorBold, method, path, colorReset)
}

func printResponse(status int, body []byte, duration time.Duration) {
	statusColor := colorGreen
	if status >= 400 {
		statusColor = colorRed
	}
	fmt.Printf("\n%s◀ RESPONSE%s %s%d%s (%v)\n", colorCyan, colorReset, statusColor, status, colorReset, duration)
	printJSON(body, "  ")
}

func printJSON(data []byte, prefix string) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, prefix, "  "); err != nil {
		fmt.Printf("%s%s\n", prefix, string(data))
		return
	}

	output := pretty.String()
	if !verbose {
		lines := strings.Split(output, "\n")
		if len(lines) > 30 {
			lines = append(lines[:25], fmt.Sprintf("%s  %s(%d more lines, use -v for full output)%s", prefix, colorGray, len(lines)-25, colorReset))
			output = strings.Join(lines, "\n")
		}
	}
	fmt.Println(output)
}

func printSuccess(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s✓ %s%s\n", colorGreen, fmt.Sprintf(format, args...), colorReset)
	}
}

func printError(format string, args ...interface{}) {
	fmt.Printf("%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
}

func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf("%s→ %s%s\n", colorGray, fmt.Sprintf(format, args...), colorReset)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, fmt.Sprintf(format, args...), colorReset)
	os.Exit(1)
}
