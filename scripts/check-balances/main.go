// check-balances queries the SUI balance (or the balance of -coin) of a set
// of addresses on every Sui network in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances 0x304a...737d 0xabc...
//	go run ./scripts/check-balances -coin 0x5f3a...::tsttk::TSTTK -networks testnet,devnet 0x304a...
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/suiforge/internal/chain"
	"github.com/Mohsinsiddi/suiforge/internal/rpc"
)

const rpcTimeout = 12 * time.Second

type result struct {
	network string
	address string // short form
	balance string
	err     string
}

func main() {
	coinType := flag.String("coin", chain.SUICoinType, "coin type to query")
	networks := flag.String("networks", "mainnet,testnet,devnet", "comma-separated networks")
	flag.Parse()

	addrs := flag.Args()
	if len(addrs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: check-balances [-coin TYPE] [-networks LIST] <address>...")
		os.Exit(2)
	}

	reg := chain.NewRegistry()
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)

	for _, name := range strings.Split(*networks, ",") {
		n, err := reg.GetByName(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping unknown network %q\n", name)
			continue
		}
		for _, addr := range addrs {
			wg.Add(1)
			go func(n *chain.Network, addr string) {
				defer wg.Done()
				r := check(n, addr, *coinType)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(n, addr)
		}
	}
	wg.Wait()

	printTable(results, *coinType)
}

func check(n *chain.Network, addr, coinType string) result {
	r := result{network: n.Name, address: shortAddr(addr), balance: "—"}

	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	normalized, err := chain.NormalizeAddress(addr)
	if err != nil {
		r.err = "bad address"
		return r
	}
	url, err := rpc.SelectBest(ctx, n.RPCs, string(rpc.AlgorithmFailover))
	if err != nil {
		r.err = "unreachable"
		return r
	}
	client := chain.NewSUIClient(url)
	amount, err := client.GetCoinBalance(ctx, normalized, coinType)
	if err != nil {
		r.err = shortErr(err)
		return r
	}

	decimals := uint8(9)
	if coinType != chain.SUICoinType {
		md, err := client.GetCoinMetadata(ctx, coinType)
		if err != nil || md == nil {
			r.balance = amount.String()
			r.err = "raw units"
			return r
		}
		decimals = md.Decimals
	}
	r.balance = trimZeros(chain.FormatUnits(amount, decimals))
	return r
}

func printTable(results []result, coinType string) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.address < b.address
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NETWORK\tADDRESS\tBALANCE (%s)\tNOTE\n", symbolOf(coinType))
	lastNetwork := ""
	for _, r := range results {
		if lastNetwork != "" && r.network != lastNetwork {
			fmt.Fprintln(w, "\t\t\t")
		}
		lastNetwork = r.network
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.network, r.address, r.balance, r.err)
	}
	w.Flush()
}

func symbolOf(coinType string) string {
	if i := strings.LastIndex(coinType, "::"); i >= 0 {
		return coinType[i+2:]
	}
	return coinType
}

func shortAddr(addr string) string {
	if len(addr) < 14 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

// trimZeros removes trailing zeros after the decimal point: "0.050000000" becomes "0.05".
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
