package chain

import (
	"errors"
	"strings"
)

// ErrNetworkNotFound is returned when a network is not in the registry.
var ErrNetworkNotFound = errors.New("network not found")

// Network holds the endpoints for one Sui network.
type Network struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	RPCs        []string `json:"rpcs"`
	Explorer    string   `json:"explorer"`
	// FaucetURL is empty on mainnet.
	FaucetURL string `json:"faucet_url,omitempty"`
}

// Registry is the network registry.
type Registry struct {
	networks []Network
	byName   map[string]*Network
}

// NewRegistry returns the registry of the four Sui networks.
func NewRegistry() *Registry {
	networks := allNetworks()
	r := &Registry{
		networks: networks,
		byName:   make(map[string]*Network, len(networks)),
	}
	for i := range r.networks {
		n := &r.networks[i]
		r.byName[n.Name] = n
	}
	return r
}

// All returns every network in the registry.
func (r *Registry) All() []Network {
	return r.networks
}

// GetByName finds a network by name (e.g. "testnet").
func (r *Registry) GetByName(name string) (*Network, error) {
	n, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrNetworkNotFound
	}
	return n, nil
}

// TxURL returns the explorer page for a transaction digest.
func (n *Network) TxURL(digest string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/tx/" + digest
}

// ObjectURL returns the explorer page for an object or package id.
func (n *Network) ObjectURL(id string) string {
	if n.Explorer == "" {
		return ""
	}
	return n.Explorer + "/object/" + id
}

// --- network data ---

func allNetworks() []Network {
	return []Network{
		{
			Name: "mainnet", DisplayName: "Sui Mainnet",
			RPCs:     []string{"https://fullnode.mainnet.sui.io:443", "https://sui-rpc.publicnode.com"},
			Explorer: "https://suiscan.xyz/mainnet",
		},
		{
			Name: "testnet", DisplayName: "Sui Testnet",
			RPCs:      []string{"https://fullnode.testnet.sui.io:443", "https://sui-testnet-rpc.publicnode.com"},
			Explorer:  "https://suiscan.xyz/testnet",
			FaucetURL: "https://faucet.testnet.sui.io/v2/gas",
		},
		{
			Name: "devnet", DisplayName: "Sui Devnet",
			RPCs:      []string{"https://fullnode.devnet.sui.io:443"},
			Explorer:  "https://suiscan.xyz/devnet",
			FaucetURL: "https://faucet.devnet.sui.io/v2/gas",
		},
		{
			Name: "localnet", DisplayName: "Local Network",
			RPCs:      []string{"http://127.0.0.1:9000"},
			FaucetURL: "http://127.0.0.1:9123/gas",
		},
	}
}
