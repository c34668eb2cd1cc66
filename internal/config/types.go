package config

// Config holds all suiforge configuration.
type Config struct {
	DefaultNetwork   string              `json:"default_network"`
	DefaultWallet    string              `json:"default_wallet"`
	RPCAlgorithm     string              `json:"rpc_algorithm"` // "fastest" | "round-robin" | "failover"
	CustomRPCs       map[string][]string `json:"custom_rpcs"`
	GasBudget        uint64              `json:"gas_budget"` // MIST
	TemplateDir      string              `json:"template_dir,omitempty"`
	TemplateSource   string              `json:"template_source,omitempty"`
	PriceCurrency    string              `json:"price_currency"` // "none" disables fiat values
	WalrusPublisher  string              `json:"walrus_publisher"`
	WalrusAggregator string              `json:"walrus_aggregator"`
	WalrusEpochs     int                 `json:"walrus_epochs"`

	// internal: config dir path used for Save()
	configDir string
}
