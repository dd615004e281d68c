package agents

const (
	GridName         = "grid"
	DCAName          = "dca"
	ArbitrageName    = "arbitrage"
	ScalpingName     = "scalping"
	MarketMakingName = "market_making"
	MomentumName     = "momentum_ai"
	MEVName          = "mev"
	AMMName          = "amm"
	LiquidityName    = "liquidity"
	DeFiName         = "defi"
	BridgeName       = "bridge"
	LendingName      = "lending"
	GasOptimizerName = "gas_optimizer"
	MiningName       = "mining"
)

// Names lists every agent in registration order.
var Names = []string{
	GridName,
	DCAName,
	ArbitrageName,
	ScalpingName,
	MarketMakingName,
	MomentumName,
	MEVName,
	AMMName,
	LiquidityName,
	DeFiName,
	BridgeName,
	LendingName,
	GasOptimizerName,
	MiningName,
}

// Labels maps an agent name to its strategy label.
var Labels = map[string]string{
	GridName:         "Grid Trading",
	DCAName:          "Dollar-Cost Averaging",
	ArbitrageName:    "Arbitrage",
	ScalpingName:     "Scalping",
	MarketMakingName: "Market Making",
	MomentumName:     "Momentum AI",
	MEVName:          "MEV",
	AMMName:          "AMM",
	LiquidityName:    "Liquidity Provider",
	DeFiName:         "DeFi Automation",
	BridgeName:       "Cross-Chain Bridge",
	LendingName:      "DeFi Lending",
	GasOptimizerName: "Gas Optimizer",
	MiningName:       "Mining Management",
}
