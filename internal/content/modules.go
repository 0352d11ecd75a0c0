package content

// Module is one scripted learning unit.
type Module struct {
	ID          string
	Title       string
	Description string
	Body        string
}

// The catalog order is the order shown by the learn command.
var modules = []Module{
	{
		ID:          "crypto_basics",
		Title:       "Cryptocurrency Basics",
		Description: "What coins are, how wallets work, how to stay safe",
		Body: `🪙 **Cryptocurrency Basics**

A cryptocurrency is digital money secured by cryptography and recorded
on a blockchain, a public append-only ledger maintained by thousands of
independent computers.

Key ideas:
• **Wallet** - a keypair. The public key receives funds, the private key spends them. Lose the private key, lose the money.
• **Exchange** - a marketplace to swap fiat for crypto. Keep only trading funds there.
• **Volatility** - double-digit daily moves are normal. Size positions accordingly.

Golden rule: never invest more than you can afford to lose.`,
	},
	{
		ID:          "stocks_basics",
		Title:       "Stock Market Basics",
		Description: "Shares, exchanges, and how orders work",
		Body: `📈 **Stock Market Basics**

A share is a slice of ownership in a company. Exchanges like NSE, BSE
and NYSE match buyers with sellers during market hours.

Key ideas:
• **Market order** - fills immediately at the best available price.
• **Limit order** - fills only at your price or better.
• **Dividend** - a cash share of profits some companies pay holders.
• **Index** - a basket (NIFTY 50, S&P 500) that tracks the broad market.

Start with index funds before picking individual stocks.`,
	},
	{
		ID:          "risk_management",
		Title:       "Risk Management",
		Description: "Position sizing, stop losses, surviving drawdowns",
		Body: `🛡️ **Risk Management**

Staying solvent matters more than being right.

• **2% rule** - never risk more than 2% of capital on one trade.
• **Stop loss** - decide your exit before you enter, then honor it.
• **Diversification** - uncorrelated assets smooth the ride.
• **Drawdown math** - a 50% loss needs a 100% gain to recover.

Professionals measure risk first and returns second.`,
	},
	{
		ID:          "technical_analysis",
		Title:       "Technical Analysis",
		Description: "Reading charts: trend, support, resistance",
		Body: `📊 **Technical Analysis**

Charts summarize what every participant already did.

• **Trend** - higher highs and higher lows mean up; trade with it.
• **Support/Resistance** - price levels where buying or selling repeatedly appears.
• **Volume** - moves on high volume carry more conviction.
• **Moving averages** - smooth price to expose the trend.

No indicator predicts. They describe, and that is enough.`,
	},
	{
		ID:          "defi_intro",
		Title:       "Introduction to DeFi",
		Description: "Lending, swapping and yield without intermediaries",
		Body: `🏦 **Introduction to DeFi**

Decentralized finance rebuilds banking rails as open smart contracts.

• **DEX** - swap tokens peer-to-pool, no order book custodian.
• **Lending pools** - deposit to earn, borrow against collateral.
• **Yield** - rewards paid for supplying liquidity. High yield means high risk, always.
• **Smart contract risk** - code bugs drain funds. Prefer audited, battle-tested protocols.`,
	},
	{
		ID:          "portfolio_building",
		Title:       "Building a Portfolio",
		Description: "Allocation, rebalancing and the long game",
		Body: `🧺 **Building a Portfolio**

A portfolio is a plan, not a pile of tickers.

• **Core and satellite** - stable index core, small speculative satellites.
• **Rebalancing** - trim winners, top up laggards on a schedule.
• **Time horizon** - money needed within two years does not belong in markets.
• **Costs** - fees compound against you exactly like returns compound for you.`,
	},
}

// Modules returns the learning catalog in display order.
func Modules() []Module {
	out := make([]Module, len(modules))
	copy(out, modules)
	return out
}

// ModuleByID finds a module by its catalog ID.
func ModuleByID(id string) (Module, bool) {
	for _, m := range modules {
		if m.ID == id {
			return m, true
		}
	}
	return Module{}, false
}

// Catalog adapts the module table to the progress command handlers.
type Catalog struct{}

// HasModule reports whether the id exists in the catalog.
func (Catalog) HasModule(id string) bool {
	_, ok := ModuleByID(id)
	return ok
}

// TotalModules is the catalog size, used for overall progress scoring.
func TotalModules() int {
	return len(modules)
}

// CryptoBasics returns the crypto fundamentals lesson shown by the
// crypto command.
func CryptoBasics() string {
	m, _ := ModuleByID("crypto_basics")
	return m.Body
}

// StocksBasics returns the stock fundamentals lesson shown by the
// stocks command.
func StocksBasics() string {
	m, _ := ModuleByID("stocks_basics")
	return m.Body
}
