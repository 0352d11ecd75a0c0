// Package content holds the scripted material the bot serves without
// calling the generation delegate: learning modules, quiz and trivia
// banks, quotes, tips, news snippets, gif lines, currency rates and
// phrase translations.
package content

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Library serves randomized picks from the static tables. Safe for
// concurrent use.
type Library struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewLibrary creates a library seeded from the wall clock.
func NewLibrary() *Library {
	return NewLibraryWithSeed(time.Now().UnixNano())
}

// NewLibraryWithSeed creates a library with a fixed seed, for tests.
func NewLibraryWithSeed(seed int64) *Library {
	return &Library{rng: rand.New(rand.NewSource(seed))}
}

func (l *Library) pick(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Intn(n)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUOTES AND TIPS
// ══════════════════════════════════════════════════════════════════════════════

var quotes = []string{
	"The best time to buy is when there's blood in the streets. - Warren Buffett",
	"Success is not about money. It's about discipline. - Noah Kagan",
	"The goal of a successful trader is to make the best trades. Not the most trades.",
	"Money is not the goal. Money is a tool. - Tony Robbins",
	"The only thing that matters in the market is price action. - Jesse Livermore",
	"Trading is 90% psychology and 10% mechanics.",
	"Compound interest is the 8th wonder of the world.",
	"Time in the market beats timing the market.",
	"Risk management is everything in trading.",
	"Learn from losses, celebrate wins, but never get emotional.",
}

var tips = []string{
	"💡 Always set a stop loss before entering a trade",
	"💡 Never risk more than 2% of your capital on a single trade",
	"💡 Diversification reduces risk - don't put all eggs in one basket",
	"💡 Keep a trading journal to track your progress",
	"💡 Technical analysis + Fundamentals = Better decisions",
	"💡 Patience is a virtue in trading - wait for the right setup",
	"💡 FOMO (Fear of Missing Out) is the biggest enemy of traders",
	"💡 Always have an exit strategy before entering",
	"💡 Practice with paper trading before using real money",
	"💡 The trend is your friend - trade with the trend",
}

// Quote returns a random motivational quote, formatted for Telegram.
func (l *Library) Quote() string {
	return "💭 **Quote of the Day:**\n\n" + quotes[l.pick(len(quotes))]
}

// Tip returns a random trading tip.
func (l *Library) Tip() string {
	return "🎯 **Trading Tip:**\n\n" + tips[l.pick(len(tips))]
}

// ══════════════════════════════════════════════════════════════════════════════
// NEWS AND GIFS
// ══════════════════════════════════════════════════════════════════════════════

var newsSnippets = []string{
	"🔴 Bitcoin volatility remains high amid market uncertainty",
	"🟢 Ethereum upgrade improves network efficiency by 30%",
	"📊 DeFi TVL reaches new milestone of $100B",
	"🚀 Altseason indicators showing bullish signals",
	"⚠️ Regulatory news: New crypto bill under discussion",
	"💎 NFT market shows signs of recovery",
	"🔐 Security tip: Always use hardware wallets for large holdings",
}

var gifLines = []string{
	"📈 *GIF: Bull market celebration!*",
	"🎉 *GIF: Trading victory!*",
	"🚀 *GIF: Moon mission!*",
	"💰 *GIF: Money falling!*",
	"🔥 *GIF: On fire!*",
	"😂 *GIF: Laughing at losses!*",
	"💎 *GIF: Diamond hands!*",
	"🤦 *GIF: Face palm moment!*",
}

// NewsDigest returns three distinct news snippets under a header.
func (l *Library) NewsDigest() string {
	l.mu.Lock()
	picked := l.rng.Perm(len(newsSnippets))[:3]
	l.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("📰 **Crypto News Digest**\n\n")
	for i, idx := range picked {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(newsSnippets[idx])
	}
	return sb.String()
}

// Gif returns a random gif line.
func (l *Library) Gif() string {
	return gifLines[l.pick(len(gifLines))]
}

// ══════════════════════════════════════════════════════════════════════════════
// CURRENCY CONVERSION
// Static rates, USD-pivoted. Live prices go through the market client.
// ══════════════════════════════════════════════════════════════════════════════

var currencyRates = map[string]float64{
	"USD": 1.0,
	"INR": 84.5,
	"EUR": 0.95,
	"GBP": 0.79,
	"JPY": 150.0,
	"BTC": 0.000022,
}

// ErrUnsupportedCurrency reports a currency outside the static table.
type ErrUnsupportedCurrency struct {
	Code string
}

func (e *ErrUnsupportedCurrency) Error() string {
	return fmt.Sprintf("currency %q is not supported", e.Code)
}

// SupportedCurrencies lists the convertible currency codes.
func SupportedCurrencies() []string {
	return []string{"USD", "INR", "EUR", "GBP", "JPY", "BTC"}
}

// Convert converts an amount between two supported currencies.
func Convert(amount float64, from, to string) (float64, error) {
	fromRate, ok := currencyRates[strings.ToUpper(from)]
	if !ok {
		return 0, &ErrUnsupportedCurrency{Code: from}
	}
	toRate, ok := currencyRates[strings.ToUpper(to)]
	if !ok {
		return 0, &ErrUnsupportedCurrency{Code: to}
	}
	return amount / fromRate * toRate, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PHRASE TRANSLATIONS
// ══════════════════════════════════════════════════════════════════════════════

var hindiPhrases = map[string]string{
	"hello":  "नमस्ते",
	"thanks": "धन्यवाद",
	"please": "कृपया",
	"ok":     "ठीक है",
	"yes":    "हाँ",
	"no":     "नहीं",
}

// TranslateHindi looks up a common phrase. The second return is false
// when the phrase is not in the table.
func TranslateHindi(text string) (string, bool) {
	translated, ok := hindiPhrases[strings.ToLower(strings.TrimSpace(text))]
	return translated, ok
}
