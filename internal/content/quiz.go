package content

// Question is one multiple-choice entry from the quiz or trivia banks.
// Answer indexes into Options.
type Question struct {
	Question string
	Options  []string
	Answer   int
}

var quizBank = []Question{
	{
		Question: "What does a stop loss order do?",
		Options:  []string{"Locks in profit", "Exits a position at a preset loss level", "Doubles the position", "Pauses trading"},
		Answer:   1,
	},
	{
		Question: "What is diversification?",
		Options:  []string{"Buying one strong asset", "Spreading capital across uncorrelated assets", "Trading more often", "Using leverage"},
		Answer:   1,
	},
	{
		Question: "A market order fills at...",
		Options:  []string{"Your chosen price", "Yesterday's close", "The best available price right now", "The daily average"},
		Answer:   2,
	},
	{
		Question: "Which holds your crypto private keys safest for large amounts?",
		Options:  []string{"An exchange account", "A hardware wallet", "A screenshot", "A browser extension"},
		Answer:   1,
	},
	{
		Question: "A 50% drawdown requires what gain to break even?",
		Options:  []string{"50%", "75%", "100%", "150%"},
		Answer:   2,
	},
	{
		Question: "What does an index like the S&P 500 track?",
		Options:  []string{"A single company", "A basket representing the broad market", "Government bonds", "Commodity prices"},
		Answer:   1,
	},
}

var triviaBank = []Question{
	{
		Question: "What year was Bitcoin created?",
		Options:  []string{"2008", "2009", "2010", "2011"},
		Answer:   1,
	},
	{
		Question: "What is the maximum supply of Bitcoin?",
		Options:  []string{"10M", "21M", "100M", "Unlimited"},
		Answer:   1,
	},
	{
		Question: "Who is the founder of Ethereum?",
		Options:  []string{"Vitalik Buterin", "Satoshi Nakamoto", "Charlie Lee", "Brian Armstrong"},
		Answer:   0,
	},
	{
		Question: "What does DeFi stand for?",
		Options:  []string{"Digital Finance", "Decentralized Finance", "Digital Fund", "None"},
		Answer:   1,
	},
	{
		Question: "What is a blockchain?",
		Options:  []string{"A type of database", "A chain of encrypted blocks", "A cryptocurrency", "All of above"},
		Answer:   1,
	},
}

// Quiz returns a random question from the knowledge quiz bank.
func (l *Library) Quiz() Question {
	return quizBank[l.pick(len(quizBank))]
}

// Trivia returns a random question from the trivia bank.
func (l *Library) Trivia() Question {
	return triviaBank[l.pick(len(triviaBank))]
}
