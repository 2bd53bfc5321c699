package triage

// Lexicon is the scoring policy table: term lists and their weights.
// It is injected into the scorer so the policy can be tuned and tested
// independently of the ranking algorithm.
type Lexicon struct {
	Positive       []string
	Negative       []string
	PositiveWeight float64
	NegativeWeight float64
}

// DefaultLexicon returns the built-in policy: topic, authority and
// instructional markers score up; spam and promotional markers score down.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Positive: []string{
			"framework",
			"lesson",
			"because",
			"how",
			"step",
			"why",
			"guide",
			"mistake",
			"learned",
			"principle",
			"strategy",
			"example",
			"insight",
			"data",
		},
		Negative: []string{
			"giveaway",
			"airdrop",
			"dm me",
			"nft",
			"follow me",
			"retweet to win",
			"promo code",
			"whitelist",
			"presale",
		},
		PositiveWeight: 1,
		NegativeWeight: 1.5,
	}
}
