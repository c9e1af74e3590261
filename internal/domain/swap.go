package domain

// TokenAmount is one leg of a swap: an amount of a single token.
type TokenAmount struct {
	Mint   string  // token identifier, used for price lookups
	Amount float64 // always positive; direction is carried by the list it sits in
	Symbol string  // token symbol, or first 8 chars of the mint when unnamed
}

// SwapEvent is a decentralized-exchange swap derived from exactly one
// RawTransaction. Never mutated after creation.
type SwapEvent struct {
	Signature string        // transaction signature
	Timestamp int64         // block time, Unix seconds
	Protocol  string        // DEX protocol name from the swap-program registry
	TokensIn  []TokenAmount // tokens received by the wallet
	TokensOut []TokenAmount // tokens sent by the wallet
}
