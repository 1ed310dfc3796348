package asset

// Constants.
const (
	// NativeMint is the wrapped SOL mint address, used as the
	// asset id for native lamport movement.
	NativeMint = "So11111111111111111111111111111111111111112"
	// NativeMintLegacy is the historical alias of the native mint.
	NativeMintLegacy = "So11111111111111111111111111111111111111111"

	NativeTicker   = "SOL"
	NativeDecimals = uint8(9)
	NativeIcon     = "https://assets.coingecko.com/coins/images/4128/standard/solana.png?1718769756"
)

// Asset db model, keyed by mint address.
// Rows are write-once: metadata is never refreshed after first resolution.
type Asset struct {
	Mint     string
	Ticker   string
	Decimals uint8
	Icon     string
}

// Native returns the hard coded native asset,
// which never goes through remote metadata resolution.
func Native() *Asset {
	return &Asset{
		Mint:     NativeMint,
		Ticker:   NativeTicker,
		Decimals: NativeDecimals,
		Icon:     NativeIcon,
	}
}

// IsNative checks if mint is the native asset under either alias.
func IsNative(mint string) bool {
	return mint == NativeMint || mint == NativeMintLegacy
}
