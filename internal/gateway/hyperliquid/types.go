package hyperliquid

// Wire types for the venue's /info and /exchange endpoints. Numeric fields
// arrive as decimal strings and are parsed in convert.go.

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

type clearinghouseState struct {
	MarginSummary struct {
		AccountValue    string `json:"accountValue"`
		TotalMarginUsed string `json:"totalMarginUsed"`
	} `json:"marginSummary"`
	Withdrawable   string          `json:"withdrawable"`
	AssetPositions []assetPosition `json:"assetPositions"`
}

type assetPosition struct {
	Type     string `json:"type"`
	Position struct {
		Coin     string `json:"coin"`
		Szi      string `json:"szi"` // signed size, negative = short
		EntryPx  string `json:"entryPx"`
		Leverage struct {
			Type  string  `json:"type"`
			Value float64 `json:"value"`
		} `json:"leverage"`
		UnrealizedPnl string `json:"unrealizedPnl"`
	} `json:"position"`
}

type metaResponse struct {
	Universe []struct {
		Name       string `json:"name"`
		SzDecimals int    `json:"szDecimals"`
	} `json:"universe"`
}

// Signed action envelope posted to /exchange.
type exchangeRequest struct {
	Action       any          `json:"action"`
	Nonce        uint64       `json:"nonce"`
	Signature    rsvSignature `json:"signature"`
	VaultAddress *string      `json:"vaultAddress"`
}

type rsvSignature struct {
	R string `json:"r"`
	S string `json:"s"`
	V uint8  `json:"v"`
}

// Order action. Field names and their declaration order are part of the
// signing scheme: the venue hashes the msgpack encoding of the action, so
// these structs must encode exactly as documented.
type limitTif struct {
	Tif string `msgpack:"tif" json:"tif"`
}

type orderTypeWire struct {
	Limit *limitTif `msgpack:"limit,omitempty" json:"limit,omitempty"`
}

type orderWire struct {
	Asset      int           `msgpack:"a" json:"a"`
	IsBuy      bool          `msgpack:"b" json:"b"`
	Price      string        `msgpack:"p" json:"p"`
	Size       string        `msgpack:"s" json:"s"`
	ReduceOnly bool          `msgpack:"r" json:"r"`
	Type       orderTypeWire `msgpack:"t" json:"t"`
}

type orderAction struct {
	Type     string      `msgpack:"type" json:"type"`
	Orders   []orderWire `msgpack:"orders" json:"orders"`
	Grouping string      `msgpack:"grouping" json:"grouping"`
}

type updateLeverageAction struct {
	Type     string `msgpack:"type" json:"type"`
	Asset    int    `msgpack:"asset" json:"asset"`
	IsCross  bool   `msgpack:"isCross" json:"isCross"`
	Leverage int    `msgpack:"leverage" json:"leverage"`
}
