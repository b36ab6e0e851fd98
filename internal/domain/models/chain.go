package models

// Raw NSE option-chain payload shapes. The fetcher decodes into these; the
// chain validator/converter turns them into ChainRows. No analysis logic
// reads the raw form directly.

// RawOptionQuote is one side (CE or PE) of a strike in the NSE payload.
type RawOptionQuote struct {
	StrikePrice          float64 `json:"strikePrice"`
	ExpiryDate           string  `json:"expiryDate"`
	OpenInterest         float64 `json:"openInterest"`
	ChangeInOpenInterest float64 `json:"changeinOpenInterest"`
	ImpliedVolatility    float64 `json:"impliedVolatility"`
	LastPrice            float64 `json:"lastPrice"`
	UnderlyingValue      float64 `json:"underlyingValue"`
}

// RawChainRecord is one strike/expiry entry.
type RawChainRecord struct {
	StrikePrice float64         `json:"strikePrice"`
	ExpiryDate  string          `json:"expiryDate"`
	CE          *RawOptionQuote `json:"CE"`
	PE          *RawOptionQuote `json:"PE"`
}

// RawChainRecords groups the entries with chain-level metadata.
type RawChainRecords struct {
	ExpiryDates     []string         `json:"expiryDates"`
	Data            []RawChainRecord `json:"data"`
	UnderlyingValue float64          `json:"underlyingValue"`
}

// RawOptionChain is the top-level NSE response.
type RawOptionChain struct {
	Records  RawChainRecords `json:"records"`
	Filtered RawChainRecords `json:"filtered"`
}

// ChainRow is the validated tabular form of one strike for a single expiry.
type ChainRow struct {
	Strike       float64 `json:"strike"`
	CallOI       float64 `json:"call_oi"`
	CallOIChange float64 `json:"call_oi_change"`
	CallIV       float64 `json:"call_iv"`
	CallLTP      float64 `json:"call_ltp"`
	PutOI        float64 `json:"put_oi"`
	PutOIChange  float64 `json:"put_oi_change"`
	PutIV        float64 `json:"put_iv"`
	PutLTP       float64 `json:"put_ltp"`
}
