package explain

import "ChainSight/internal/domain/models"

// whyTemplates turns a rule tag into a plain-language reason. One template
// per tag a rule can emit; construction fails if any tag is unmapped.
var whyTemplates = map[string]string{
	"pcr_bullish":         "More traders are selling puts than calls, a sign of confidence that the market holds above current levels",
	"pcr_bearish":         "More traders are selling calls than puts, a sign of confidence that the market stays below current levels",
	"pcr_neutral":         "Put and call positioning is roughly balanced, so neither side has conviction",
	"pcr_extreme_bullish": "Put selling is extremely one-sided; the crowd is leaning hard bullish, which often precedes sharp moves",
	"pcr_extreme_bearish": "Call selling is extremely one-sided; the crowd is leaning hard bearish, which often precedes sharp moves",

	"oi_long_buildup":  "Fresh money is entering on the long side: price and open interest are rising together",
	"oi_short_buildup": "Fresh money is entering on the short side: open interest is rising while price falls",
	"oi_unwinding":     "Traders are closing existing positions rather than taking new ones, draining conviction from the move",
	"oi_mixed":         "Open-interest changes point in no single direction today",

	"max_oi_support":    "The strike holding the most put open interest sits just below the market and tends to act as a floor",
	"max_oi_resistance": "The strike holding the most call open interest sits just above the market and tends to act as a ceiling",
	"max_oi_balanced":   "The market trades midway between its heaviest put and call strikes, with room either way",

	"sr_near_support":    "Price is testing a support level, where buyers have stepped in before",
	"sr_near_resistance": "Price is testing a resistance level, where sellers have stepped in before",
	"sr_range_bound":     "Price is inside its recent range with no level under immediate test",
}

// actionTemplates describe the suggested action per recommendation.
var actionTemplates = map[models.Recommendation]string{
	models.RecommendCall:    "Consider buying a Call option near the ATM strike to participate in the expected upside",
	models.RecommendPut:     "Consider buying a Put option near the ATM strike to participate in the expected downside",
	models.RecommendNoTrade: "Stay out. The setup does not justify paying an option premium today",
}

// riskTemplates describe what each risk level means in practice.
var riskTemplates = map[models.RiskLevel]string{
	models.RiskLow:    "Low risk: signals agree and no safety check fired. The premium paid is still at full risk",
	models.RiskMedium: "Medium risk: the signals lean one way but at least one caution applies. Size down",
	models.RiskHigh:   "High risk: signals conflict or a serious caution applies. Most traders should skip this one",
}

// lowConfidence is the agreement level below which the rules disagree
// enough to warrant an extra caveat.
const lowConfidence = 0.4

const lowConfidenceCaveat = "The individual signals disagree with each other; treat this reading as weak"

// pitfallTemplates list what can go wrong for each recommendation.
var pitfallTemplates = map[models.Recommendation][]string{
	models.RecommendCall: {
		"A gap down or sudden reversal can wipe out the premium quickly",
		"If the market stalls, time decay erodes the option even when the view is right",
		"A drop in implied volatility shrinks the option price independent of direction",
	},
	models.RecommendPut: {
		"A gap up or short-covering rally can wipe out the premium quickly",
		"If the market stalls, time decay erodes the option even when the view is right",
		"A drop in implied volatility shrinks the option price independent of direction",
	},
	models.RecommendNoTrade: {
		"Missing a move costs nothing but opportunity; a bad trade costs real capital",
	},
}
