package fieldscope

// modelRules is the deterministic suggestion table. A rule's suggestion is
// marked present when every required feature category has at least one field
// above the presence threshold; there is no learned ranking anywhere.
var modelRules = []ModelSuggestion{
	{
		Name:               "Price Movement Prediction",
		Approach:           "LSTM / Transformer",
		Description:        "Predict price direction from the time series of last-traded prices and best offers",
		RequiredCategories: []string{"Price - Core", "Message Metadata"},
		KeyFeatures:        []string{"ltp", "batb", "batl", "tv"},
		Complexity:         "High",
	},
	{
		Name:               "Market Microstructure Analysis",
		Approach:           "Gradient Boosting (XGBoost/LightGBM)",
		Description:        "Analyze order book dynamics and trading patterns",
		RequiredCategories: []string{"Price - Core", "Volume"},
		KeyFeatures:        []string{"batb", "batl", "trd", "tv"},
		Complexity:         "Medium",
	},
	{
		Name:               "Visual Price Patterns",
		Approach:           "Convolutional Neural Network",
		Description:        "Encode price ladders as images for pattern classification",
		RequiredCategories: []string{"Order Book - Back", "Order Book - Lay"},
		KeyFeatures:        []string{"batb", "batl"},
		Complexity:         "High",
	},
	{
		Name:               "Market Classification",
		Approach:           "Random Forest",
		Description:        "Classify market types and predict expected liquidity from market metadata",
		RequiredCategories: []string{"Market Metadata"},
		KeyFeatures:        []string{"marketType", "venue", "countryCode"},
		Complexity:         "Low",
	},
}

// SuggestModels evaluates the model rule table against a finalized Profile.
// Every rule is returned with its Present flag computed; consumers filter on
// it. Gating uses the dictionary and presence threshold from opts (defaults:
// no dictionary, so nothing is present, and 50%).
func SuggestModels(p *Profile, opts ...Option) []ModelSuggestion {
	return modelSuggestions(p, newSettings(opts))
}

func modelSuggestions(p *Profile, set settings) []ModelSuggestion {
	present := presentCategories(p.DiscoveredFields, set.dictionary, set.suggestionThresholdPct)

	out := make([]ModelSuggestion, len(modelRules))
	for i, rule := range modelRules {
		s := rule
		s.Present = true
		for _, cat := range rule.RequiredCategories {
			if !present[cat] {
				s.Present = false
				break
			}
		}
		out[i] = s
	}
	return out
}
