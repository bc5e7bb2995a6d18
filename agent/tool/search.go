package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	contractx "github.com/dkimathi/safiri/agent/contract"
	tavilyx "github.com/dkimathi/safiri/pkg/tavily"
)

// Search categories. CategoryGeneral is the dispatch default.
const (
	CategoryHotels      = "hotels"
	CategoryFlights     = "flights"
	CategoryRestaurants = "restaurants"
	CategoryProducts    = "products"
	CategoryGeneral     = "general"
)

// FallbackMessage is the pre-written degraded-service apology stored with a
// failed search result; synthesis returns it verbatim.
const FallbackMessage = "Sorry, I couldn't reach the search service just now, so I can't look that up for you at the moment."

// CategoryMenuPrompt is appended to FallbackMessage on the degraded reply
// path.
const CategoryMenuPrompt = "While I sort that out, I can still help with: hotels, flights, restaurants, products, or general questions. What would you like?"

// Relevance hints passed to the search service per category; not enforced
// locally.
var (
	hotelDomains      = []string{"booking.com", "tripadvisor.com", "hotels.com", "expedia.com"}
	flightDomains     = []string{"skyscanner.com", "kayak.com", "expedia.com"}
	restaurantDomains = []string{"tripadvisor.com", "yelp.com", "eatout.co.ke", "zomato.com"}
	productDomains    = []string{"amazon.com", "jumia.co.ke", "kilimall.co.ke", "ebay.com"}
)

// SearchOutput is the search tool's structured success result.
type SearchOutput struct {
	Category string          `json:"category"`
	Query    string          `json:"query"`
	Answer   string          `json:"answer,omitempty"`
	Results  []tavilyx.Result `json:"results"`
}

func NewSearchTool(searcher contractx.Searcher) Tool {
	return Tool{
		Name: ToolSearch,
		Desc: "Search the web for hotels, flights, restaurants, products, or general information.",
		Params: []Param{
			{Name: "query", Type: "string", Desc: "What to search for", Required: true},
			{Name: "category", Type: "string", Desc: "hotels | flights | restaurants | products | general"},
			{Name: "location", Type: "string", Desc: "City or area"},
			{Name: "origin", Type: "string", Desc: "Departure city (flights)"},
			{Name: "destination", Type: "string", Desc: "Arrival city (flights)"},
			{Name: "date", Type: "string", Desc: "Travel date"},
			{Name: "budget", Type: "string", Desc: "Budget hint"},
			{Name: "cuisine", Type: "string", Desc: "Cuisine (restaurants)"},
		},
		Exec: func(ctx context.Context, args map[string]any, _ contractx.AgentContext) (contractx.ToolResult, error) {
			return executeSearch(ctx, searcher, args), nil
		},
	}
}

// SearchArgs converts extracted params into executor args.
func SearchArgs(p contractx.SearchParams) map[string]any {
	raw, err := json.Marshal(p)
	if err != nil {
		return map[string]any{"query": p.Query}
	}
	args := map[string]any{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return map[string]any{"query": p.Query}
	}
	return args
}

func executeSearch(ctx context.Context, searcher contractx.Searcher, args map[string]any) contractx.ToolResult {
	params, err := searchParamsFromArgs(args)
	if err != nil {
		return searchFailure(err)
	}

	category := strings.TrimSpace(strings.ToLower(params.Category))
	if category == "" {
		category = CategoryGeneral
	}

	req, err := buildSearchRequest(category, params)
	if err != nil {
		return searchFailure(err)
	}

	resp, err := searcher.Search(ctx, req)
	if err != nil {
		return searchFailure(err)
	}

	return contractx.ToolResult{
		Tool: ToolSearch,
		Result: SearchOutput{
			Category: category,
			Query:    req.Query,
			Answer:   resp.Answer,
			Results:  resp.Results,
		},
	}
}

func searchFailure(err error) contractx.ToolResult {
	return contractx.ToolResult{
		Tool:            ToolSearch,
		Error:           err.Error(),
		FallbackMessage: FallbackMessage,
	}
}

func searchParamsFromArgs(args map[string]any) (contractx.SearchParams, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return contractx.SearchParams{}, fmt.Errorf("invalid search args: %w", err)
	}
	var params contractx.SearchParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return contractx.SearchParams{}, fmt.Errorf("invalid search args: %w", err)
	}
	return params, nil
}

// buildSearchRequest maps a category onto its query template and relevance
// hints. Each builder fails fast on a missing primary argument, before any
// network call.
func buildSearchRequest(category string, p contractx.SearchParams) (tavilyx.Request, error) {
	switch category {
	case CategoryHotels:
		return hotelsRequest(p)
	case CategoryFlights:
		return flightsRequest(p)
	case CategoryRestaurants:
		return restaurantsRequest(p)
	case CategoryProducts:
		return productsRequest(p)
	default:
		return generalRequest(p)
	}
}

func hotelsRequest(p contractx.SearchParams) (tavilyx.Request, error) {
	location := firstNonEmpty(p.Location, p.Destination)
	if location == "" {
		return tavilyx.Request{}, fmt.Errorf("hotel search requires a location")
	}

	query := fmt.Sprintf("best hotels in %s", location)
	if p.Budget != "" {
		query += fmt.Sprintf(" within %s", p.Budget)
	}
	return tavilyx.Request{
		Query:          query,
		SearchDepth:    tavilyx.SearchDepthAdvanced,
		MaxResults:     5,
		IncludeDomains: hotelDomains,
		IncludeAnswer:  true,
	}, nil
}

func flightsRequest(p contractx.SearchParams) (tavilyx.Request, error) {
	if p.Origin == "" || p.Destination == "" {
		return tavilyx.Request{}, fmt.Errorf("flight search requires origin and destination")
	}

	query := fmt.Sprintf("flights from %s to %s", p.Origin, p.Destination)
	if p.Date != "" {
		query += fmt.Sprintf(" on %s", p.Date)
	}
	return tavilyx.Request{
		Query:          query,
		SearchDepth:    tavilyx.SearchDepthAdvanced,
		MaxResults:     5,
		IncludeDomains: flightDomains,
		IncludeAnswer:  true,
	}, nil
}

func restaurantsRequest(p contractx.SearchParams) (tavilyx.Request, error) {
	if p.Location == "" {
		return tavilyx.Request{}, fmt.Errorf("restaurant search requires a location")
	}

	var query string
	if p.Cuisine != "" {
		query = fmt.Sprintf("%s restaurants in %s", p.Cuisine, p.Location)
	} else {
		query = fmt.Sprintf("best restaurants in %s", p.Location)
	}
	return tavilyx.Request{
		Query:          query,
		SearchDepth:    tavilyx.SearchDepthBasic,
		MaxResults:     5,
		IncludeDomains: restaurantDomains,
		IncludeAnswer:  true,
	}, nil
}

func productsRequest(p contractx.SearchParams) (tavilyx.Request, error) {
	if p.Query == "" {
		return tavilyx.Request{}, fmt.Errorf("product search requires a search term")
	}

	query := fmt.Sprintf("buy %s", p.Query)
	if p.Budget != "" {
		query += fmt.Sprintf(" under %s", p.Budget)
	}
	return tavilyx.Request{
		Query:          query,
		SearchDepth:    tavilyx.SearchDepthBasic,
		MaxResults:     5,
		IncludeDomains: productDomains,
	}, nil
}

func generalRequest(p contractx.SearchParams) (tavilyx.Request, error) {
	if p.Query == "" {
		return tavilyx.Request{}, fmt.Errorf("search requires a query")
	}
	return tavilyx.Request{
		Query:         p.Query,
		SearchDepth:   tavilyx.SearchDepthBasic,
		MaxResults:    5,
		IncludeAnswer: true,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
