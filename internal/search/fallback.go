package search

import (
	"fmt"
	"time"

	"github.com/liliang-cn/qualia/internal/domain"
)

// FallbackAnswer is the templated answer used when no live completion is
// available.
func FallbackAnswer(query string) string {
	return fmt.Sprintf("I couldn't access real-time data for \"%s\" due to an API issue. Here's a general response: This is a simulated answer about \"%s\".", query, query)
}

// FailureAnswer is the templated answer used when the live call failed.
func FailureAnswer(query, reason string) string {
	return fmt.Sprintf("I couldn't access real-time data for \"%s\" due to an API issue. %s", query, reason)
}

// MockThinking returns the adapter's three-step thinking trace.
func MockThinking(query string, now time.Time) []domain.ThinkingStep {
	return []domain.ThinkingStep{
		{ID: "1", Content: fmt.Sprintf("Analyzing the query: \"%s\"", query), Type: domain.StepThinking, Timestamp: now},
		{ID: "2", Content: fmt.Sprintf("Searching the web for relevant information about \"%s\"", query), Type: domain.StepSearch, Timestamp: now.Add(time.Second)},
		{ID: "3", Content: "Found several relevant sources with information", Type: domain.StepResult, Timestamp: now.Add(2 * time.Second)},
	}
}

// MockSearchResults returns the citation cards for a branding variant. The
// entries are templates; nothing is retrieved.
func MockSearchResults(branding, query string) []domain.SearchResult {
	if branding == domain.BrandingTzironis {
		return []domain.SearchResult{
			{
				Title:   "Tzironis Business Products Catalog",
				URL:     "https://tzironis.gr/products",
				Snippet: "Browse our complete catalog of cleaning supplies, paper products, and professional cleaning equipment for businesses.",
			},
			{
				Title:   "Tzironis Business Solutions - Professional Cleaning Supplies",
				URL:     "https://tzironis.gr/professional-cleaning",
				Snippet: "High-quality professional cleaning products and solutions for businesses of all sizes. Bulk ordering available.",
			},
			{
				Title:   "Tzironis Paper Products for Businesses",
				URL:     "https://tzironis.gr/paper-products",
				Snippet: "Commercial-grade paper products including toilet paper, paper towels, napkins, and specialized paper products for businesses.",
			},
		}
	}
	return []domain.SearchResult{
		{
			Title:   "Qualia AI Product Catalog",
			URL:     "https://qualia.solutions/products",
			Snippet: fmt.Sprintf("Browse our comprehensive catalog of AI solutions related to %s. Find the right tools to optimize your business operations.", query),
		},
		{
			Title:   "Qualia AI Assistant Documentation",
			URL:     "https://qualia.solutions/docs",
			Snippet: fmt.Sprintf("Official documentation and guides for implementing %s in your business workflow using Qualia AI Assistant.", query),
		},
		{
			Title:   "Business Case Studies - Qualia Solutions",
			URL:     "https://qualia.solutions/case-studies",
			Snippet: fmt.Sprintf("Real-world examples of how businesses improved their %s processes with Qualia AI Assistant.", query),
		},
		{
			Title:   "Qualia AI Blog - Latest Insights",
			URL:     "https://qualia.solutions/blog",
			Snippet: fmt.Sprintf("Expert articles and analysis on %s and other AI optimization strategies.", query),
		},
	}
}
