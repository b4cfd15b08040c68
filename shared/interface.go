package shared

import (
	"context"
)

// Metadata represents descriptive ticker information.
type Metadata struct {
	Ticker string
	// Sector is the sector classification, empty when unknown.
	Sector string
}

// Article represents a news article related to a ticker.
type Article struct {
	Title string
	Link  string
	Image string
}

// BarFetcher defines the requirements for fetching bar series.
type BarFetcher interface {
	// FetchBars fetches the bars of the provided ticker over a (period, interval) window.
	FetchBars(ctx context.Context, ticker string, period Period, interval Interval) (Series, error)
}

// MetadataFetcher defines the requirements for fetching ticker metadata.
type MetadataFetcher interface {
	// FetchTickerMetadata fetches the metadata of the provided ticker.
	FetchTickerMetadata(ctx context.Context, ticker string) (Metadata, error)
}

// NewsFetcher defines the requirements for fetching ticker news.
type NewsFetcher interface {
	// FetchRecentNews fetches up to count recent articles for the provided ticker.
	FetchRecentNews(ctx context.Context, ticker string, count int) ([]Article, error)
}
