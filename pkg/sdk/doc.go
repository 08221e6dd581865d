// Package sdk is the Go client for the furnish API. It covers the three
// public endpoints: search, item detail, and health.
//
//	client := sdk.New("https://api.example.com", sdk.WithAPIKey("key"))
//	results, err := client.Search(ctx, sdk.SearchRequest{Query: "oak dining table"})
package sdk
