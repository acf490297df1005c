package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"tube-brief/logger"
)

const (
	serperAPIURL     = "https://google.serper.dev/search"
	wikipediaAPIURL  = "https://en.wikipedia.org/w/api.php"
	toolSearchGoogle = "search_google"
	toolSearchWiki   = "search_wikipedia"
)

// FunctionTool is an OpenAI-style function declaration.
type FunctionTool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Tools describes the tool set for one generation call. Gemini gets native
// search grounding; OpenAI-style backends get function-calling declarations
// dispatched through Execute.
type Tools struct {
	GoogleSearch bool
	Functions    []FunctionTool
}

// SearchTools returns the search tool configuration for a provider, or nil
// when the provider supports none.
func SearchTools(provider string) *Tools {
	switch provider {
	case ProviderGemini:
		return &Tools{GoogleSearch: true}
	case ProviderOpenAI, ProviderOpenAICompatible:
		queryParam := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to use.",
				},
			},
			"required": []string{"query"},
		}
		return &Tools{Functions: []FunctionTool{
			{
				Name:        toolSearchGoogle,
				Description: "Search the web for current information, facts, or recent events. Uses Google Search via Serper.",
				Parameters:  queryParam,
			},
			{
				Name:        toolSearchWiki,
				Description: "Search Wikipedia for general knowledge, history, definitions, and summaries of topics.",
				Parameters:  queryParam,
			},
		}}
	}
	return nil
}

// Execute dispatches one tool call. Failures come back as inline error
// strings for the model to read, never as Go errors: a bad tool call must
// not kill the conversation.
func (t *Tools) Execute(ctx context.Context, name string, args map[string]any) string {
	query, _ := args["query"].(string)
	switch name {
	case toolSearchGoogle:
		return searchGoogle(ctx, query)
	case toolSearchWiki:
		return searchWikipedia(ctx, query)
	default:
		return fmt.Sprintf("Error: Tool %s not found.", name)
	}
}

var toolHTTPClient = &http.Client{Timeout: 20 * time.Second}

// searchGoogle queries Serper.dev. Requires SERPER_API_KEY.
func searchGoogle(ctx context.Context, query string) string {
	apiKey := os.Getenv("SERPER_API_KEY")
	if apiKey == "" {
		logger.Log.Warn("Serper API key not found, skipping search")
		return "Error: Serper Search is not configured. Please set SERPER_API_KEY in your .env file."
	}

	body, err := json.Marshal(map[string]string{"q": query})
	if err != nil {
		return "An error occurred while performing search."
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, serperAPIURL, bytes.NewReader(body))
	if err != nil {
		return "An error occurred while performing search."
	}
	req.Header.Set("X-API-KEY", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := toolHTTPClient.Do(req)
	if err != nil {
		logger.Log.Errorf("serper request failed: %v", err)
		return "An error occurred while performing search."
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errText, _ := io.ReadAll(resp.Body)
		logger.Log.Errorf("serper API error: %s", string(errText))
		return fmt.Sprintf("Error performing Search: %s", resp.Status)
	}

	var data struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
		AnswerBox struct {
			Answer  string `json:"answer"`
			Snippet string `json:"snippet"`
		} `json:"answerBox"`
		KnowledgeGraph struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		} `json:"knowledgeGraph"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "An error occurred while performing search."
	}

	if len(data.Organic) == 0 {
		return "No search results found."
	}

	var results []string
	for i, item := range data.Organic {
		if i >= 5 {
			break
		}
		results = append(results, fmt.Sprintf("Title: %s\nLink: %s\nSnippet: %s\n", item.Title, item.Link, item.Snippet))
	}

	var extra strings.Builder
	if data.AnswerBox.Answer != "" || data.AnswerBox.Snippet != "" {
		answer := data.AnswerBox.Answer
		if answer == "" {
			answer = data.AnswerBox.Snippet
		}
		fmt.Fprintf(&extra, "Answer: %s\n\n", answer)
	}
	if data.KnowledgeGraph.Title != "" {
		fmt.Fprintf(&extra, "Knowledge Graph: %s - %s\n\n", data.KnowledgeGraph.Title, data.KnowledgeGraph.Description)
	}

	return fmt.Sprintf("Search Results for %q:\n\n%s%s", query, extra.String(), strings.Join(results, "\n---\n"))
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// searchWikipedia uses the MediaWiki API; no key required. Tries to fetch
// intro extracts for the top results, falling back to search snippets.
func searchWikipedia(ctx context.Context, query string) string {
	searchURL := fmt.Sprintf("%s?action=query&list=search&srsearch=%s&format=json&origin=*",
		wikipediaAPIURL, url.QueryEscape(query))

	var searchData struct {
		Query struct {
			Search []struct {
				PageID  int64  `json:"pageid"`
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}
	if err := getJSON(ctx, searchURL, &searchData); err != nil {
		logger.Log.Errorf("wikipedia search failed: %v", err)
		return "An error occurred while searching Wikipedia."
	}

	hits := searchData.Query.Search
	if len(hits) == 0 {
		return "No Wikipedia articles found."
	}
	if len(hits) > 3 {
		hits = hits[:3]
	}

	var pageIDs []string
	for _, h := range hits {
		pageIDs = append(pageIDs, fmt.Sprint(h.PageID))
	}
	extractsURL := fmt.Sprintf("%s?action=query&prop=extracts&pageids=%s&exintro=true&explaintext=true&format=json&origin=*",
		wikipediaAPIURL, strings.Join(pageIDs, "|"))

	var extractsData struct {
		Query struct {
			Pages map[string]struct {
				PageID  int64  `json:"pageid"`
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := getJSON(ctx, extractsURL, &extractsData); err != nil {
		// Fall back to search snippets when the extract fetch fails.
		var snippets []string
		for _, h := range hits {
			snippets = append(snippets, fmt.Sprintf("Title: %s\nSnippet: %s", h.Title, htmlTagRe.ReplaceAllString(h.Snippet, "")))
		}
		return "Wikipedia Search Results (Snippets):\n" + strings.Join(snippets, "\n\n")
	}

	var extracts []string
	for _, page := range extractsData.Query.Pages {
		extracts = append(extracts, fmt.Sprintf("Title: %s\nSummary: %s\nLink: https://en.wikipedia.org/?curid=%d",
			page.Title, page.Extract, page.PageID))
	}

	return fmt.Sprintf("Wikipedia Search Results for %q:\n\n%s", query, strings.Join(extracts, "\n\n---\n\n"))
}

func getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := toolHTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
