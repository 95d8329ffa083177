// internal/trivia/client.go
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultBaseURL points at the Open Trivia Database API.
const DefaultBaseURL = "https://opentdb.com"

// Category is one entry from the provider's category listing.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Question is a single trivia question as returned by the provider. The
// server only ever compares CorrectAnswer against submitted answers; the
// rest of the fields pass through to clients untouched.
type Question struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type categoryResponse struct {
	TriviaCategories []Category `json:"trivia_categories"`
}

type questionResponse struct {
	ResponseCode int        `json:"response_code"`
	Results      []Question `json:"results"`
}

// Client fetches trivia content over HTTP and caches it for the process
// lifetime. The category list is fetched once at startup; question sets are
// memoized per (amount, category, difficulty) key with no expiry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger

	mu         sync.RWMutex
	categories []Category
	questions  map[string][]Question
}

// NewClient builds a Client against baseURL, or TRIVIA_API_URL / the public
// Open Trivia DB when baseURL is empty.
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	if baseURL == "" {
		baseURL = os.Getenv("TRIVIA_API_URL")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		questions:  make(map[string][]Question),
	}
}

// FetchCategories loads the provider's category list into the cache. Called
// once at process start; on failure the cache stays empty and category
// listing degrades to an empty list rather than failing the process.
func (c *Client) FetchCategories(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api_category.php", nil)
	if err != nil {
		c.logger.Warnf("trivia: building category request: %v", err)
		return
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("trivia: fetching categories: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("trivia: category fetch returned %s", resp.Status)
		return
	}

	var parsed categoryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warnf("trivia: decoding categories: %v", err)
		return
	}

	c.mu.Lock()
	c.categories = parsed.TriviaCategories
	c.mu.Unlock()
	c.logger.Infof("trivia: cached %d categories", len(parsed.TriviaCategories))
}

// Categories returns the cached category list. Empty until FetchCategories
// has succeeded once.
func (c *Client) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// CategoryName resolves a category id against the cache, falling back to
// "Unknown" when the id is absent or the cache is empty.
func (c *Client) CategoryName(id int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat.Name
		}
	}
	return "Unknown"
}

// FetchQuestions returns a question set for the given parameters, memoized
// per exact (amount, category, difficulty) key for the process lifetime. Any
// upstream failure yields an empty slice; callers decide whether that is
// fatal for their operation.
func (c *Client) FetchQuestions(ctx context.Context, amount, category int, difficulty string) []Question {
	key := fmt.Sprintf("%d_%d_%s", amount, category, difficulty)

	c.mu.RLock()
	cached, ok := c.questions[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	params := url.Values{}
	params.Set("amount", fmt.Sprint(amount))
	params.Set("category", fmt.Sprint(category))
	params.Set("difficulty", difficulty)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api.php?"+params.Encode(), nil)
	if err != nil {
		c.logger.Warnf("trivia: building question request: %v", err)
		return nil
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnf("trivia: fetching questions for %s: %v", key, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warnf("trivia: question fetch for %s returned %s", key, resp.Status)
		return nil
	}

	var parsed questionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		c.logger.Warnf("trivia: decoding questions for %s: %v", key, err)
		return nil
	}
	if len(parsed.Results) == 0 {
		// Do not memoize failures; a later attempt may succeed.
		return nil
	}

	c.mu.Lock()
	c.questions[key] = parsed.Results
	c.mu.Unlock()
	return parsed.Results
}
