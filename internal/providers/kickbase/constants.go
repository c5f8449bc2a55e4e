package kickbase

import "time"

const (
	providerName       = "kickbase"
	defaultBaseURL     = "https://api.kickbase.com/v4"
	defaultCompetition = "1"
	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// maxBodyBytes caps how much of a response we buffer.
	maxBodyBytes = 8 << 20
	// errorSnippetBytes bounds the body echoed into errors.
	errorSnippetBytes = 512
)
