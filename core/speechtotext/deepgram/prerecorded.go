package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// PreRecordedClient transcribes finished response clips over Deepgram's
// prerecorded listen API. It is the transcription source for local
// evaluation, resolving clip transcripts after recording ends.
type PreRecordedClient struct {
	client   *http.Client
	endpoint string
}

func NewPreRecordedClient() *PreRecordedClient {
	return &PreRecordedClient{
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		endpoint: "https://api.deepgram.com/v1/listen",
	}
}

// TranscribeClip sends one WAV clip and returns its transcript. An empty
// transcript is not an error; it means nothing intelligible was said.
func (c *PreRecordedClient) TranscribeClip(ctx context.Context, wavData []byte) (string, error) {
	apiKey, ok := os.LookupEnv("DEEPGRAM_API_KEY")
	if !ok {
		return "", fmt.Errorf("deepgram api key not found")
	}

	listenUrl, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid listen endpoint: %w", err)
	}
	queryParams := listenUrl.Query()
	queryParams.Set("model", "nova-3")
	queryParams.Set("language", "en-US")
	queryParams.Set("smart_format", "true")
	listenUrl.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, listenUrl.String(), bytes.NewReader(wavData))
	if err != nil {
		return "", fmt.Errorf("failed to build transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription request failed with status %d", resp.StatusCode)
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", nil
	}
	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}
