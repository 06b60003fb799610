package imagery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fieldscout/fieldscout/internal/analysis/vegetation"
	"github.com/fieldscout/fieldscout/internal/model"
)

// Classifier is the opaque disease-detection collaborator. The model
// behind it is external; we only carry its verdict through the pipeline.
type Classifier interface {
	Classify(ctx context.Context, img *vegetation.Image) (*model.DiseaseFinding, error)
}

// NoopClassifier reports no findings. Used when no classifier endpoint
// is configured.
type NoopClassifier struct{}

func (NoopClassifier) Classify(context.Context, *vegetation.Image) (*model.DiseaseFinding, error) {
	return nil, nil
}

type classifyRequest struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Pixels []uint8 `json:"pixels"`
}

type classifyResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// HTTPClassifier posts raw frames to an external classification endpoint.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClassifier) Classify(ctx context.Context, img *vegetation.Image) (*model.DiseaseFinding, error) {
	if c.url == "" {
		return nil, fmt.Errorf("missing classifier url")
	}
	body, err := json.Marshal(classifyRequest{Width: img.Width, Height: img.Height, Pixels: img.Pix})
	if err != nil {
		return nil, err
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("classifier status %d: %s", resp.StatusCode, string(b))
	}
	var out classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.Label == "" {
		return nil, nil
	}
	return &model.DiseaseFinding{Label: out.Label, Confidence: out.Confidence}, nil
}
