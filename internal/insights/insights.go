package insights

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"brokerage/server/internal/models"
)

const (
	SourceModel = "model"
	SourceRules = "rules"

	maxInsights = 8
)

type Config struct {
	Enabled bool
	APIURL  string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Report is the narrative summary of a dashboard snapshot.
type Report struct {
	Source      string    `json:"source"`
	Model       string    `json:"model,omitempty"`
	Insights    []string  `json:"insights"`
	Warning     string    `json:"warning,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Service asks an OpenAI-compatible chat completions endpoint to narrate a snapshot and
// falls back to locally generated rules when the model is disabled or unreachable.
type Service struct {
	logger *logrus.Logger
	client *http.Client
	config Config
	now    func() time.Time
}

func NewService(config Config, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: timeout,
		},
		config: config,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether a model will be consulted.
func (s *Service) Enabled() bool {
	return s.config.Enabled && s.config.APIKey != ""
}

// Generate never fails: model errors are logged and reported as a warning on a rules report.
func (s *Service) Generate(ctx context.Context, snap models.DashboardSnapshot) Report {
	if !s.Enabled() {
		return Report{Source: SourceRules, Insights: Rules(snap), GeneratedAt: s.now()}
	}

	lines, err := s.complete(ctx, buildPrompt(snap))
	if err != nil {
		s.logger.WithError(err).Warn("Insight model unavailable, using rule-based insights")
		return Report{Source: SourceRules, Insights: Rules(snap), Warning: err.Error(), GeneratedAt: s.now()}
	}
	return Report{Source: SourceModel, Model: s.config.Model, Insights: lines, GeneratedAt: s.now()}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

const systemPrompt = "You are a real-estate brokerage analyst. Reply with at most eight short bullet points, one per line, in Portuguese."

func (s *Service) complete(ctx context.Context, prompt string) ([]string, error) {
	payload := chatRequest{
		Model: s.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach insight model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, errors.New("invalid insights API key")
		case http.StatusBadRequest:
			return nil, fmt.Errorf("invalid completion request: %s", string(body))
		case http.StatusNotFound:
			return nil, fmt.Errorf("model %q or endpoint not found", s.config.Model)
		case http.StatusTooManyRequests:
			return nil, errors.New("insight model rate limit reached")
		default:
			return nil, fmt.Errorf("insight model error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("completion response has no choices")
	}

	lines := splitBullets(parsed.Choices[0].Message.Content)
	if len(lines) == 0 {
		return nil, errors.New("completion response is empty")
	}
	return lines, nil
}

var bulletPrefix = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

func splitBullets(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == maxInsights {
			break
		}
	}
	return out
}

func buildPrompt(snap models.DashboardSnapshot) string {
	var b strings.Builder
	sm := snap.Summary
	fmt.Fprintf(&b, "Imóveis: %d (por status: %v). Vendas: %d, receita R$ %.0f, comissão R$ %.0f.\n",
		sm.TotalProperties, sm.ByStatus, sm.TotalSales, sm.TotalRevenue, sm.TotalCommission)
	fmt.Fprintf(&b, "Clientes: %d (%d ativos, %d proprietários). Leads: %d.\n",
		sm.TotalClients, sm.ActiveClients, sm.Owners, sm.TotalLeads)

	if st := snap.PriceStatistics; st != nil {
		fmt.Fprintf(&b, "Preço médio R$ %.0f, mediana R$ %.0f, CV %.1f%%.\n", st.Mean, st.Median, st.CoefficientVariation)
	}
	if tr := snap.PriceTrend; tr != nil {
		fmt.Fprintf(&b, "Tendência de preços: %s (%s, R² %.2f), projeção R$ %.0f.\n", tr.Trend, tr.Strength, tr.RSquared, tr.Projection)
	}
	for _, seg := range snap.PriceSegments {
		fmt.Fprintf(&b, "Faixa %s: %d imóveis (%.1f%%).\n", seg.Label, seg.Count, seg.Percentage)
	}
	if la := snap.LeadAnalysis; la != nil {
		fmt.Fprintf(&b, "Score médio de leads %.1f, conversão esperada %.1f%%.\n", la.AverageScore, la.ExpectedConversion)
	}
	bm := snap.BusinessMetrics
	fmt.Fprintf(&b, "Giro de estoque %.1f%%, dias no mercado %.1f, eficiência %.1f%%, taxa de conversão %.1f%%.\n",
		bm.InventoryTurnover, bm.AverageDaysOnMarket, bm.MarketEfficiency, snap.Conversion.ConversionRate)
	return b.String()
}
