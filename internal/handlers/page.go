package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"medquery/internal/chart"
	"medquery/internal/contextutil"
	"medquery/internal/service"
)

const (
	chartWidth  = 640
	chartHeight = 320
)

// PageHandler serves the query form and renders answers as HTML.
type PageHandler struct {
	answerService service.AnswerService
	recorder      service.Recorder
	markdown      goldmark.Markdown
	template      *template.Template
}

// pageData holds template data for the form page.
type pageData struct {
	Query          string
	Temperature    float64
	MaxTokens      int
	TopP           float64
	MaxQueryLength int
	Limits         pageLimits
	Answer         template.HTML
	Error          string
	Chart          chartData
}

type pageLimits struct {
	MinTemperature, MaxTemperature float64
	MinMaxTokens, MaxMaxTokens     int
	MinTopP, MaxTopP               float64
}

type chartData struct {
	Title, XLabel, YLabel string
	Width, Height, ZeroY  float64
	Lines                 []chartLine
}

type chartLine struct {
	Label, Color, Points string
	LegendY              float64
}

// NewPageHandler creates a new handler for the query form. recorder may be nil.
func NewPageHandler(answerService service.AnswerService, recorder service.Recorder) *PageHandler {
	return &PageHandler{
		answerService: answerService,
		recorder:      recorder,
		markdown: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// ServeHTTP renders the empty form on GET and the answer on POST.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	data := newPageData()

	switch r.Method {
	case http.MethodGet:
		h.render(w, r, http.StatusOK, data)
		return
	case http.MethodPost:
	default:
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		rejectInput(ctx, h.recorder, start, err)
		data.Error = "Invalid form submission"
		h.render(w, r, http.StatusBadRequest, data)
		return
	}

	data.Query = r.PostFormValue("query")
	query, err := collectForm(r)
	if err != nil {
		rejectInput(ctx, h.recorder, start, err)
		status, message, _ := classifyError(err)
		data.Error = message
		h.render(w, r, status, data)
		return
	}
	data.Temperature, data.MaxTokens, data.TopP = query.Temperature, query.MaxTokens, query.TopP
	data.Chart = buildChart(query.Temperature, query.MaxTokens, query.TopP)

	// RequestAnswer logs and records its own failures.
	result, err := h.answerService.RequestAnswer(ctx, query)
	if err != nil {
		status, message, _ := classifyError(err)
		data.Error = message
		h.render(w, r, status, data)
		return
	}

	answerHTML, err := h.renderMarkdown(result.AnswerText)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render answer markdown", "error", err)
		answerHTML = "<p>" + template.HTMLEscapeString(result.AnswerText) + "</p>"
	}
	data.Answer = template.HTML(answerHTML)

	h.render(w, r, http.StatusOK, data)
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, data pageData) {
	var buf bytes.Buffer
	if err := h.template.Execute(&buf, data); err != nil {
		ctx := r.Context()
		contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "failed to execute page template", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderMarkdown converts the answer to HTML. Raw HTML in the answer is dropped.
func (h *PageHandler) renderMarkdown(content string) (string, error) {
	var buf bytes.Buffer
	if err := h.markdown.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

func newPageData() pageData {
	return pageData{
		Temperature:    service.DefaultTemperature,
		MaxTokens:      service.DefaultMaxTokens,
		TopP:           service.DefaultTopP,
		MaxQueryLength: service.MaxQueryLength,
		Limits: pageLimits{
			MinTemperature: service.MinTemperature,
			MaxTemperature: service.MaxTemperature,
			MinMaxTokens:   service.MinMaxTokens,
			MaxMaxTokens:   service.MaxMaxTokens,
			MinTopP:        service.MinTopP,
			MaxTopP:        service.MaxTopP,
		},
		Chart: buildChart(service.DefaultTemperature, service.DefaultMaxTokens, service.DefaultTopP),
	}
}

// collectForm reads the form fields into a QueryRequest. Empty numeric fields use the defaults.
func collectForm(r *http.Request) (service.QueryRequest, error) {
	temperature, err := formFloat(r, "temperature", service.DefaultTemperature)
	if err != nil {
		return service.QueryRequest{}, err
	}
	maxTokens, err := formInt(r, "max_tokens", service.DefaultMaxTokens)
	if err != nil {
		return service.QueryRequest{}, err
	}
	topP, err := formFloat(r, "top_p", service.DefaultTopP)
	if err != nil {
		return service.QueryRequest{}, err
	}
	return service.Collect(r.PostFormValue("query"), temperature, maxTokens, topP)
}

func formFloat(r *http.Request, field string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Message: "must be a number"}
	}
	return v, nil
}

func formInt(r *http.Request, field string, def int) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(field))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Message: "must be an integer"}
	}
	return v, nil
}

func buildChart(temperature float64, maxTokens int, topP float64) chartData {
	series := chart.Impact(temperature, maxTokens, topP)
	viewport := chart.NewViewport(series, chartWidth, chartHeight)

	lines := make([]chartLine, 0, len(series))
	for i, s := range series {
		lines = append(lines, chartLine{
			Label:   s.Label,
			Color:   s.Color,
			Points:  viewport.Polyline(s),
			LegendY: float64(20 * (i + 1)),
		})
	}

	return chartData{
		Title:  chart.Title,
		XLabel: chart.XLabel,
		YLabel: chart.YLabel,
		Width:  chartWidth,
		Height: chartHeight,
		ZeroY:  viewport.ZeroY(),
		Lines:  lines,
	}
}

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Medical Research Query Assistant</title>
  <style>
    body {
      font-family: Arial, sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.6;
    }
    .title {
      color: #0044cc;
      font-size: 25px;
      font-weight: bold;
      text-align: center;
      white-space: nowrap;
      background-color: #FFEB3B;
      padding: 10px;
      border-radius: 5px;
    }
    .subheader {
      color: #0066ff;
      font-size: 24px;
      font-weight: bold;
    }
    .input-box {
      box-sizing: border-box;
      background-color: #FFEB3B;
      border: 2px solid #ccc;
      padding: 10px;
      border-radius: 5px;
      font-size: 18px;
      width: 100%;
    }
    .sliders {
      display: grid;
      grid-template-columns: repeat(3, 1fr);
      gap: 1rem;
      margin: 1rem 0;
    }
    .sliders label {
      display: block;
      font-size: 0.9rem;
    }
    .sliders input[type=range] {
      width: 100%;
      accent-color: #ADD8E6;
    }
    .button {
      width: 100%;
      background-color: #22eff2;
      color: white;
      padding: 10px 20px;
      border: none;
      font-size: 18px;
      cursor: pointer;
      border-radius: 5px;
    }
    .error {
      background: #fdecea;
      border: 1px solid #f5c2c0;
      color: #8a1c1c;
      padding: 0.75rem 1rem;
      border-radius: 5px;
    }
    svg text {
      font-size: 12px;
    }
  </style>
</head>
<body>
  <div class="title">MEDICAL RESEARCH QUERY ASSISTANT</div>

  <form method="post" action="/">
    <p>
      <input class="input-box" type="text" name="query" value="{{.Query}}"
        maxlength="{{.MaxQueryLength}}" placeholder="E.g. What is diabetes?"
        title="Type your medical query here." aria-label="Enter Your Query">
    </p>
    <div class="sliders">
      <div>
        <label for="temperature">Temperature (controls randomness): <output id="temperature-value">{{printf "%.1f" .Temperature}}</output></label>
        <input type="range" id="temperature" name="temperature"
          min="{{.Limits.MinTemperature}}" max="{{.Limits.MaxTemperature}}" step="0.1" value="{{printf "%.1f" .Temperature}}"
          title="Higher values produce more random responses."
          oninput="document.getElementById('temperature-value').value = Number(this.value).toFixed(1)">
      </div>
      <div>
        <label for="max_tokens">Max Tokens (controls the response length): <output id="max-tokens-value">{{.MaxTokens}}</output></label>
        <input type="range" id="max_tokens" name="max_tokens"
          min="{{.Limits.MinMaxTokens}}" max="{{.Limits.MaxMaxTokens}}" step="10" value="{{.MaxTokens}}"
          title="Controls the length of the response."
          oninput="document.getElementById('max-tokens-value').value = this.value">
      </div>
      <div>
        <label for="top_p">Top-p (controls diversity of responses): <output id="top-p-value">{{printf "%.1f" .TopP}}</output></label>
        <input type="range" id="top_p" name="top_p"
          min="{{.Limits.MinTopP}}" max="{{.Limits.MaxTopP}}" step="0.1" value="{{printf "%.1f" .TopP}}"
          title="Higher values provide more diversity."
          oninput="document.getElementById('top-p-value').value = Number(this.value).toFixed(1)">
      </div>
    </div>

    <svg width="{{.Chart.Width}}" height="{{.Chart.Height}}" viewBox="0 0 {{.Chart.Width}} {{.Chart.Height}}" role="img" aria-label="{{.Chart.Title}}">
      <title>{{.Chart.Title}}</title>
      <line x1="0" y1="{{.Chart.ZeroY}}" x2="{{.Chart.Width}}" y2="{{.Chart.ZeroY}}" stroke="#999" stroke-dasharray="4 4"/>
      {{range .Chart.Lines}}
      <polyline fill="none" stroke="{{.Color}}" stroke-width="2" points="{{.Points}}"/>
      <text x="{{$.Chart.Width}}" dx="-130" y="{{.LegendY}}" fill="{{.Color}}">{{.Label}}</text>
      {{end}}
    </svg>
    <p><small>{{.Chart.XLabel}} &middot; {{.Chart.YLabel}}</small></p>

    <button class="button" type="submit" title="Click to get a response to your query.">Get Answer</button>
  </form>

  {{if .Error}}
  <p class="error" role="alert">{{.Error}}</p>
  {{end}}
  {{if .Answer}}
  <div class="subheader">Answer:</div>
  <article>{{.Answer}}</article>
  {{end}}
</body>
</html>`
