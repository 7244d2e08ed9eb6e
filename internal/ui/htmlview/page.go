package htmlview

import (
	"bytes"
	"html/template"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/marti-dashboard/internal/dashboard"
	"github.com/vadiminshakov/marti-dashboard/internal/domain"
	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

// PageOptions controls page level rendering.
type PageOptions struct {
	Title       string
	Currency    string
	Location    *time.Location
	StreamPath  string
	RefreshPath string
	Now         time.Time
}

type pageModel struct {
	Title       string
	Phase       string
	Cycle       uint64
	Loading     bool
	Failed      bool
	LoadingText string
	Message     string
	BackendURL  string
	UpdatedAt   string
	Year        int
	StreamPath  string
	RefreshPath string

	Summary template.HTML
	Chart   template.HTML
	Table   template.HTML
}

// Page renders the complete document for v. Loading and error phases render a
// full-screen indicator and never the data components.
func Page(w io.Writer, v dashboard.View, opts PageOptions) error {
	if opts.Title == "" {
		opts.Title = dashboard.DefaultTitle
	}
	if opts.Currency == "" {
		opts.Currency = format.DefaultCurrency
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	m := pageModel{
		Title:       opts.Title,
		Phase:       v.Phase.String(),
		Cycle:       v.Cycle,
		LoadingText: dashboard.LoadingText,
		BackendURL:  v.BackendURL,
		Year:        opts.Now.Year(),
		StreamPath:  opts.StreamPath,
		RefreshPath: opts.RefreshPath,
	}

	switch v.Phase {
	case domain.PhaseIdle, domain.PhaseLoading:
		m.Loading = true
	case domain.PhaseError:
		m.Failed = true
		m.Message = v.Message
	case domain.PhaseReady:
		var err error
		if m.Summary, err = fragment(func(b *bytes.Buffer) error {
			return PortfolioSummary(b, v.Portfolio, opts.Currency)
		}); err != nil {
			return err
		}
		if m.Chart, err = fragment(func(b *bytes.Buffer) error {
			return ProfitChart(b, v.Chart)
		}); err != nil {
			return err
		}
		if m.Table, err = fragment(func(b *bytes.Buffer) error {
			return TradeTable(b, v.Trades, opts.Currency, opts.Location)
		}); err != nil {
			return err
		}
		m.UpdatedAt = format.DateTime(v.UpdatedAt, opts.Location)
	}

	return execute(w, "page", m)
}

// fragment captures an already escaped component into the page model.
func fragment(render func(*bytes.Buffer) error) (template.HTML, error) {
	var b bytes.Buffer
	if err := render(&b); err != nil {
		return "", errors.Wrap(err, "render fragment")
	}
	return template.HTML(b.String()), nil
}

const pageTmpl = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    :root { --bg:#171923; --panel:#2d3748; --card:#4a5568; --ink:#e2e8f0; --ink-soft:#a0aec0; --accent:#63b3ed; --green:#48bb78; --red:#f56565; }
    * { box-sizing:border-box; }
    body { margin:0; min-height:100vh; background:var(--bg); color:var(--ink); font-family:'Space Mono','JetBrains Mono',monospace; }
    .fullscreen { min-height:100vh; display:flex; flex-direction:column; align-items:center; justify-content:center; gap:1rem; }
    .spinner { width:4rem; height:4rem; border-radius:50%; border-top:4px solid var(--accent); animation:spin 1s linear infinite; }
    @keyframes spin { to { transform:rotate(360deg); } }
    .failure { color:var(--red); }
    .failure code { background:var(--card); padding:.25rem; border-radius:4px; color:var(--ink); }
    .hint { color:var(--ink-soft); font-size:.85rem; }
    main { padding:2rem; max-width:1400px; margin:0 auto; }
    header { display:flex; justify-content:space-between; align-items:center; margin-bottom:2rem; }
    h1 { color:var(--accent); margin:0; }
    h2 { color:var(--accent); font-size:1.2rem; }
    section { background:var(--panel); padding:1.5rem; border-radius:8px; margin-bottom:2rem; }
    .summary { display:grid; grid-template-columns:repeat(auto-fit, minmax(220px, 1fr)); gap:1rem; }
    .card { background:var(--card); padding:1rem; border-radius:6px; text-align:center; }
    .card h3 { font-size:.8rem; color:var(--ink-soft); margin:0 0 .25rem; }
    .value { font-size:1.8rem; font-weight:700; margin:0; }
    .total { color:var(--green); }
    .cash { color:var(--accent); }
    .positive, .buy { color:var(--green); }
    .negative, .sell { color:var(--red); }
    .empty { color:var(--ink-soft); text-align:center; padding:2rem 0; }
    .chart { width:100%; height:auto; }
    .chart .axis { stroke:var(--ink-soft); }
    .chart .zero { stroke:var(--card); stroke-dasharray:3 3; }
    .chart .line { stroke:var(--green); stroke-width:2; }
    .chart .dot { fill:var(--green); }
    .chart .tick { fill:var(--ink-soft); font-size:10px; }
    .chart .tick.end { text-anchor:end; }
    table.trades { width:100%; border-collapse:collapse; }
    table.trades th { text-align:left; font-size:.75rem; text-transform:uppercase; color:var(--ink-soft); padding:.75rem; }
    table.trades td { padding:.75rem; border-top:1px solid var(--card); font-size:.9rem; }
    button { background:var(--card); color:var(--ink); border:1px solid var(--ink-soft); padding:.4rem .9rem; cursor:pointer; }
    footer { text-align:center; color:var(--ink-soft); margin-top:3rem; }
  </style>
</head>
<body data-phase="{{.Phase}}">
{{if .Loading}}<div class="fullscreen">
  <div class="spinner"></div>
  <p>{{.LoadingText}}</p>
</div>
{{else if .Failed}}<div class="fullscreen failure">
  <p><strong>Error</strong></p>
  <p>{{.Message}}</p>
  <p class="hint">Make sure your backend server is running at <code>{{.BackendURL}}</code>.</p>
  {{if .RefreshPath}}<button type="button" id="refresh">Retry</button>{{end}}
</div>
{{else}}<main>
  <header>
    <h1>{{.Title}}</h1>
    <div><span class="hint">Updated {{.UpdatedAt}}</span> {{if .RefreshPath}}<button type="button" id="refresh">Refresh</button>{{end}}</div>
  </header>
  {{if .Summary}}<section>{{.Summary}}</section>{{end}}
  <section>
    <h2>Profit/Loss Over Time</h2>
    {{.Chart}}
  </section>
  <section>
    <h2>Recent Trades</h2>
    {{.Table}}
  </section>
  <footer><p>&copy; {{.Year}} {{.Title}}</p></footer>
</main>
{{end}}<script>
  (function () {
    var phase = {{.Phase}};
    var cycle = {{.Cycle}};
    var refresh = document.getElementById("refresh");
    if (refresh) {
      refresh.addEventListener("click", function () {
        fetch({{.RefreshPath}}, { method: "POST" });
      });
    }
    if (!{{.StreamPath}} || !window.EventSource) {
      return;
    }
    var es = new EventSource({{.StreamPath}});
    es.addEventListener("state", function (e) {
      var s = JSON.parse(e.data);
      if (s.phase !== phase || s.cycle !== cycle) {
        es.close();
        window.location.reload();
      }
    });
  })();
</script>
</body>
</html>
{{end}}`
