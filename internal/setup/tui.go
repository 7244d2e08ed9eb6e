package setup

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/marti-dashboard/config"
	"github.com/vadiminshakov/marti-dashboard/internal/format"
)

// DefaultPath of the generated config file.
const DefaultPath = "dashboard.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

func step(title string) {
	fmt.Print("\033[H\033[2J") // clear screen
	fmt.Println(headerStyle.Render("DASHBOARD CONFIG WIZARD"))
	fmt.Println(stepStyle.Render(title))
}

// RunTUI asks for the dashboard settings and writes them to path.
// It returns the saved configuration.
func RunTUI(path string, current config.Config) (config.Config, error) {
	if path == "" {
		path = DefaultPath
	}

	conf := current
	pollStr := conf.PollInterval.String()
	timeoutStr := conf.RequestTimeout.String()
	retriesStr := strconv.Itoa(conf.MaxRetries)
	confirm := true

	step("STEP 1: BACKEND")
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Where does the trading backend live?\n"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend API URL").
				Description("Base URL serving /trades/ and /portfolio/").
				Value(&conf.APIURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Request timeout").
				Description("Duration string (e.g. 5s, 10s)").
				Value(&timeoutStr).
				Validate(validatePositiveDuration),
			huh.NewInput().
				Title("Max retries").
				Description("Retries of a failed request, 0 disables").
				Value(&retriesStr).
				Validate(validateRetries),
		),
	).Run()
	if err != nil {
		return config.Config{}, err
	}

	step("STEP 2: DISPLAY")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Render mode").
				Options(
					huh.NewOption("Web page", config.ModeWeb),
					huh.NewOption("Terminal", config.ModeTerminal),
				).
				Value(&conf.Mode),
			huh.NewInput().
				Title("Currency").
				Description("ISO code (e.g. USD, EUR)").
				Value(&conf.Currency).
				Validate(validateCurrency),
			huh.NewInput().
				Title("Timezone").
				Description("IANA name (e.g. UTC, Europe/Berlin) or Local").
				Value(&conf.Timezone).
				Validate(validateTimezone),
		),
	).Run()
	if err != nil {
		return config.Config{}, err
	}

	step("STEP 3: REFRESH")
	group := []huh.Field{
		huh.NewInput().
			Title("Poll interval").
			Description("Duration string (e.g. 30s, 1m), 0s disables polling").
			Value(&pollStr).
			Validate(validateDuration),
	}
	if conf.Mode == config.ModeWeb {
		group = append(group, huh.NewInput().
			Title("Listen address").
			Description("Address of the dashboard web server (e.g. :8080)").
			Value(&conf.Listen).
			Validate(validateNotEmpty))
	}
	if err := huh.NewForm(huh.NewGroup(group...)).Run(); err != nil {
		return config.Config{}, err
	}

	step("SUMMARY")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save configuration to %s?", path)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return config.Config{}, err
	}
	if !confirm {
		return config.Config{}, fmt.Errorf("setup cancelled")
	}

	if err := apply(&conf, pollStr, timeoutStr, retriesStr); err != nil {
		return config.Config{}, err
	}
	if err := config.Save(path, conf); err != nil {
		return config.Config{}, err
	}
	conf.Path = path
	conf.Setup = false

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s", path)))
	return conf, nil
}

// apply converts the raw wizard answers and validates the result.
func apply(conf *config.Config, pollStr, timeoutStr, retriesStr string) error {
	poll, err := time.ParseDuration(pollStr)
	if err != nil {
		return fmt.Errorf("invalid poll interval: %w", err)
	}
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}
	retries, err := strconv.Atoi(retriesStr)
	if err != nil {
		return fmt.Errorf("invalid max retries: %w", err)
	}
	conf.PollInterval = poll
	conf.RequestTimeout = timeout
	conf.MaxRetries = retries
	return conf.Validate()
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("must be an absolute http(s) url, e.g. http://localhost:8000")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("must be a duration like 30s")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePositiveDuration(s string) error {
	if err := validateDuration(s); err != nil {
		return err
	}
	if d, _ := time.ParseDuration(s); d == 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validateRetries(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("must be a non-negative integer")
	}
	return nil
}

func validateCurrency(s string) error {
	if !format.KnownCurrency(strings.ToUpper(s)) {
		return fmt.Errorf("unknown currency code")
	}
	return nil
}

func validateTimezone(s string) error {
	if _, err := time.LoadLocation(s); err != nil {
		return fmt.Errorf("unknown timezone")
	}
	return nil
}

func validateNotEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be empty")
	}
	return nil
}
