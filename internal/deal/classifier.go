// Package deal classifies activity into the four DEAL buckets
// (Delegate / Eliminate / Automate / Leverage) and detects recurring
// time sinks and repetitive checks.
package deal

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"timeopt/internal/config"
	"timeopt/internal/models"
)

var distractionApps = map[string]bool{
	"twitter":   true,
	"x":         true,
	"facebook":  true,
	"instagram": true,
	"tiktok":    true,
	"reddit":    true,
	"youtube":   true,
	"netflix":   true,
	"twitch":    true,
	"steam":     true,
	"9gag":      true,
}

var deepWorkApps = map[string]bool{
	"code":               true,
	"visual studio code": true,
	"xcode":              true,
	"goland":             true,
	"intellij idea":      true,
	"pycharm":            true,
	"vim":                true,
	"neovim":             true,
	"emacs":              true,
	"sublime text":       true,
	"zed":                true,
	"obsidian":           true,
	"notion":             true,
	"scrivener":          true,
	"ulysses":            true,
	"figma":              true,
	"sketch":             true,
}

var adminApps = map[string]bool{
	"calendar":    true,
	"fantastical": true,
	"reminders":   true,
	"things":      true,
	"quickbooks":  true,
	"xero":        true,
	"expensify":   true,
}

var communicationApps = map[string]bool{
	"slack":    true,
	"mail":     true,
	"outlook":  true,
	"gmail":    true,
	"messages": true,
	"telegram": true,
	"whatsapp": true,
	"discord":  true,
	"signal":   true,
}

var (
	distractionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(twitter|facebook|instagram|tiktok|reddit|netflix|twitch|9gag)\b`),
		regexp.MustCompile(`(?i)youtube\.com/(watch|shorts)`),
	}
	deepWorkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(pull request|merge request|code review|refactor)\b`),
		regexp.MustCompile(`(?i)\b(draft|manuscript|design doc|rfc|spec)\b`),
	}
	adminPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(schedul|calendar|invoic|expense|timesheet|booking)`),
		regexp.MustCompile(`(?i)\bstatus update\b`),
	}
	repetitivePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(daily stand-?up|weekly sync|status report|fyi)\b`),
	}
)

// Classifier evaluates activities as an ordered decision list:
// Eliminate, then Leverage, then Delegate, then Automate, then a
// low-confidence Leverage fallback. The order is load-bearing: an app
// matching both Eliminate and Leverage is always Eliminate.
type Classifier struct {
	cfg    *config.Config
	logger *zap.Logger

	day         time.Time
	visitCounts map[string]int

	// User-supplied pattern extensions per bucket. Invalid patterns are
	// skipped with a warning, never fatal.
	extra map[models.DealCategory][]*regexp.Regexp
}

// NewClassifier creates a DEAL classifier.
func NewClassifier(cfg *config.Config, logger *zap.Logger) *Classifier {
	return &Classifier{
		cfg:         cfg,
		logger:      logger,
		visitCounts: make(map[string]int),
		extra:       make(map[models.DealCategory][]*regexp.Regexp),
	}
}

// AddPatterns registers extra title/URL patterns for a bucket.
// Patterns that fail to compile are skipped and logged.
func (c *Classifier) AddPatterns(bucket models.DealCategory, patterns []string) {
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			c.logger.Warn("skipping malformed classification pattern",
				zap.String("bucket", string(bucket)),
				zap.String("pattern", p),
				zap.Error(err))
			continue
		}
		c.extra[bucket] = append(c.extra[bucket], re)
	}
}

// Classify evaluates one activity, counting the visit toward the app's
// same-day frequency. It always returns a result; activities nothing
// matches fall back to Leverage at low confidence.
func (c *Classifier) Classify(ts time.Time, appName, windowTitle, url string, durationMinutes float64) models.DealClassification {
	c.rollDay(ts)
	app := strings.ToLower(appName)
	c.visitCounts[app]++
	return c.evaluate(app, windowTitle, url, durationMinutes, c.visitCounts[app])
}

// ClassifyGroup evaluates an activity group with an externally-counted
// visit total, used by the daily aggregation pass.
func (c *Classifier) ClassifyGroup(appName, windowTitle, url string, durationMinutes float64, visits int) models.DealClassification {
	return c.evaluate(strings.ToLower(appName), windowTitle, url, durationMinutes, visits)
}

func (c *Classifier) evaluate(app, title, url string, durationMinutes float64, visits int) models.DealClassification {
	// 1. Eliminate: known distractions.
	if distractionApps[app] || c.matches(models.DealEliminate, distractionPatterns, title, url) {
		return models.DealClassification{
			Category:   models.DealEliminate,
			Confidence: 0.85,
			Reasoning:  fmt.Sprintf("%s is a known distraction", app),
		}
	}

	// 2. Leverage: deep-work tools. Duration is informative only.
	if deepWorkApps[app] || c.matches(models.DealLeverage, deepWorkPatterns, title, url) {
		return models.DealClassification{
			Category:   models.DealLeverage,
			Confidence: 0.80,
			Reasoning:  fmt.Sprintf("%s is high-value focused work", app),
		}
	}

	// 3. Delegate: admin and scheduling work someone else could do.
	if adminApps[app] || c.matches(models.DealDelegate, adminPatterns, title, url) {
		return models.DealClassification{
			Category:   models.DealDelegate,
			Confidence: 0.70,
			Reasoning:  fmt.Sprintf("%s looks like administrative work", app),
		}
	}

	// 4. Automate: communication checked often enough to script away.
	repetitive := communicationApps[app] && visits >= c.cfg.Engine.RepetitionThreshold
	if repetitive || c.matches(models.DealAutomate, repetitivePatterns, title, url) {
		return models.DealClassification{
			Category:   models.DealAutomate,
			Confidence: 0.65,
			Reasoning:  fmt.Sprintf("%s checked %d times today; a candidate for batching or automation", app, visits),
		}
	}

	// Deliberate low-confidence fallback, not an error.
	return models.DealClassification{
		Category:   models.DealLeverage,
		Confidence: 0.30,
		Reasoning:  "could not be confidently classified",
	}
}

func (c *Classifier) matches(bucket models.DealCategory, builtin []*regexp.Regexp, title, url string) bool {
	for _, re := range builtin {
		if matchText(re, title, url) {
			return true
		}
	}
	for _, re := range c.extra[bucket] {
		if matchText(re, title, url) {
			return true
		}
	}
	return false
}

// matchText applies a pattern to whatever text is present. Missing
// titles and URLs simply don't participate in matching.
func matchText(re *regexp.Regexp, title, url string) bool {
	if title != "" && re.MatchString(title) {
		return true
	}
	if url != "" && re.MatchString(url) {
		return true
	}
	return false
}

// rollDay resets the frequency counters when the day changes.
func (c *Classifier) rollDay(ts time.Time) {
	d := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	if !d.Equal(c.day) {
		c.day = d
		c.visitCounts = make(map[string]int)
	}
}

// IsDistraction reports whether the app is in the Eliminate set; the
// coordinator uses this to accumulate daily distraction minutes.
func IsDistraction(appName string) bool {
	return distractionApps[strings.ToLower(appName)]
}

// IsCommunicationApp reports whether the app is in the Automate
// communication set.
func IsCommunicationApp(appName string) bool {
	return communicationApps[strings.ToLower(appName)]
}
