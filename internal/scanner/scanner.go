// Package scanner builds the cached content profile of a tenant's public
// site: homepage plus a handful of navigation pages, distilled into
// keywords, headings, and an AI-written niche description that topic
// discovery feeds on.
package scanner

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
)

// Bounds on the persisted profile.
const (
	MaxKeywords = 50
	MaxHeadings = 30
	MaxNavLinks = 10
)

const defaultScanFrequencyDays = 30

// ScanError means the scanner could not fetch enough to proceed.
type ScanError struct {
	Domain string
	Cause  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Domain, e.Cause)
}

func (e *ScanError) Unwrap() error { return e.Cause }

// Store is the slice of the central store the scanner needs.
type Store interface {
	GetWebsiteScan(ctx context.Context, websiteID string) (*core.WebsiteScan, error)
	UpsertWebsiteScan(ctx context.Context, scan core.WebsiteScan) error
	SetScanStatus(ctx context.Context, websiteID string, status core.ScanStatus, errMsg string) error
}

// Fetcher fetches one external page with a deadline.
type Fetcher interface {
	FetchPage(ctx context.Context, url string, timeout time.Duration) (string, error)
}

// Options tunes fetch deadlines and crawl width.
type Options struct {
	HomepageTimeout time.Duration
	PageTimeout     time.Duration
	MaxNavPages     int
}

func (o Options) withDefaults() Options {
	if o.HomepageTimeout == 0 {
		o.HomepageTimeout = 10 * time.Second
	}
	if o.PageTimeout == 0 {
		o.PageTimeout = 6 * time.Second
	}
	if o.MaxNavPages == 0 {
		o.MaxNavPages = 5
	}
	return o
}

// Scanner crawls tenant sites and persists WebsiteScan records.
type Scanner struct {
	store Store
	http  Fetcher
	opts  Options
}

// New creates a Scanner.
func New(store Store, fetcher Fetcher, opts Options) *Scanner {
	return &Scanner{store: store, http: fetcher, opts: opts.withDefaults()}
}

// Ensure returns a usable scan for the website, reusing a completed one
// younger than the website's scan frequency and running a fresh crawl
// otherwise. ai may be nil when no LLM key is available.
func (s *Scanner) Ensure(ctx context.Context, website core.Website, ai llm.Caller) (*core.WebsiteScan, error) {
	existing, err := s.store.GetWebsiteScan(ctx, website.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil && s.fresh(*existing, website, time.Now()) {
		return existing, nil
	}
	scan, err := s.Scan(ctx, website, ai)
	if err != nil {
		// A stale prior scan still beats nothing for topic discovery.
		if existing != nil && existing.Status == core.ScanCompleted {
			return existing, nil
		}
		return nil, err
	}
	return scan, nil
}

func (s *Scanner) fresh(scan core.WebsiteScan, website core.Website, now time.Time) bool {
	if scan.Status != core.ScanCompleted || scan.LastScannedAt == nil {
		return false
	}
	days := website.ScanFrequencyDays
	if days <= 0 {
		days = defaultScanFrequencyDays
	}
	return now.Sub(*scan.LastScannedAt) < time.Duration(days)*24*time.Hour
}

// Scan crawls the website's public pages and persists the result. The
// record is written with status "completed" on success and "failed" with
// the reason otherwise.
func (s *Scanner) Scan(ctx context.Context, website core.Website, ai llm.Caller) (*core.WebsiteScan, error) {
	logger.Info("scanning website", "website_id", website.ID, "domain", website.Domain)

	if err := s.markScanning(ctx, website.ID); err != nil {
		return nil, err
	}

	profile, err := s.crawl(ctx, website.Domain, ai)
	if err != nil {
		if stErr := s.store.SetScanStatus(ctx, website.ID, core.ScanFailed, err.Error()); stErr != nil {
			logger.Error("failed to record scan failure", stErr, "website_id", website.ID)
		}
		return nil, err
	}

	now := time.Now().UTC()
	profile.WebsiteID = website.ID
	profile.Status = core.ScanCompleted
	profile.LastScannedAt = &now

	if err := s.store.UpsertWebsiteScan(ctx, *profile); err != nil {
		return nil, err
	}
	logger.Info("website scan completed", "website_id", website.ID,
		"pages", profile.PagesScanned, "keywords", len(profile.MainKeywords))
	return profile, nil
}

// Preview runs the crawl for a bare domain without touching the store.
// Without an analyzer the niche description stays empty.
func (s *Scanner) Preview(ctx context.Context, domain string, ai llm.Caller) (*core.WebsiteScan, error) {
	return s.crawl(ctx, domain, ai)
}

func (s *Scanner) markScanning(ctx context.Context, websiteID string) error {
	existing, err := s.store.GetWebsiteScan(ctx, websiteID)
	if err != nil {
		return err
	}
	if existing == nil {
		return s.store.UpsertWebsiteScan(ctx, core.WebsiteScan{
			WebsiteID: websiteID,
			Status:    core.ScanScanning,
		})
	}
	return s.store.SetScanStatus(ctx, websiteID, core.ScanScanning, "")
}

func (s *Scanner) crawl(ctx context.Context, domain string, ai llm.Caller) (*core.WebsiteScan, error) {
	base, html, err := s.fetchHomepage(ctx, domain)
	if err != nil {
		return nil, &ScanError{Domain: domain, Cause: err}
	}

	page := extractPage(html)
	keywords := page.keywords
	headings := page.headings
	navLinks := extractNavLinks(html, base)

	pages := 1
	for _, link := range navLinks {
		if pages > s.opts.MaxNavPages {
			break
		}
		sub, err := s.http.FetchPage(ctx, link.URL, s.opts.PageTimeout)
		if err != nil {
			logger.Debug("nav page fetch failed", "url", link.URL, "error", err.Error())
			continue
		}
		pages++
		p := extractPage(sub)
		keywords = append(keywords, p.keywords...)
		headings = append(headings, p.headings...)
	}

	keywords = dedupe(keywords)
	headings = dedupe(headings)

	scan := &core.WebsiteScan{
		HomepageTitle:   page.title,
		MetaDescription: page.metaDescription,
		PagesScanned:    pages,
		NavigationLinks: navLinks,
	}

	if ai != nil {
		analysis, err := Analyze(ctx, ai, AnalyzerInput{
			Domain:          domain,
			Title:           page.title,
			MetaDescription: page.metaDescription,
			Headings:        headings,
			Keywords:        keywords,
		})
		if err != nil {
			logger.Warn("ai site analysis failed", "domain", domain, "error", err.Error())
		} else {
			scan.NicheDescription = analysis.NicheDescription
			scan.ContentThemes = analysis.Themes
			keywords = dedupe(append(keywords, analysis.Keywords...))
		}
	}

	scan.MainKeywords = capList(keywords, MaxKeywords)
	scan.Headings = capList(headings, MaxHeadings)
	return scan, nil
}

// fetchHomepage tries the bare domain first and the www. variant once on
// failure. Returns the base URL actually used for resolving links.
func (s *Scanner) fetchHomepage(ctx context.Context, domain string) (string, string, error) {
	domain = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(domain), "https://"), "http://")
	domain = strings.TrimSuffix(domain, "/")

	base := "https://" + domain
	html, err := s.http.FetchPage(ctx, base, s.opts.HomepageTimeout)
	if err == nil {
		return base, html, nil
	}
	if strings.HasPrefix(domain, "www.") {
		return "", "", err
	}

	alt := "https://www." + domain
	html, altErr := s.http.FetchPage(ctx, alt, s.opts.HomepageTimeout)
	if altErr != nil {
		return "", "", err
	}
	return alt, html, nil
}

type pageData struct {
	title           string
	metaDescription string
	headings        []string
	keywords        []string
}

var keywordSplit = regexp.MustCompile(`[-|:,]`)

func extractPage(html string) pageData {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pageData{}
	}

	var p pageData
	p.title = strings.TrimSpace(doc.Find("title").First().Text())
	p.metaDescription, _ = doc.Find(`meta[name="description"]`).First().Attr("content")
	p.metaDescription = strings.TrimSpace(p.metaDescription)

	doc.Find("h1, h2").Each(func(_ int, sel *goquery.Selection) {
		if h := strings.TrimSpace(sel.Text()); h != "" {
			p.headings = append(p.headings, h)
		}
	})

	if metaKw, ok := doc.Find(`meta[name="keywords"]`).First().Attr("content"); ok {
		for _, kw := range strings.Split(metaKw, ",") {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				p.keywords = append(p.keywords, kw)
			}
		}
	}

	sources := append([]string{p.title}, p.headings...)
	for _, src := range sources {
		for _, token := range keywordSplit.Split(src, -1) {
			token = strings.ToLower(strings.TrimSpace(token))
			if len(token) >= 4 && len(token) <= 25 {
				p.keywords = append(p.keywords, token)
			}
		}
	}
	return p
}

// extractNavLinks collects same-domain links from nav and header regions,
// resolved absolute, deduplicated, first MaxNavLinks kept.
func extractNavLinks(html, baseURL string) []core.NavLink {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil
	}

	var links []core.NavLink
	seen := map[string]bool{}
	doc.Find("nav a[href], header a[href]").Each(func(_ int, sel *goquery.Selection) {
		if len(links) >= MaxNavLinks {
			return
		}
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}
		resolved, err := base.Parse(href)
		if err != nil {
			return
		}
		resolved.Fragment = ""
		if !sameHost(resolved.Host, base.Host) {
			return
		}
		u := resolved.String()
		if u == baseURL || u == baseURL+"/" || seen[u] {
			return
		}
		seen[u] = true
		links = append(links, core.NavLink{URL: u, Text: strings.TrimSpace(sel.Text())})
	})
	return links
}

func sameHost(a, b string) bool {
	return strings.TrimPrefix(a, "www.") == strings.TrimPrefix(b, "www.")
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0:0]
	for _, item := range items {
		key := strings.ToLower(item)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func capList(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
