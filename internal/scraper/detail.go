package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/justsurfingit/job-finder/internal/models"
)

const (
	titleSelector           = `[data-testid="jobsearch-JobInfoHeader-title"]`
	companySelector         = `div[data-testid="inlineHeader-companyName"] a`
	companyFallbackSelector = `div[data-company-name="true"] a`
)

// ParseDetail builds a listing from a rendered detail pane. Any field that
// cannot be located is left as models.NotSpecified.
func ParseDetail(pane Pane, id int, location string) models.JobListing {
	job := models.JobListing{
		ID:                 id,
		Title:              models.NotSpecified,
		Company:            models.NotSpecified,
		Location:           orSentinel(location),
		Salary:             models.NotSpecified,
		JobType:            models.NotSpecified,
		ExperienceRequired: models.NotSpecified,
		JobNature:          models.NotSpecified,
		ApplyLink:          orSentinel(pane.URL),
		Description:        orSentinel(strings.TrimSpace(pane.Text)),
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pane.HTML))
	if err != nil {
		return job
	}

	if job.Description == models.NotSpecified {
		job.Description = orSentinel(collapse(doc.Text()))
	}

	if t := extractTitle(doc); t != "" {
		job.Title = t
	}
	if c := extractCompany(doc); c != "" {
		job.Company = c
	}

	job.Salary = orSentinel(firstText(doc, "p", func(s string) bool {
		return strings.Contains(s, "Rs") || strings.Contains(s, "PKR")
	}))

	jobType := firstText(doc, "p", func(s string) bool { return strings.Contains(s, "Job Type") })
	job.JobType = orSentinel(strings.TrimSpace(strings.ReplaceAll(jobType, "Job Type:", "")))

	job.ExperienceRequired = orSentinel(firstText(doc, "li", func(s string) bool {
		return strings.Contains(strings.ToLower(s), "year")
	}))

	if strings.Contains(strings.ToLower(job.Description), "in person") {
		job.JobNature = "On-site"
	}

	return job
}

func extractTitle(doc *goquery.Document) string {
	header := doc.Find(titleSelector).First()
	if header.Length() == 0 {
		return ""
	}
	// Only leaf spans: an outer span may wrap the whole title.
	header.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return s.Children().Length() == 0 && strings.Contains(s.Text(), "job post")
	}).Remove()
	return collapse(header.Text())
}

func extractCompany(doc *goquery.Document) string {
	link := doc.Find(companySelector).First()
	if link.Length() == 0 {
		link = doc.Find(companyFallbackSelector).First()
	}
	if link.Length() == 0 {
		return ""
	}
	link.Find("svg").Remove()
	return collapse(link.Text())
}

// firstText returns the collapsed text of the first element matching
// selector whose text satisfies match.
func firstText(doc *goquery.Document, selector string, match func(string) bool) string {
	var out string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if match(text) {
			out = collapse(text)
			return false
		}
		return true
	})
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func orSentinel(s string) string {
	if strings.TrimSpace(s) == "" {
		return models.NotSpecified
	}
	return s
}
